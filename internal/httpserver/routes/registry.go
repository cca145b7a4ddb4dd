package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/moraka/internal/httpserver/deps"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type entry struct {
	reg Registrar
	mws []Middleware
}

var (
	apiRegistry []entry // mounted under /api
	opsRegistry []entry // mounted at the root
)

// Register an /api registrar with optional per-route middlewares.
func Register(reg Registrar, mws ...Middleware) {
	apiRegistry = append(apiRegistry, entry{reg: reg, mws: mws})
}

// RegisterOps registers a root-level operational endpoint.
func RegisterOps(reg Registrar, mws ...Middleware) {
	opsRegistry = append(opsRegistry, entry{reg: reg, mws: mws})
}

// RegisterAPI is called once from server.New() inside the /api sub-router.
func RegisterAPI(r chi.Router, d deps.Deps) {
	mount(r, d, apiRegistry)
}

// RegisterAllOps is called once from server.New() on the root router.
func RegisterAllOps(r chi.Router, d deps.Deps) {
	mount(r, d, opsRegistry)
}

func mount(r chi.Router, d deps.Deps, entries []entry) {
	for _, e := range entries {
		if len(e.mws) == 0 {
			e.reg(r, d)
			continue
		}
		sub := r.With(e.mws...) // apply per-route middlewares
		e.reg(sub, d)
	}
}
