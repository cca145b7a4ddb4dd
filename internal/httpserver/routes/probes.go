package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/moraka/internal/httpserver/deps"
	"github.com/MrSnakeDoc/moraka/internal/httpserver/handlers"
)

func init() { RegisterOps(registerProbes) }

func registerProbes(r chi.Router, d deps.Deps) {
	ops := r.With(opsGuards(d)...)
	ops.Get("/healthz", handlers.Healthz(d))
	ops.Get("/readyz", handlers.Readyz(d))
	ops.Get("/infra", handlers.Infra(d))
}
