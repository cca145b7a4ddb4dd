package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/moraka/internal/httpserver/deps"
	"github.com/MrSnakeDoc/moraka/internal/httpserver/mw"
	"github.com/MrSnakeDoc/moraka/internal/metrics"
)

func init() { RegisterOps(registerMetrics) }

func registerMetrics(r chi.Router, d deps.Deps) {
	r.With(opsGuards(d)...).Handle("/metrics", metrics.Handler())
}

// opsGuards restricts operational endpoints by client IP and Host header.
func opsGuards(d deps.Deps) []Middleware {
	return []Middleware{
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	}
}
