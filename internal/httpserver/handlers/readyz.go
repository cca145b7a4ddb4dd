package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/moraka/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready  bool   `json:"ready"`
	Reason string `json:"reason,omitempty"`
}

// Readyz reports ready once sessions can be opened with a non-empty catalog.
// Redis and NATS are optional and never block readiness.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case d.Sessions == nil:
			writeJSON(w, d.Logger, http.StatusServiceUnavailable, readyzResponse{Reason: "session manager not initialized"})
		case d.SeedCount == 0:
			writeJSON(w, d.Logger, http.StatusServiceUnavailable, readyzResponse{Reason: "seed catalog is empty"})
		default:
			writeJSON(w, d.Logger, http.StatusOK, readyzResponse{Ready: true})
		}
	}
}
