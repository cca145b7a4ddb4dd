package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/MrSnakeDoc/moraka/internal/httpserver/deps"
)

type componentStatus struct {
	OK             bool   `json:"ok"`
	ListingsLoaded *int   `json:"listings_loaded,omitempty"`
	Sessions       *int   `json:"sessions,omitempty"`
	LastSample     string `json:"last_sample,omitempty"`
	Mode           string `json:"mode,omitempty"`
	Impact         string `json:"impact,omitempty"`
	Error          string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"catalog":  checkCatalog(d),
			"redis":    checkRedis(r.Context(), d),
			"nats":     checkNATS(d),
			"sessions": checkSessions(d),
		}

		writeJSON(w, d.Logger, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

// determineMode is "critical" without a catalog, "degraded" when an optional
// backend is configured but down, "optimal" otherwise.
func determineMode(components map[string]componentStatus) string {
	if catalog, exists := components["catalog"]; exists && !catalog.OK {
		return "critical"
	}

	for _, name := range []string{"redis", "nats"} {
		if c, exists := components[name]; exists && !c.OK && c.Mode != "disabled" {
			return "degraded"
		}
	}

	return "optimal"
}

func checkCatalog(d deps.Deps) componentStatus {
	count := d.SeedCount
	return componentStatus{
		OK:             count > 0,
		ListingsLoaded: &count,
	}
}

func checkSessions(d deps.Deps) componentStatus {
	if d.Sessions == nil {
		return componentStatus{OK: false, Error: "session manager not initialized"}
	}

	count := d.Sessions.Count()
	status := componentStatus{OK: true, Sessions: &count, LastSample: "never"}
	if d.Stats != nil {
		status.Mode = "sampling"
		if at := d.Stats.LastSampledAt(); !at.IsZero() {
			status.LastSample = at.Format("2006-01-02 15:04:05")
		}
	}
	return status
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     false,
			Mode:   "disabled",
			Impact: "listings-not-persisted",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "listings-not-persisted",
			Error:  err.Error(),
		}
	}

	return componentStatus{
		OK:     true,
		Mode:   "write-through",
		Impact: "listings-persisted",
	}
}

func checkNATS(d deps.Deps) componentStatus {
	if d.NATSConn == nil {
		return componentStatus{
			OK:     false,
			Mode:   "disabled",
			Impact: "notifications-log-only",
		}
	}

	if d.NATSConn.Status() != nats.CONNECTED {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "notifications-dropped",
			Error:  d.NATSConn.Status().String(),
		}
	}

	return componentStatus{
		OK:     true,
		Mode:   "publishing",
		Impact: "notifications-published",
	}
}
