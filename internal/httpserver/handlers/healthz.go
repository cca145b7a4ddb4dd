package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/moraka/internal/httpserver/deps"
)

type healthzResponse struct {
	Status         string  `json:"status"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	ActiveSessions int     `json:"active_sessions"`
	Version        string  `json:"version,omitempty"`
	Commit         string  `json:"commit,omitempty"`
	BuildDate      string  `json:"build_date,omitempty"`
	GoVersion      string  `json:"go_version,omitempty"`
}

func Healthz(d deps.Deps) http.HandlerFunc {
	start := d.StartTime
	now := d.TimeNow
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		active := 0
		if d.Sessions != nil {
			active = d.Sessions.Count()
		}
		writeJSON(w, d.Logger, http.StatusOK, healthzResponse{
			Status:         "ok",
			ActiveSessions: active,
			Version:        d.Version,
			Commit:         d.Commit,
			BuildDate:      d.BuildDate,
			GoVersion:      d.GoVersion,
			UptimeSeconds:  now().Sub(start).Seconds(),
		})
	}
}
