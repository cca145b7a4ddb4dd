// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Listing sources
const (
	SourceUser      = "user"
	SourceSimulated = "simulated"
)

var (
	ListingsInserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moraka_listings_inserted_total",
			Help: "Listings inserted into a session catalog",
		},
		[]string{"source"},
	)

	FeedTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moraka_feed_ticks_total",
			Help: "Feed simulator ticks by outcome",
		},
		[]string{"outcome"},
	)

	Registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moraka_registrations_total",
			Help: "Registration attempts by final step",
		},
		[]string{"step"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moraka_active_sessions",
			Help: "Sessions currently running",
		},
	)

	CatalogListings = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "moraka_catalog_listings",
			Help: "Listings across live sessions by state",
		},
		[]string{"state"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moraka_rate_limited_total",
			Help: "API requests rejected by the per-IP rate limiter",
		},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "path"},
	)
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and latency per chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		// Route pattern keeps cardinality bounded (/api/listings/{id})
		path := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if pattern := rc.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
