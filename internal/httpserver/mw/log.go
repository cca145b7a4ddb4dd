package mw

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/moraka/internal/logger"
	"github.com/MrSnakeDoc/moraka/internal/utils"
)

// Log returns a middleware that logs one line per HTTP request.
// Probe and scrape paths are logged at debug level.
func Log(loggerClient logger.Logger, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			fields := []logger.Field{
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.Int("status", status),
				logger.Int("bytes", ww.BytesWritten()),
				logger.Duration("duration", time.Since(start)),
				logger.String("remote_ip", utils.ClientIP(r, trustProxy)),
				logger.String("request_id", middleware.GetReqID(r.Context())),
			}
			if sid := r.Header.Get(SessionHeader); sid != "" {
				fields = append(fields, logger.String("session_id", sid))
			}

			switch {
			case isOpsPath(r.URL.Path):
				loggerClient.Debug("http_request", fields...)
			case status >= http.StatusInternalServerError:
				loggerClient.Error("http_request", fields...)
			case status >= http.StatusBadRequest:
				loggerClient.Warn("http_request", append(fields, logger.String("user_agent", r.UserAgent()))...)
			default:
				loggerClient.Info("http_request", fields...)
			}
		})
	}
}

func isOpsPath(p string) bool {
	return p == "/healthz" || p == "/readyz" || strings.HasPrefix(p, "/metrics")
}
