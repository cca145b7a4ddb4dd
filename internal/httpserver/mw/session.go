package mw

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/moraka/internal/logger"
	"github.com/MrSnakeDoc/moraka/internal/session"
)

// SessionHeader carries the opaque session handle returned by registration.
const SessionHeader = "X-Session-ID"

type sessionKey struct{}

// RequireSession resolves the caller's session from SessionHeader and rejects
// the request with 401 when it is missing or unknown.
func RequireSession(m *session.Manager, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(SessionHeader))
			if id == "" {
				http.Error(w, "missing "+SessionHeader+" header", http.StatusUnauthorized)
				return
			}

			s, err := m.Get(id)
			if err != nil {
				log.Debug("unknown session", logger.String("session_id", id))
				http.Error(w, "unknown session", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, s)))
		})
	}
}

// SessionFrom returns the session attached by RequireSession.
func SessionFrom(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*session.Session)
	return s, ok
}
