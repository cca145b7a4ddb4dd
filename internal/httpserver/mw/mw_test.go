package mw

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/moraka/internal/domain"
	"github.com/MrSnakeDoc/moraka/internal/logger"
	"github.com/MrSnakeDoc/moraka/internal/session"
	"github.com/MrSnakeDoc/moraka/internal/sources/seed"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestMatchHost(t *testing.T) {
	tests := []struct {
		host, pattern string
		want          bool
	}{
		{"moraka.example.com", "moraka.example.com", true},
		{"api.example.com", "*.example.com", true},
		{"example.com", "*.example.com", false},
		{"evil.com", "moraka.example.com", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchHost(tt.host, tt.pattern), "%s vs %s", tt.host, tt.pattern)
	}

	assert.Equal(t, "localhost", stripPort("localhost:8080"))
	assert.Equal(t, "localhost", stripPort("localhost"))
	assert.Equal(t, "::1", stripPort("[::1]:80"))
}

func TestEnforceHost(t *testing.T) {
	h := EnforceHost([]string{"ops.local:9000"}, logger.Nop())(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Host = "ops.local:8080"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req.Host = "other.local"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRateLimit_RefillsOverTime(t *testing.T) {
	now := time.Date(2025, 11, 8, 9, 0, 0, 0, time.UTC)
	h := RateLimit(RateLimitConfig{
		Burst:             2,
		RefillPerIPPerMin: 60,
		Now:               func() time.Time { return now },
	})(okHandler)

	hit := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/listings", nil))
		return rec
	}

	first := hit()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, hit().Code)

	blocked := hit()
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "1", blocked.Header().Get("Retry-After"))

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, hit().Code)
}

func TestRateLimit_PreflightNotCounted(t *testing.T) {
	h := RateLimit(RateLimitConfig{Burst: 1, RefillPerIPPerMin: 1})(okHandler)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/listings", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/listings", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireSession(t *testing.T) {
	listings, err := seed.NewLoader("").Load()
	require.NoError(t, err)

	m := session.NewManager(context.Background(), listings, nil, nil, logger.Nop(), session.Config{ManualFeed: true})
	t.Cleanup(m.Shutdown)

	s, err := m.Start(context.Background(), domain.User{Name: "Kagiso", Phone: "+267 71 234 567", City: "Gaborone"})
	require.NoError(t, err)

	var got *session.Session
	h := RequireSession(m, logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = SessionFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing", want: http.StatusUnauthorized},
		{name: "unknown", header: "nope", want: http.StatusUnauthorized},
		{name: "known", header: s.ID, want: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/listings", nil)
			if tt.header != "" {
				req.Header.Set(SessionHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	require.NotNil(t, got)
	assert.Equal(t, s.ID, got.ID)

	_, ok := SessionFrom(context.Background())
	assert.False(t, ok)
}
