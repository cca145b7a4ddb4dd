package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/moraka/internal/metrics"
	"github.com/MrSnakeDoc/moraka/internal/utils"
)

// RateLimitConfig tunes the per-client token bucket applied to /api.
type RateLimitConfig struct {
	Burst             int
	RefillPerIPPerMin int
	MaxEntries        int
	SweepInterval     time.Duration
	IdleTTL           time.Duration
	TrustProxy        bool             // resolve IP from proxy headers when true
	Now               func() time.Time // nil = time.Now
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = 15 * time.Minute
	}
	c.Burst = max(c.Burst, 1)
	c.RefillPerIPPerMin = max(c.RefillPerIPPerMin, 1)
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

type bucket struct {
	mu       sync.Mutex
	tokens   float64
	refilled time.Time
	seen     time.Time
}

// decision is the outcome of one take from a client's bucket.
type decision struct {
	allowed    bool
	remaining  int
	retryAfter int // seconds, only set when refused
}

// take refills the bucket up to capacity for the time elapsed, then spends one token.
func (b *bucket) take(now time.Time, perSec, capacity float64) decision {
	b.mu.Lock()
	defer b.mu.Unlock()

	if elapsed := now.Sub(b.refilled).Seconds(); elapsed > 0 {
		b.tokens = math.Min(capacity, b.tokens+elapsed*perSec)
		b.refilled = now
	}

	if b.tokens < 1 {
		wait := int(math.Ceil((1 - b.tokens) / perSec))
		return decision{retryAfter: max(wait, 1)}
	}

	b.tokens--
	b.seen = now
	return decision{allowed: true, remaining: int(b.tokens)}
}

type limiter struct {
	cfg      RateLimitConfig
	perSec   float64
	capacity float64

	mu        sync.Mutex
	clients   map[string]*bucket
	lastSweep time.Time
}

func newLimiter(cfg RateLimitConfig) *limiter {
	cfg = cfg.withDefaults()
	return &limiter{
		cfg:       cfg,
		perSec:    float64(cfg.RefillPerIPPerMin) / 60,
		capacity:  float64(cfg.Burst),
		clients:   make(map[string]*bucket, 1024),
		lastSweep: cfg.Now(),
	}
}

// bucketFor returns the client's bucket, evicting idle clients when the sweep
// interval has passed or the table is full.
func (l *limiter) bucketFor(client string, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	full := l.cfg.MaxEntries > 0 && len(l.clients) >= l.cfg.MaxEntries
	if full || now.Sub(l.lastSweep) >= l.cfg.SweepInterval {
		for key, b := range l.clients {
			b.mu.Lock()
			idle := now.Sub(b.seen) > l.cfg.IdleTTL
			b.mu.Unlock()
			if idle {
				delete(l.clients, key)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.clients[client]
	if !ok {
		b = &bucket{tokens: l.capacity, refilled: now, seen: now}
		l.clients[client] = b
	}
	return b
}

func (l *limiter) take(client string) decision {
	now := l.cfg.Now()
	return l.bucketFor(client, now).take(now, l.perSec, l.capacity)
}

// RateLimit throttles each client IP. CORS preflights are never counted.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newLimiter(cfg)
	limit := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			d := l.take(utils.ClientIP(r, l.cfg.TrustProxy))

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.remaining))

			if !d.allowed {
				metrics.RateLimited.Inc()
				h.Set("Retry-After", strconv.Itoa(d.retryAfter))
				h.Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"too many requests, slow down"}` + "\n"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
