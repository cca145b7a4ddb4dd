package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Catalog
	SeedFile        string        // optional YAML seed, empty = built-in catalog
	FeedInterval    time.Duration // delay between simulated listings (default: 45s)
	FreshTTL        time.Duration // how long a simulated listing stays new (default: 30s)
	ListingHorizon  time.Duration // availability window of simulated listings (default: 48h)
	StatsInterval   time.Duration // catalog gauges sampling interval (default: 15s)
	MaxSessions     int           // 0 = no limit
	RequestTimeout  time.Duration // per-request timeout
	CORSOrigins     []string      // allowed browser origins for /api
	RateLimitBurst  int           // requests per IP before throttling
	RateLimitPerMin int           // token refill per IP per minute

	// Redis (optional, empty address = memory only)
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password when Redis is enabled
	RedisDB               int           // Redis DB number
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)

	// NATS (optional, empty URL = log-only notifications)
	NATSURL           string
	NATSSubjectPrefix string

	AllowedHosts []string // optional, restrict ops endpoints to specific Host headers
	AllowedCIDRS []string // optional, restrict ops endpoints to specific IPs (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("MORAKA_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("MORAKA_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("MORAKA_LOG_LEVEL", "info"),
		PrettyLog: mustBool("MORAKA_PRETTY_LOG", true),

		// Catalog
		SeedFile:        getenv("MORAKA_SEED_FILE", ""),
		FeedInterval:    mustDuration("MORAKA_FEED_INTERVAL", 45*time.Second),
		FreshTTL:        mustDuration("MORAKA_FRESH_TTL", 30*time.Second),
		ListingHorizon:  mustDuration("MORAKA_LISTING_HORIZON", 48*time.Hour),
		StatsInterval:   mustDuration("MORAKA_STATS_INTERVAL", 15*time.Second),
		MaxSessions:     getenvInt("MORAKA_MAX_SESSIONS", 0),
		RequestTimeout:  mustDuration("MORAKA_REQUEST_TIMEOUT", 5*time.Second),
		CORSOrigins:     splitAndTrim(getenv("MORAKA_CORS_ORIGINS", "*")),
		RateLimitBurst:  getenvInt("MORAKA_RATE_LIMIT_BURST", 30),
		RateLimitPerMin: getenvInt("MORAKA_RATE_LIMIT_PER_MIN", 120),

		// Redis settings
		RedisAddr:             getenv("MORAKA_REDIS_ADDR", ""),
		RedisUser:             getenv("MORAKA_REDIS_USERNAME", ""),
		RedisPasswordRequired: mustBool("MORAKA_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("MORAKA_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("MORAKA_REDIS_DB", 0),
		RedisMaxWait:          mustDuration("MORAKA_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("MORAKA_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("MORAKA_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("MORAKA_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("MORAKA_REDIS_RETRY_INTERVAL", 2*time.Second),

		// NATS settings
		NATSURL:           getenv("MORAKA_NATS_URL", ""),
		NATSSubjectPrefix: getenv("MORAKA_NATS_SUBJECT_PREFIX", "moraka"),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("MORAKA_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("MORAKA_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("MORAKA_TRUST_PROXY", false),
	}

	// Validate Redis password configuration
	if cfg.RedisEnabled() && cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: MORAKA_REDIS_PASSWORD is required when MORAKA_REDIS_PASSWORD_REQUIRED=true")
	}
	if cfg.SeedFile != "" {
		requireFile("MORAKA_SEED_FILE", cfg.SeedFile)
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// RedisEnabled reports whether listings are persisted.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// NATSEnabled reports whether notifications are published to NATS.
func (c *Config) NATSEnabled() bool {
	return c.NATSURL != ""
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireFile(key, path string) {
	info, err := os.Stat(path)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: %s points to an unreadable file %s: %v", key, path, err))
	}
	if info.IsDir() {
		panic(fmt.Sprintf("❌ FATAL: %s points to a directory: %s", key, path))
	}
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
