package deps

import (
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/moraka/internal/logger"
	"github.com/MrSnakeDoc/moraka/internal/scheduler"
	"github.com/MrSnakeDoc/moraka/internal/session"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time        // for testing, defaults to time.Now
	AllowedHosts []string                // Host headers allowed to access ops endpoints
	AllowedCIDRS []string                // IPs allowed to access ops endpoints
	TrustProxy   bool                    // true if running behind a trusted reverse proxy (e.g., cloudflared)
	SeedCount    int                     // listings every session starts with
	Sessions     *session.Manager        // live user sessions
	Stats        *scheduler.CatalogStats // catalog sampler, nil if not running
	RedisClient  *redis.Client           // nil = memory only
	NATSConn     *nats.Conn              // nil = log-only notifications
}
