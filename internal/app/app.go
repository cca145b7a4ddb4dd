package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/moraka/internal/config"
	"github.com/MrSnakeDoc/moraka/internal/httpserver"
	"github.com/MrSnakeDoc/moraka/internal/httpserver/deps"
	"github.com/MrSnakeDoc/moraka/internal/index"
	"github.com/MrSnakeDoc/moraka/internal/logger"
	"github.com/MrSnakeDoc/moraka/internal/notify"
	"github.com/MrSnakeDoc/moraka/internal/redis"
	"github.com/MrSnakeDoc/moraka/internal/scheduler"
	"github.com/MrSnakeDoc/moraka/internal/session"
	"github.com/MrSnakeDoc/moraka/internal/sources/seed"
	redisstore "github.com/MrSnakeDoc/moraka/internal/store/redis"
	"github.com/MrSnakeDoc/moraka/internal/utils"
	"github.com/MrSnakeDoc/moraka/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	natsConn    *nats.Conn
	sessions    *session.Manager
	stats       *scheduler.CatalogStats

	// parent of every session's feed loop
	ctx    context.Context
	cancel context.CancelFunc
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Seed catalog - the only hard requirement
	listings, err := seed.NewLoader(cfg.SeedFile).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load seed catalog: %w", err)
	}
	source := "built-in"
	if cfg.SeedFile != "" {
		source = cfg.SeedFile
	}
	loggerClient.Info("seed catalog loaded",
		logger.String("source", source),
		logger.Int("listings", len(listings)))

	// Redis is optional - degrade to memory only
	var (
		redisClient *goredis.Client
		persister   index.Persister
	)
	if cfg.RedisEnabled() {
		redisClient, err = redis.New(context.Background(), redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
		}, loggerClient)
		if err != nil {
			loggerClient.Warn("redis unavailable, listings will not be persisted", logger.Error(err))
			redisClient = nil
		} else {
			persister = redisstore.NewStore(redisClient)
			loggerClient.Info("Redis initialized successfully")
		}
	} else {
		loggerClient.Info("redis not configured, running memory only")
	}

	// NATS is optional - notifications always go to the log
	notifiers := notify.Multi{notify.NewLogNotifier(loggerClient)}
	var natsConn *nats.Conn
	if cfg.NATSEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		natsConn, err = notify.Connect(ctx, cfg.NATSURL)
		cancel()
		if err != nil {
			loggerClient.Warn("nats unavailable, notifications are log only", logger.Error(err))
			natsConn = nil
		} else {
			notifiers = append(notifiers, notify.NewNATSNotifier(natsConn, cfg.NATSSubjectPrefix, loggerClient))
			loggerClient.Info("NATS initialized successfully",
				logger.String("subject_prefix", cfg.NATSSubjectPrefix))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	sessions := session.NewManager(ctx, listings, persister, notifiers, loggerClient, session.Config{
		Feed: scheduler.FeedConfig{
			Interval: cfg.FeedInterval,
			FreshTTL: cfg.FreshTTL,
			Horizon:  cfg.ListingHorizon,
		},
		MaxSessions: cfg.MaxSessions,
	})

	stats := scheduler.NewCatalogStats(sessions, loggerClient, cfg.StatsInterval)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		AllowedHosts: cfg.AllowedHosts,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		SeedCount:    len(listings),
		Sessions:     sessions,
		Stats:        stats,
		RedisClient:  redisClient,
		NATSConn:     natsConn,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		natsConn:    natsConn,
		sessions:    sessions,
		stats:       stats,
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Moraka %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(a.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start catalog sampler
	if err := a.stats.Start(ctx); err != nil {
		return fmt.Errorf("failed to start catalog stats: %w", err)
	}
	a.logger.Info("catalog stats started",
		logger.Duration("interval", a.cfg.StatsInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	a.stats.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	// Sessions after the server so no request can open a new one
	a.sessions.Shutdown()
	a.cancel()

	if a.natsConn != nil {
		utils.CloseLogged(utils.CloserFunc(a.natsConn.Drain), "nats", a.logger)
	}
	if a.redisClient != nil {
		utils.CloseLogged(a.redisClient, "redis", a.logger)
	}

	if runErr != nil {
		return runErr
	}
	a.logger.Info("✅ Moraka stopped cleanly")
	_ = a.logger.Sync()
	return nil
}
