package scheduler

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/moraka/internal/domain"
	"github.com/MrSnakeDoc/moraka/internal/freshness"
	"github.com/MrSnakeDoc/moraka/internal/index"
	"github.com/MrSnakeDoc/moraka/internal/logger"
	"github.com/MrSnakeDoc/moraka/internal/metrics"
)

const (
	// DefaultFeedInterval is the delay between two synthesized listings
	DefaultFeedInterval = 45 * time.Second
	// DefaultListingHorizon is how long a synthesized listing stays available
	DefaultListingHorizon = 48 * time.Hour

	maxIDAttempts = 5
)

// IDGenerator returns a new listing ID on each call.
type IDGenerator func() string

// UUIDGenerator is the default IDGenerator.
func UUIDGenerator() string {
	return "new-" + uuid.NewString()
}

// FeedCandidate is a listing template the simulator can post.
type FeedCandidate struct {
	Title          string
	Description    string
	City           string
	Category       domain.Category
	Quantity       string
	PostedBy       string
	PickupLocation string
}

// DefaultFeedPool is the candidate pool used when none is configured.
var DefaultFeedPool = []FeedCandidate{
	{
		Title:          "Fresh Bananas",
		Description:    "Ripe bananas, perfect for eating or baking!",
		City:           "Mochudi",
		Category:       domain.CategoryFruit,
		Quantity:       "2kg",
		PostedBy:       "Mpho T.",
		PickupLocation: "Mochudi Community Center, Mochudi",
	},
	{
		Title:          "Leftover Rice",
		Description:    "Cooked rice from our restaurant, still fresh.",
		City:           "Kasane",
		Category:       domain.CategoryOther,
		Quantity:       "3kg",
		PostedBy:       "Kasane Eatery",
		PickupLocation: "Kasane Police Station, Kasane",
	},
}

// FeedConfig tunes a FeedSimulator. Zero values fall back to defaults.
type FeedConfig struct {
	Interval time.Duration
	FreshTTL time.Duration
	Horizon  time.Duration
	Pool     []FeedCandidate
	NewID    IDGenerator
	Now      func() time.Time
}

// FeedSimulator periodically posts synthetic listings into one session's catalog
type FeedSimulator struct {
	store   *index.ListingStore
	tracker *freshness.Tracker
	logger  logger.Logger
	cfg     FeedConfig

	stopped  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  atomic.Bool
}

// NewFeedSimulator creates a new feed simulator
func NewFeedSimulator(
	store *index.ListingStore,
	tracker *freshness.Tracker,
	log logger.Logger,
	cfg FeedConfig,
) *FeedSimulator {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultFeedInterval
	}
	if cfg.FreshTTL <= 0 {
		cfg.FreshTTL = freshness.DefaultTTL
	}
	if cfg.Horizon <= 0 {
		cfg.Horizon = DefaultListingHorizon
	}
	if len(cfg.Pool) == 0 {
		cfg.Pool = DefaultFeedPool
	}
	if cfg.NewID == nil {
		cfg.NewID = UUIDGenerator
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &FeedSimulator{
		store:   store,
		tracker: tracker,
		logger:  log,
		cfg:     cfg,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start begins posting on every interval until Stop or ctx cancellation.
// Unlike the other jobs, nothing is posted immediately.
func (fs *FeedSimulator) Start(ctx context.Context) error {
	if fs.stopped.Load() {
		return errors.New("feed simulator already stopped")
	}
	if !fs.started.CompareAndSwap(false, true) {
		return errors.New("feed simulator already started")
	}

	ticker := time.NewTicker(fs.cfg.Interval)
	go func() {
		defer close(fs.doneCh)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fs.Tick(ctx)
			case <-fs.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop halts the simulator and waits for its loop to exit.
// It is safe to call more than once, and before Start.
func (fs *FeedSimulator) Stop() {
	fs.stopOnce.Do(func() {
		fs.stopped.Store(true)
		close(fs.stopCh)
	})
	if fs.started.Load() {
		<-fs.doneCh
	}
}

// Tick posts one synthetic listing and marks it fresh.
// After Stop it does nothing and returns false.
func (fs *FeedSimulator) Tick(ctx context.Context) (domain.Listing, bool) {
	if fs.stopped.Load() {
		metrics.FeedTicks.WithLabelValues("stopped").Inc()
		return domain.Listing{}, false
	}

	c := fs.cfg.Pool[rand.Intn(len(fs.cfg.Pool))]
	now := fs.cfg.Now()

	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		id := fs.cfg.NewID()
		if fs.store.Contains(id) {
			fs.logger.Warn("generated listing id already in use, regenerating",
				logger.String("listing_id", id),
				logger.Int("attempt", attempt))
			continue
		}

		listing := domain.Listing{
			ID:             id,
			Title:          c.Title,
			Description:    c.Description,
			Category:       c.Category,
			Quantity:       c.Quantity,
			Location:       c.City,
			City:           c.City,
			PickupLocation: c.PickupLocation,
			PostedBy:       c.PostedBy,
			PostedDate:     now,
			AvailableUntil: now.Add(fs.cfg.Horizon),
		}

		if err := fs.store.Insert(ctx, listing); err != nil {
			if errors.Is(err, domain.ErrDuplicateListing) {
				continue
			}
			fs.logger.Error("failed to insert simulated listing", logger.Error(err))
			metrics.FeedTicks.WithLabelValues("error").Inc()
			return domain.Listing{}, false
		}
		fs.tracker.Mark(id, fs.cfg.FreshTTL)

		metrics.ListingsInserted.WithLabelValues(metrics.SourceSimulated).Inc()
		metrics.FeedTicks.WithLabelValues("posted").Inc()
		fs.logger.Debug("simulated listing posted",
			logger.String("listing_id", id),
			logger.String("title", listing.Title),
			logger.String("city", listing.City))
		return listing, true
	}

	fs.logger.Error("giving up on simulated listing, no free id",
		logger.Int("attempts", maxIDAttempts))
	metrics.FeedTicks.WithLabelValues("id_exhausted").Inc()
	return domain.Listing{}, false
}
