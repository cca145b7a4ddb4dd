package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/moraka/internal/domain"
	"github.com/MrSnakeDoc/moraka/internal/freshness"
	"github.com/MrSnakeDoc/moraka/internal/index"
	"github.com/MrSnakeDoc/moraka/internal/logger"
	"github.com/MrSnakeDoc/moraka/internal/metrics"
)

const (
	// DefaultStatsInterval is the delay between two catalog samples
	DefaultStatsInterval = 15 * time.Second
)

// Catalog is one session's view sampled by CatalogStats.
type Catalog struct {
	Store   *index.ListingStore
	Tracker *freshness.Tracker
}

// CatalogSource lists the catalogs of live sessions.
type CatalogSource interface {
	Catalogs() []Catalog
}

// Counts is one sample of listing states across sessions.
type Counts struct {
	Sessions int
	Active   int
	Expired  int
	Fresh    int
}

// CatalogStats periodically samples live catalogs into the catalog gauges.
// Expired listings are counted, never removed.
type CatalogStats struct {
	source   CatalogSource
	logger   logger.Logger
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once

	mu     sync.RWMutex
	last   Counts
	lastAt time.Time
}

// NewCatalogStats creates a new catalog sampler
func NewCatalogStats(
	source CatalogSource,
	log logger.Logger,
	interval time.Duration,
) *CatalogStats {
	if interval <= 0 {
		interval = DefaultStatsInterval
	}

	return &CatalogStats{
		source:   source,
		logger:   log,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sampling
func (cs *CatalogStats) Start(ctx context.Context) error {
	if cs.source == nil {
		return errors.New("catalog stats: no source")
	}

	// Run immediately on start
	cs.Sample()

	ticker := time.NewTicker(cs.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cs.Sample()
			case <-cs.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the sampler
func (cs *CatalogStats) Stop() {
	cs.stopOnce.Do(func() { close(cs.stopCh) })
}

// Sample counts listings by state and publishes the gauges.
func (cs *CatalogStats) Sample() Counts {
	now := cs.now()
	catalogs := cs.source.Catalogs()

	c := Counts{Sessions: len(catalogs)}
	for _, cat := range catalogs {
		active, expired := countByExpiry(cat.Store.Snapshot(), now)
		c.Active += active
		c.Expired += expired
		if cat.Tracker != nil {
			c.Fresh += len(cat.Tracker.Fresh())
		}
	}

	metrics.CatalogListings.WithLabelValues("active").Set(float64(c.Active))
	metrics.CatalogListings.WithLabelValues("expired").Set(float64(c.Expired))
	metrics.CatalogListings.WithLabelValues("fresh").Set(float64(c.Fresh))

	cs.mu.Lock()
	cs.last = c
	cs.lastAt = now
	cs.mu.Unlock()

	cs.logger.Debug("catalog sampled",
		logger.Int("sessions", c.Sessions),
		logger.Int("active", c.Active),
		logger.Int("expired", c.Expired),
		logger.Int("fresh", c.Fresh))

	return c
}

// Last returns the most recent sample
func (cs *CatalogStats) Last() Counts {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	return cs.last
}

// LastSampledAt returns when Last was taken, zero before the first sample.
func (cs *CatalogStats) LastSampledAt() time.Time {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	return cs.lastAt
}

func countByExpiry(listings []domain.Listing, now time.Time) (active, expired int) {
	for _, l := range listings {
		if l.Expired(now) {
			expired++
			continue
		}
		active++
	}
	return active, expired
}
