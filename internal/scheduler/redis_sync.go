package scheduler

import (
	"context"
	"slices"

	"github.com/MrSnakeDoc/moraka/internal/domain"
	"github.com/MrSnakeDoc/moraka/internal/index"
	"github.com/MrSnakeDoc/moraka/internal/logger"
)

// RedisSyncer fills a new session's catalog from the seed and the persisted listings
type RedisSyncer struct {
	persister index.Persister // nil = seed only
	logger    logger.Logger
}

// NewRedisSyncer creates a new Redis syncer
func NewRedisSyncer(persister index.Persister, log logger.Logger) *RedisSyncer {
	return &RedisSyncer{
		persister: persister,
		logger:    log,
	}
}

// Sync loads seed plus persisted listings into store, newest first.
// A seed listing wins over a persisted one with the same ID. Persistence
// errors are returned after the store has been loaded with the seed alone.
func (rs *RedisSyncer) Sync(ctx context.Context, store *index.ListingStore, seed []domain.Listing) error {
	if rs.persister == nil {
		store.Load(seed)
		return nil
	}

	persisted, err := rs.persister.LoadAll(ctx)
	if err != nil {
		store.Load(seed)
		return err
	}

	seeded := make(map[string]struct{}, len(seed))
	for _, l := range seed {
		seeded[l.ID] = struct{}{}
	}

	merged := make([]domain.Listing, 0, len(seed)+len(persisted))
	merged = append(merged, seed...)
	for _, l := range persisted {
		if _, dup := seeded[l.ID]; dup {
			continue
		}
		merged = append(merged, l)
	}

	// Stable keeps seed order among equal dates
	slices.SortStableFunc(merged, func(a, b domain.Listing) int {
		return b.PostedDate.Compare(a.PostedDate)
	})

	count := store.Load(merged)

	rs.logger.Debug("synced listings from redis",
		logger.Int("persisted", len(persisted)),
		logger.Int("count", count))

	return nil
}
