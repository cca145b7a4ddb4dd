package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/moraka/internal/domain"
)

// DefaultListingTTL bounds how long a persisted listing survives in Redis
const DefaultListingTTL = 30 * 24 * time.Hour

// Store persists listings in Redis. It implements index.Persister.
type Store struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewStore creates a new Redis store
func NewStore(client redis.UniversalClient) *Store {
	return &Store{
		client: client,
		ttl:    DefaultListingTTL,
	}
}

// Append stores a listing and indexes it by posted date.
// An ID already persisted is rejected with domain.ErrDuplicateListing.
func (s *Store) Append(ctx context.Context, listing domain.Listing) error {
	data, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("failed to marshal listing: %w", err)
	}

	ok, err := s.client.SetNX(ctx, ListingKey(listing.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to save listing: %w", err)
	}
	if !ok {
		return fmt.Errorf("listing %s: %w", listing.ID, domain.ErrDuplicateListing)
	}

	score := float64(listing.PostedDate.UnixMilli())
	if err := s.client.ZAdd(ctx, ListingsByDateKey(), redis.Z{Score: score, Member: listing.ID}).Err(); err != nil {
		return fmt.Errorf("failed to index listing: %w", err)
	}

	return nil
}

// LoadAll returns every persisted listing, newest first.
// IDs whose payload expired or cannot be decoded are pruned.
func (s *Store) LoadAll(ctx context.Context) ([]domain.Listing, error) {
	ids, err := s.client.ZRevRange(ctx, ListingsByDateKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get listing IDs: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Listing{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = ListingKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get listings: %w", err)
	}

	listings, stale := decodeListings(ids, values)
	if len(stale) > 0 {
		// best effort: drop index entries without a readable payload, and the payloads
		members := make([]interface{}, len(stale))
		keys := make([]string, len(stale))
		for i, id := range stale {
			members[i] = id
			keys[i] = ListingKey(id)
		}
		pipe := s.client.TxPipeline()
		pipe.ZRem(ctx, ListingsByDateKey(), members...)
		pipe.Del(ctx, keys...)
		_, _ = pipe.Exec(ctx)
	}

	return listings, nil
}

// decodeListings pairs MGET values with their ids. Missing or unreadable
// payloads are reported as stale.
func decodeListings(ids []string, values []interface{}) (listings []domain.Listing, stale []string) {
	listings = make([]domain.Listing, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var listing domain.Listing
		if err := json.Unmarshal([]byte(raw), &listing); err != nil || listing.ID == "" {
			stale = append(stale, ids[i])
			continue
		}
		listings = append(listings, listing)
	}
	return listings, stale
}

// Count returns the number of indexed listings
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.client.ZCard(ctx, ListingsByDateKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return n, nil
}
