package index

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/moraka/internal/domain"
	"github.com/MrSnakeDoc/moraka/internal/logger"
)

// Persister is the optional write-through collaborator of a ListingStore.
type Persister interface {
	LoadAll(ctx context.Context) ([]domain.Listing, error)
	Append(ctx context.Context, listing domain.Listing) error
}

// ListingStore is the authoritative in-memory catalog of one session.
// Listings are kept newest first: index 0 is always the last insert.
type ListingStore struct {
	mu         sync.RWMutex
	listings   []domain.Listing    // newest first
	ids        map[string]struct{} // ID set for duplicate detection
	persister  Persister           // optional, nil = memory only
	logger     logger.Logger
	lastInsert time.Time
}

// NewListingStore creates an empty store. persister may be nil.
func NewListingStore(persister Persister, log logger.Logger) *ListingStore {
	return &ListingStore{
		ids:       make(map[string]struct{}),
		persister: persister,
		logger:    log,
	}
}

// Load replaces the catalog with listings, kept in the given order.
// Later duplicates of an ID are dropped. Nothing is written through.
func (s *ListingStore) Load(listings []domain.Listing) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Clear and rebuild
	s.listings = make([]domain.Listing, 0, len(listings))
	s.ids = make(map[string]struct{}, len(listings))
	for _, l := range listings {
		if _, dup := s.ids[l.ID]; dup {
			continue
		}
		s.ids[l.ID] = struct{}{}
		s.listings = append(s.listings, l)
	}
	return len(s.listings)
}

// Insert prepends listing to the catalog.
// An ID already present is rejected with domain.ErrDuplicateListing and the
// catalog is left untouched.
func (s *ListingStore) Insert(ctx context.Context, listing domain.Listing) error {
	if listing.ID == "" {
		return fmt.Errorf("insert listing: empty id")
	}

	s.mu.Lock()
	if _, dup := s.ids[listing.ID]; dup {
		s.mu.Unlock()
		return fmt.Errorf("insert listing %s: %w", listing.ID, domain.ErrDuplicateListing)
	}

	s.ids[listing.ID] = struct{}{}
	s.listings = append(s.listings, domain.Listing{})
	copy(s.listings[1:], s.listings)
	s.listings[0] = listing
	s.lastInsert = time.Now()
	s.mu.Unlock()

	// Write-through (best effort)
	if s.persister != nil {
		if err := s.persister.Append(ctx, listing); err != nil {
			s.logger.Warn("failed to persist listing",
				logger.String("listing_id", listing.ID),
				logger.Error(err))
		}
	}

	return nil
}

// Snapshot returns a copy of the catalog, newest first.
func (s *ListingStore) Snapshot() []domain.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Listing, len(s.listings))
	copy(out, s.listings)
	return out
}

// Get retrieves a listing by ID
func (s *ListingStore) Get(id string) (domain.Listing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.ids[id]; !ok {
		return domain.Listing{}, false
	}
	for _, l := range s.listings {
		if l.ID == id {
			return l, true
		}
	}
	return domain.Listing{}, false
}

// Contains reports whether id is already used.
func (s *ListingStore) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.ids[id]
	return ok
}

// Count returns the number of listings in the store
func (s *ListingStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.listings)
}

// LastInsert returns the time of the last successful Insert
func (s *ListingStore) LastInsert() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastInsert
}
