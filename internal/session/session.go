package session

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/moraka/internal/domain"
	"github.com/MrSnakeDoc/moraka/internal/freshness"
	"github.com/MrSnakeDoc/moraka/internal/index"
	"github.com/MrSnakeDoc/moraka/internal/logger"
	"github.com/MrSnakeDoc/moraka/internal/metrics"
	"github.com/MrSnakeDoc/moraka/internal/notify"
	"github.com/MrSnakeDoc/moraka/internal/scheduler"
)

// Session is one registered user's run of the app: a private catalog, its
// freshness marks and the simulator feeding it.
type Session struct {
	ID        string
	User      domain.User
	StartedAt time.Time

	store    *index.ListingStore
	tracker  *freshness.Tracker
	feed     *scheduler.FeedSimulator
	notifier notify.Notifier
	logger   logger.Logger
	now      func() time.Time
	ended    atomic.Bool
}

// ListingView is a listing with the states derived at read time.
type ListingView struct {
	domain.Listing
	Fresh        bool   `json:"fresh"`
	Expired      bool   `json:"expired"`
	Availability string `json:"availability"`
}

// Browse returns the catalog filtered by p, newest first.
func (s *Session) Browse(p domain.Predicate) []ListingView {
	now := s.now()
	listings := domain.Filter(s.store.Snapshot(), p)

	out := make([]ListingView, len(listings))
	for i, l := range listings {
		out[i] = s.view(l, now)
	}
	return out
}

// Listing returns one listing by ID.
func (s *Session) Listing(id string) (ListingView, error) {
	l, ok := s.store.Get(id)
	if !ok {
		return ListingView{}, fmt.Errorf("listing %s: %w", id, domain.ErrListingNotFound)
	}
	return s.view(l, s.now()), nil
}

// Post validates draft and inserts it as the session user's listing.
// Validation failures are returned as domain.ValidationErrors; after the session
// ends it fails with domain.ErrSessionEnded and nothing is inserted.
func (s *Session) Post(ctx context.Context, draft domain.ListingDraft) (domain.Listing, error) {
	if s.ended.Load() {
		return domain.Listing{}, s.endedErr()
	}
	if err := draft.Validate(); err != nil {
		return domain.Listing{}, err
	}

	listing := draft.ToListing(uuid.NewString(), s.User.Name, s.now())
	if err := s.store.Insert(ctx, listing); err != nil {
		return domain.Listing{}, err
	}

	metrics.ListingsInserted.WithLabelValues(metrics.SourceUser).Inc()
	s.logger.Info("listing posted",
		logger.String("listing_id", listing.ID),
		logger.String("category", string(listing.Category)),
		logger.String("city", listing.City))
	s.notifier.ListingPosted(listing.Title, listing.City)

	return listing, nil
}

// Request records interest in a listing. Expired listings can still be requested.
// After the session ends it fails with domain.ErrSessionEnded.
func (s *Session) Request(id string) (domain.Listing, error) {
	if s.ended.Load() {
		return domain.Listing{}, s.endedErr()
	}
	l, ok := s.store.Get(id)
	if !ok {
		return domain.Listing{}, fmt.Errorf("listing %s: %w", id, domain.ErrListingNotFound)
	}

	s.logger.Info("request initiated", logger.String("listing_id", id))
	s.notifier.RequestInitiated(l.Title)
	return l, nil
}

// Tick runs one simulator step outside the schedule.
func (s *Session) Tick(ctx context.Context) (domain.Listing, bool) {
	return s.feed.Tick(ctx)
}

// Count returns the number of listings in the session catalog
func (s *Session) Count() int {
	return s.store.Count()
}

func (s *Session) view(l domain.Listing, now time.Time) ListingView {
	return ListingView{
		Listing:      l,
		Fresh:        s.tracker.IsFresh(l.ID),
		Expired:      l.Expired(now),
		Availability: l.Availability(now),
	}
}

// stop halts the simulator first so no tick can mark after the tracker stops.
func (s *Session) stop() {
	s.ended.Store(true)
	s.feed.Stop()
	s.tracker.Stop()
}

func (s *Session) endedErr() error {
	return fmt.Errorf("session %s: %w", s.ID, domain.ErrSessionEnded)
}
