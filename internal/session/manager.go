// Package session owns the per-user runtime: one catalog, freshness tracker and
// feed simulator per registered user, torn down together when the session ends.
package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
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

// Config tunes the sessions created by a Manager.
type Config struct {
	Feed        scheduler.FeedConfig
	Now         func() time.Time // nil = time.Now
	ManualFeed  bool             // simulator advances only through Session.Tick
	MaxSessions int              // 0 = no limit
}

// Manager creates and tears down sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	pending  int  // slots reserved by Start calls still loading their catalog
	closed   bool // set by Shutdown, refuses new sessions

	ctx       context.Context // parent of every simulator loop
	seed      []domain.Listing
	persister index.Persister // nil = memory only
	syncer    *scheduler.RedisSyncer
	notifier  notify.Notifier
	logger    logger.Logger
	cfg       Config
}

// NewManager creates a session manager. Simulators run until their session
// ends or ctx is cancelled. persister may be nil.
func NewManager(
	ctx context.Context,
	seed []domain.Listing,
	persister index.Persister,
	notifier notify.Notifier,
	log logger.Logger,
	cfg Config,
) *Manager {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Feed.Now == nil {
		cfg.Feed.Now = cfg.Now
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier(log)
	}

	return &Manager{
		sessions:  make(map[string]*Session),
		ctx:       ctx,
		seed:      seed,
		persister: persister,
		syncer:    scheduler.NewRedisSyncer(persister, log),
		notifier:  notifier,
		logger:    log,
		cfg:       cfg,
	}
}

// Start opens a session for a registered user: its catalog is loaded from the
// seed and persistence, then its feed simulator starts.
func (m *Manager) Start(ctx context.Context, user domain.User) (*Session, error) {
	if err := m.reserve(); err != nil {
		return nil, err
	}

	s, err := m.open(ctx, user)
	if err != nil {
		m.release()
		return nil, err
	}

	m.mu.Lock()
	m.pending--
	if m.closed {
		m.mu.Unlock()
		s.stop()
		return nil, domain.ErrShuttingDown
	}
	m.sessions[s.ID] = s
	m.mu.Unlock()

	metrics.ActiveSessions.Inc()
	s.logger.Info("session started",
		logger.String("city", user.City),
		logger.Int("listings", s.store.Count()))
	m.notifier.UserWelcomed(user.Name)

	return s, nil
}

// reserve claims a session slot before the catalog is loaded, so concurrent
// starts cannot overshoot MaxSessions.
func (m *Manager) reserve() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.ErrShuttingDown
	}
	if m.cfg.MaxSessions > 0 && len(m.sessions)+m.pending >= m.cfg.MaxSessions {
		return domain.ErrSessionLimit
	}
	m.pending++
	return nil
}

func (m *Manager) release() {
	m.mu.Lock()
	m.pending--
	m.mu.Unlock()
}

// open builds a session and starts its feed. The session is not registered yet.
func (m *Manager) open(ctx context.Context, user domain.User) (*Session, error) {
	id := uuid.NewString()
	log := m.logger.With(logger.String("session_id", id))

	store := index.NewListingStore(m.persister, log)
	if err := m.syncer.Sync(ctx, store, m.seed); err != nil {
		// Degrade to the seed catalog
		log.Warn("failed to load persisted listings", logger.Error(err))
	}

	tracker := freshness.NewTracker(m.cfg.Now)
	s := &Session{
		ID:        id,
		User:      user,
		StartedAt: m.cfg.Now(),
		store:     store,
		tracker:   tracker,
		feed:      scheduler.NewFeedSimulator(store, tracker, log, m.cfg.Feed),
		notifier:  m.notifier,
		logger:    log,
		now:       m.cfg.Now,
	}

	if !m.cfg.ManualFeed {
		if err := s.feed.Start(m.ctx); err != nil {
			tracker.Stop()
			return nil, fmt.Errorf("failed to start feed simulator: %w", err)
		}
	}
	return s, nil
}

// Get returns a live session
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	return s, nil
}

// End stops a session's simulator and tracker and forgets it.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}

	s.stop()
	metrics.ActiveSessions.Dec()
	s.logger.Info("session ended", logger.Duration("duration", m.cfg.Now().Sub(s.StartedAt)))
	return nil
}

// Shutdown ends every live session. Later Start calls fail with
// domain.ErrShuttingDown.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.stop()
		metrics.ActiveSessions.Dec()
	}

	if len(sessions) > 0 {
		m.logger.Info("sessions shut down", logger.Int("count", len(sessions)))
	}
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

// Sessions returns the live sessions ordered by start time.
func (m *Manager) Sessions() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}

// Catalogs implements scheduler.CatalogSource.
func (m *Manager) Catalogs() []scheduler.Catalog {
	sessions := m.Sessions()
	out := make([]scheduler.Catalog, len(sessions))
	for i, s := range sessions {
		out[i] = scheduler.Catalog{Store: s.store, Tracker: s.tracker}
	}
	return out
}
