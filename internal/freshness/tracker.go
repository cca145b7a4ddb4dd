// Package freshness tracks which listings were added recently.
//
// A mark lives for a fixed TTL. Expiry is enforced twice: a timer removes the
// mark when the TTL elapses, and reads compare the stored deadline against the
// clock so a late or stopped timer never keeps a listing "new".
package freshness

import (
	"sort"
	"sync"
	"time"
)

// DefaultTTL is how long a listing stays new.
const DefaultTTL = 30 * time.Second

type mark struct {
	deadline time.Time
	timer    *time.Timer
}

// Tracker is a set of listing IDs with per-ID expiry.
// It does not own listings, only their IDs.
type Tracker struct {
	mu      sync.RWMutex
	marks   map[string]*mark
	now     func() time.Time
	stopped bool
}

// NewTracker creates a tracker. A nil clock means time.Now.
func NewTracker(clock func() time.Time) *Tracker {
	if clock == nil {
		clock = time.Now
	}
	return &Tracker{
		marks: make(map[string]*mark),
		now:   clock,
	}
}

// Mark flags id as fresh for ttl. Marking an already fresh id restarts its TTL;
// the previous timer is cancelled so only one expiry is ever pending per id.
func (t *Tracker) Mark(id string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}
	if prev, ok := t.marks[id]; ok {
		prev.timer.Stop()
	}

	m := &mark{deadline: t.now().Add(ttl)}
	m.timer = time.AfterFunc(ttl, func() { t.expire(id, m) })
	t.marks[id] = m
}

// expire removes id only if m is still its current mark.
func (t *Tracker) expire(id string, m *mark) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}
	if cur, ok := t.marks[id]; ok && cur == m {
		delete(t.marks, id)
	}
}

// IsFresh reports whether id is currently marked.
func (t *Tracker) IsFresh(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	m, ok := t.marks[id]
	return ok && t.now().Before(m.deadline)
}

// Unmark removes id. Safe to call on unknown or already expired ids.
func (t *Tracker) Unmark(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if m, ok := t.marks[id]; ok {
		m.timer.Stop()
		delete(t.marks, id)
	}
}

// Fresh returns the currently fresh ids, sorted.
func (t *Tracker) Fresh() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := t.now()
	ids := make([]string, 0, len(t.marks))
	for id, m := range t.marks {
		if now.Before(m.deadline) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of pending marks, expired-but-unswept ones included.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.marks)
}

// Stop cancels every pending timer and drops all marks.
// Later Mark calls and late timer callbacks are no-ops.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}
	t.stopped = true
	for id, m := range t.marks {
		m.timer.Stop()
		delete(t.marks, id)
	}
}
