package freshness

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 11, 6, 12, 0, 0, 0, time.UTC)}
}

func TestTracker_TTLBoundary(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(clock.Now)
	defer tr.Stop()

	tr.Mark("a", DefaultTTL)
	assert.True(t, tr.IsFresh("a"))

	clock.Advance(DefaultTTL - time.Millisecond)
	assert.True(t, tr.IsFresh("a"), "still fresh just before TTL")

	clock.Advance(2 * time.Millisecond)
	assert.False(t, tr.IsFresh("a"), "not fresh just after TTL")
	assert.Empty(t, tr.Fresh())
}

func TestTracker_RemarkRestartsTTL(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(clock.Now)
	defer tr.Stop()

	tr.Mark("a", 10*time.Second)
	clock.Advance(8 * time.Second)
	tr.Mark("a", 10*time.Second)
	clock.Advance(8 * time.Second)

	assert.True(t, tr.IsFresh("a"), "second mark should win")
	assert.Equal(t, 1, tr.Len(), "marks are a set, not a multiset")
}

func TestTracker_TimerRemovesMark(t *testing.T) {
	tr := NewTracker(nil)
	defer tr.Stop()

	tr.Mark("a", 20*time.Millisecond)
	assert.True(t, tr.IsFresh("a"))

	assert.Eventually(t, func() bool { return tr.Len() == 0 }, time.Second, 5*time.Millisecond)
	assert.False(t, tr.IsFresh("a"))
}

func TestTracker_StaleTimerDoesNotRemoveNewerMark(t *testing.T) {
	tr := NewTracker(nil)
	defer tr.Stop()

	tr.Mark("a", 20*time.Millisecond)
	tr.Mark("a", time.Hour)

	time.Sleep(60 * time.Millisecond)
	assert.True(t, tr.IsFresh("a"))
}

func TestTracker_UnmarkIsIdempotent(t *testing.T) {
	tr := NewTracker(nil)
	defer tr.Stop()

	tr.Unmark("missing")
	tr.Mark("a", time.Minute)
	tr.Unmark("a")
	tr.Unmark("a")

	assert.False(t, tr.IsFresh("a"))
	assert.Zero(t, tr.Len())
}

func TestTracker_StopCancelsEverything(t *testing.T) {
	tr := NewTracker(nil)
	tr.Mark("a", 10*time.Millisecond)
	tr.Mark("b", time.Minute)

	tr.Stop()
	assert.Zero(t, tr.Len())

	// A mark after teardown is ignored and a second Stop is harmless.
	tr.Mark("c", time.Minute)
	assert.False(t, tr.IsFresh("c"))
	tr.Stop()

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, tr.Len())
}

func TestTracker_FreshIsSorted(t *testing.T) {
	tr := NewTracker(nil)
	defer tr.Stop()

	tr.Mark("c", time.Minute)
	tr.Mark("a", time.Minute)
	tr.Mark("b", time.Minute)

	assert.Equal(t, []string{"a", "b", "c"}, tr.Fresh())
}

func TestTracker_ConcurrentAccess(t *testing.T) {
	tr := NewTracker(nil)
	defer tr.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() { defer wg.Done(); tr.Mark("x", time.Millisecond) }()
		go func() { defer wg.Done(); _ = tr.IsFresh("x") }()
		go func() { defer wg.Done(); tr.Unmark("x") }()
	}
	wg.Wait()
}
