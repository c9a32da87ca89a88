package cooldown

import (
	"sync"
	"time"
)

// Tracker enforces a minimum interval between two actions of the same
// kind by the same submitter. Each action kind gets its own instance.
type Tracker struct {
	mu     sync.Mutex
	window time.Duration
	last   map[int64]time.Time
}

func NewTracker(window time.Duration) *Tracker {
	return &Tracker{
		window: window,
		last:   make(map[int64]time.Time),
	}
}

func (t *Tracker) Window() time.Duration {
	return t.window
}

// Remaining returns how long the submitter must still wait, or zero.
func (t *Tracker) Remaining(userID int64, now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remainingLocked(userID, now)
}

// Allow checks and, when the window is clear, stamps now in one
// critical section. Returns the remaining wait when still blocked.
func (t *Tracker) Allow(userID int64, now time.Time) (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if remaining := t.remainingLocked(userID, now); remaining > 0 {
		return remaining, false
	}
	t.last[userID] = now
	return 0, true
}

// Stamp records now as the submitter's last action without checking.
func (t *Tracker) Stamp(userID int64, now time.Time) {
	t.mu.Lock()
	t.last[userID] = now
	t.mu.Unlock()
}

func (t *Tracker) remainingLocked(userID int64, now time.Time) time.Duration {
	last, ok := t.last[userID]
	if !ok {
		return 0
	}

	elapsed := now.Sub(last)
	if elapsed >= t.window {
		return 0
	}
	return t.window - elapsed
}
