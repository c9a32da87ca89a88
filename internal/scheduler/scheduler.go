package scheduler

import (
	"sync"
	"time"
)

// Deferrer fires a job once after a delay. The default implementation
// uses the process timer wheel; tests substitute a recording fake.
type Deferrer interface {
	ScheduleOnce(delay time.Duration, fn func())
}

type TimerDeferrer struct{}

func (TimerDeferrer) ScheduleOnce(delay time.Duration, fn func()) {
	time.AfterFunc(delay, fn)
}

// Scheduler serializes each submitter's accepted confessions onto
// non-overlapping future publish instants. Slots only move forward,
// except for the implicit catch-up when a stored slot is in the past.
type Scheduler struct {
	mu        sync.Mutex
	postDelay time.Duration
	slots     map[int64]time.Time
	deferrer  Deferrer
}

func New(postDelay time.Duration, d Deferrer) *Scheduler {
	if d == nil {
		d = TimerDeferrer{}
	}
	return &Scheduler{
		postDelay: postDelay,
		slots:     make(map[int64]time.Time),
		deferrer:  d,
	}
}

func (s *Scheduler) PostDelay() time.Duration {
	return s.postDelay
}

// Schedule commits the submitter's next free slot and registers the
// job to fire after the returned delay. Two consecutive accepted
// submissions from one submitter publish at least postDelay apart, in
// acceptance order; different submitters are independent.
func (s *Scheduler) Schedule(userID int64, now time.Time, windowOffset time.Duration, job func()) time.Duration {
	s.mu.Lock()
	var raw time.Duration
	if slot, ok := s.slots[userID]; ok && slot.After(now) {
		raw = slot.Sub(now)
	}
	total := raw + windowOffset
	s.slots[userID] = now.Add(total + s.postDelay)
	s.mu.Unlock()

	s.deferrer.ScheduleOnce(total, job)
	return total
}

// Clear drops the submitter's slot. Jobs already registered still fire
// at their originally computed time.
func (s *Scheduler) Clear(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.slots[userID]; !ok {
		return false
	}
	delete(s.slots, userID)
	return true
}

func (s *Scheduler) NextSlot(userID int64) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[userID]
	return slot, ok
}
