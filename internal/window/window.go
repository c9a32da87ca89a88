package window

import (
	"time"

	"confess-bot/internal/config"
)

// Gate decides whether confessions publish immediately or wait for the
// active hours to reopen. The interval [start, end) wraps past midnight
// when start >= end. The owner is never delayed.
type Gate struct {
	startHour int
	endHour   int
	ownerID   int64
}

func New(cfg config.WindowConfig, ownerID int64) *Gate {
	return &Gate{
		startHour: cfg.StartHour,
		endHour:   cfg.EndHour,
		ownerID:   ownerID,
	}
}

func (g *Gate) IsActive(now time.Time) bool {
	hour := now.Hour()
	if g.startHour >= g.endHour {
		return hour >= g.startHour || hour < g.endHour
	}
	return hour >= g.startHour && hour < g.endHour
}

// UntilActive returns the wait to the next start-hour boundary. Only
// meaningful when IsActive is false.
func (g *Gate) UntilActive(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), g.startHour, 0, 0, 0, now.Location())
	if now.Hour() >= g.startHour {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// Offset is the window's contribution to a submission's publish delay.
func (g *Gate) Offset(userID int64, now time.Time) time.Duration {
	if g.ownerID != 0 && userID == g.ownerID {
		return 0
	}
	if g.IsActive(now) {
		return 0
	}
	return g.UntilActive(now)
}
