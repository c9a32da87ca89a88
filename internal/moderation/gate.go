package moderation

import (
	"time"

	"confess-bot/internal/cooldown"
	"confess-bot/internal/models"
	"confess-bot/internal/store"
)

// Gate is the synchronous accept/reject decision point ahead of
// scheduling. Checks run in a fixed order and stop at the first
// rejection; nothing is mutated on rejection except the lazy eviction
// of an expired timeout.
type Gate struct {
	store *store.Store
	links *cooldown.Tracker
}

func NewGate(st *store.Store, links *cooldown.Tracker) *Gate {
	return &Gate{store: st, links: links}
}

func (g *Gate) Evaluate(userID int64, sub models.Submission, now time.Time) models.Decision {
	if g.store.IsBanned(userID) {
		return models.Decision{Verdict: models.VerdictBanned}
	}

	if remaining := g.store.TimeoutRemaining(userID, now); remaining > 0 {
		return models.Decision{Verdict: models.VerdictTimeout, Remaining: remaining}
	}

	if sub.Kind == models.KindPhoto && !g.store.PhotosEnabled() {
		return models.Decision{Verdict: models.VerdictFeatureDisabled, Feature: models.FeaturePhotos}
	}

	if g.store.MatchesBannedWord(sub.Body()) {
		return models.Decision{Verdict: models.VerdictBannedWord}
	}

	if sub.HasLink {
		if !g.store.LinksEnabled() {
			return models.Decision{Verdict: models.VerdictFeatureDisabled, Feature: models.FeatureLinks}
		}
		remaining, ok := g.links.Allow(userID, now)
		if !ok {
			return models.Decision{Verdict: models.VerdictLinkCooldown, Remaining: remaining}
		}
	}

	return models.Accept()
}
