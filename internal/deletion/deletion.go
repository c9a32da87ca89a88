package deletion

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"confess-bot/internal/cooldown"
	"confess-bot/internal/models"
	"confess-bot/internal/publisher"
	"confess-bot/internal/store"
	"confess-bot/pkg/logger"
)

// Coordinator handles retraction requests: a confession forwarded back
// from the channel is removed, gated by a per-submitter cooldown that
// is only consumed when the removal actually succeeds.
type Coordinator struct {
	mu          sync.Mutex
	store       *store.Store
	cooldowns   *cooldown.Tracker
	channel     publisher.Channel
	sink        publisher.Sink
	destination string
}

func New(st *store.Store, cd *cooldown.Tracker, ch publisher.Channel, sink publisher.Sink, destination string) *Coordinator {
	return &Coordinator{
		store:       st,
		cooldowns:   cd,
		channel:     ch,
		sink:        sink,
		destination: destination,
	}
}

func (c *Coordinator) Request(ctx context.Context, rec models.AuditRecord, originChatID int64, originUsername string, originMessageID int, now time.Time) models.DeleteResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store.IsBanned(rec.UserID) {
		return models.DeleteResult{Outcome: models.DeleteBanned}
	}

	if !MatchesDestination(originChatID, originUsername, c.destination) {
		return models.DeleteResult{Outcome: models.DeleteWrongOrigin}
	}

	if remaining := c.cooldowns.Remaining(rec.UserID, now); remaining > 0 {
		return models.DeleteResult{Outcome: models.DeleteCooldown, Remaining: remaining}
	}

	if err := c.channel.Delete(strconv.FormatInt(originChatID, 10), originMessageID); err != nil {
		logger.Error("Failed to delete channel message",
			logger.Err(err),
			logger.Int64("user_id", rec.UserID),
			logger.Int("message_id", originMessageID),
		)
		return models.DeleteResult{Outcome: models.DeleteFailed, Err: err}
	}

	c.cooldowns.Stamp(rec.UserID, now)

	rec.Action = models.ActionDelete
	rec.MessageID = originMessageID
	if c.sink != nil {
		if err := c.sink.Append(ctx, &rec); err != nil {
			logger.Error("Failed to append audit record",
				logger.Err(err),
				logger.Int64("user_id", rec.UserID),
			)
		}
	}

	return models.DeleteResult{Outcome: models.DeleteOK}
}

// MatchesDestination reports whether a forwarded message's origin chat
// is the configured publication channel, tolerating the -100 prefix
// the Bot API puts on channel ids and the @username form.
func MatchesDestination(originChatID int64, originUsername, destination string) bool {
	if destination == "" {
		return false
	}

	if strings.HasPrefix(destination, "@") {
		return originUsername != "" && strings.EqualFold("@"+originUsername, destination)
	}

	id := strconv.FormatInt(originChatID, 10)
	if id == destination {
		return true
	}
	return strings.TrimPrefix(id, "-100") == strings.TrimPrefix(destination, "-100")
}
