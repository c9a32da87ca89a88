package publisher

import (
	"context"
	"strings"
	"time"

	"confess-bot/internal/models"
	"confess-bot/pkg/logger"

	"github.com/sethvargo/go-retry"
)

// Channel is the external publication surface. The telegram binding
// implements it; tests use a recording fake.
type Channel interface {
	Publish(destination string, sub models.Submission) (int, error)
	Delete(destination string, messageID int) error
}

// Sink receives audit records, best effort.
type Sink interface {
	Append(ctx context.Context, rec *models.AuditRecord) error
}

// Publisher is the body of a deferred publish job. It runs off the
// decision path: the channel send and the audit append are two
// independent best-effort effects, and a failed send never refunds the
// submitter's consumed slot.
type Publisher struct {
	channel     Channel
	sink        Sink
	destination string
}

func New(channel Channel, sink Sink, destination string) *Publisher {
	return &Publisher{
		channel:     channel,
		sink:        sink,
		destination: destination,
	}
}

func (p *Publisher) Run(ctx context.Context, sub models.Submission, rec models.AuditRecord) {
	var messageID int

	backoff := retry.WithMaxRetries(3, retry.NewExponential(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		id, err := p.channel.Publish(p.destination, sub)
		if err != nil {
			if isRateLimited(err) {
				logger.Warn("Rate limited, retrying publish",
					logger.Int64("user_id", rec.UserID),
				)
				return retry.RetryableError(err)
			}
			return err
		}
		messageID = id
		return nil
	})
	if err != nil {
		logger.Error("Failed to publish confession",
			logger.Err(err),
			logger.Int64("user_id", rec.UserID),
			logger.String("kind", string(sub.Kind)),
		)
		return
	}

	rec.Action = models.ActionPublish
	rec.MessageID = messageID
	if p.sink != nil {
		if err := p.sink.Append(ctx, &rec); err != nil {
			logger.Error("Failed to append audit record",
				logger.Err(err),
				logger.Int64("user_id", rec.UserID),
			)
		}
	}
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Too Many Requests") || strings.Contains(msg, "retry after")
}
