package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"confess-bot/internal/config"
	"confess-bot/internal/models"
	"confess-bot/pkg/logger"

	"github.com/nats-io/nats.go"
)

const (
	Subject       = "confessions.audit"
	ConsumerGroup = "confess-bot"
)

type NATS struct {
	conn      *nats.Conn
	jetstream nats.JetStream
	cfg       config.NATSConfig
}

func New(cfg config.NATSConfig) (*NATS, error) {
	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to get JetStream: %w", err)
	}

	n := &NATS{
		conn:      conn,
		jetstream: js,
		cfg:       cfg,
	}

	return n, nil
}

func (n *NATS) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}

func (n *NATS) Append(ctx context.Context, rec *models.AuditRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	_, err = n.jetstream.Publish(Subject, data, nats.Context(ctx))
	if err != nil {
		return fmt.Errorf("failed to publish audit record: %w", err)
	}

	logger.Debug("Audit record published",
		logger.String("action", string(rec.Action)),
		logger.Int64("user_id", rec.UserID),
	)

	return nil
}

func (n *NATS) Consume(ctx context.Context, handler func(*models.AuditRecord) error) error {
	sub, err := n.jetstream.PullSubscribe(
		Subject,
		ConsumerGroup,
		nats.BindStream(n.cfg.StreamName),
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to audit: %w", err)
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			msgs, err := sub.Fetch(10, nats.MaxWait(500*time.Millisecond))
			if err != nil {
				if err == nats.ErrTimeout {
					continue
				}
				return fmt.Errorf("failed to fetch messages: %w", err)
			}

			for _, msg := range msgs {
				var rec models.AuditRecord
				if err := json.Unmarshal(msg.Data, &rec); err != nil {
					logger.Error("Failed to unmarshal audit record",
						logger.Err(err),
					)
					msg.Nak()
					continue
				}

				if err := handler(&rec); err != nil {
					logger.Error("Failed to process audit record",
						logger.Err(err),
					)
					msg.Nak()
					continue
				}

				msg.Ack()
			}
		}
	}
}
