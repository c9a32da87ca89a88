package bot

import (
	"context"
	"fmt"
	"sync"

	"confess-bot/internal/config"
	"confess-bot/internal/cooldown"
	"confess-bot/internal/deletion"
	"confess-bot/internal/moderation"
	"confess-bot/internal/models"
	"confess-bot/internal/publisher"
	"confess-bot/internal/scheduler"
	"confess-bot/internal/store"
	"confess-bot/internal/window"
	"confess-bot/pkg/logger"

	"gopkg.in/telebot.v4"
)

// Stats reports audit totals for the owner. The database audit
// repository satisfies it.
type Stats interface {
	Count(ctx context.Context) (int, error)
	CountByAction(ctx context.Context, action models.AuditAction) (int, error)
}

type Bot struct {
	settings telebot.Settings
	cfg      config.BotConfig
	store    *store.Store
	gate     *moderation.Gate
	windows  *window.Gate
	sched    *scheduler.Scheduler
	deletes  *cooldown.Tracker
	sink     publisher.Sink
	stats    Stats
	pub      *publisher.Publisher
	deleter  *deletion.Coordinator
	tbot     *telebot.Bot

	helpMu      sync.Mutex
	helpPending map[int64]struct{}
}

func New(
	cfg config.BotConfig,
	st *store.Store,
	gate *moderation.Gate,
	win *window.Gate,
	sched *scheduler.Scheduler,
	deletes *cooldown.Tracker,
	sink publisher.Sink,
	stats Stats,
) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	return &Bot{
		cfg:         cfg,
		store:       st,
		gate:        gate,
		windows:     win,
		sched:       sched,
		deletes:     deletes,
		sink:        sink,
		stats:       stats,
		helpPending: make(map[int64]struct{}),
		settings: telebot.Settings{
			Token:  cfg.Token,
			Poller: &telebot.LongPoller{Timeout: 10},
		},
	}, nil
}

func (b *Bot) Start() (*telebot.Bot, error) {
	tbot, err := telebot.NewBot(b.settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b.tbot = tbot

	channel := NewChannel(tbot, b.cfg.ParseMode)
	b.pub = publisher.New(channel, b.sink, b.cfg.ChannelID)
	b.deleter = deletion.New(b.store, b.deletes, channel, b.sink, b.cfg.ChannelID)

	b.setupHandlers(tbot)

	go tbot.Start()

	return tbot, nil
}

func (b *Bot) setupHandlers(bot *telebot.Bot) {
	bot.Handle(telebot.OnText, func(c telebot.Context) error {
		logger.Info("Incoming text message",
			logger.Int64("user_id", c.Sender().ID),
			logger.String("username", c.Sender().Username),
		)
		return b.handleText(c)
	})

	bot.Handle(telebot.OnPhoto, func(c telebot.Context) error {
		logger.Info("Incoming photo message",
			logger.Int64("user_id", c.Sender().ID),
			logger.String("username", c.Sender().Username),
		)
		return b.handlePhoto(c)
	})

	bot.Handle("/start", b.handleStart)
	bot.Handle("/guide", b.handleGuide)
	bot.Handle("/bannedwords", b.handleBannedWords)
	bot.Handle("/clearqueue", b.handleClearQueue)
	bot.Handle("/help", b.handleHelp)
	bot.Handle("/cancel", b.handleCancel)

	bot.Handle("/stats", b.adminOnly(b.handleStats))
	bot.Handle("/ban", b.adminOnly(b.handleBan))
	bot.Handle("/unban", b.adminOnly(b.handleUnban))
	bot.Handle("/addword", b.adminOnly(b.handleAddWord))
	bot.Handle("/removeword", b.adminOnly(b.handleRemoveWord))
	bot.Handle("/timeout", b.adminOnly(b.handleTimeout))
	bot.Handle("/untimeout", b.adminOnly(b.handleUntimeout))
	bot.Handle("/togglephotos", b.adminOnly(b.handleTogglePhotos))
	bot.Handle("/togglelinks", b.adminOnly(b.handleToggleLinks))
}

// SendAuditLog delivers an audit record to the private log channel.
func (b *Bot) SendAuditLog(rec *models.AuditRecord) error {
	if b.cfg.LogChannelID == "" {
		return nil
	}

	text := formatAuditLog(rec)

	if rec.Action == models.ActionPublish && rec.Kind == models.KindPhoto && rec.PhotoID != "" {
		photo := &telebot.Photo{
			File:    telebot.File{FileID: rec.PhotoID},
			Caption: text,
		}
		_, err := b.tbot.Send(recipient(b.cfg.LogChannelID), photo)
		return err
	}

	_, err := b.tbot.Send(recipient(b.cfg.LogChannelID), text, &telebot.SendOptions{
		ParseMode: b.cfg.ParseMode,
	})
	return err
}

func formatAuditLog(rec *models.AuditRecord) string {
	switch rec.Action {
	case models.ActionDelete:
		return fmt.Sprintf(
			"*Confession Deleted*\n\n*User ID:* `%d`\n*Name:* %s\n*Username:* %s\n*Message ID:* %d\n\n%s",
			rec.UserID, rec.FirstName, rec.Username, rec.MessageID, rec.Content,
		)
	default:
		label := "Text"
		if rec.Kind == models.KindPhoto {
			label = "Photo"
		}
		return fmt.Sprintf(
			"*New %s Confession*\n\n*User ID:* `%d`\n*Name:* %s\n*Username:* %s\n\n%s",
			label, rec.UserID, rec.FirstName, rec.Username, rec.Content,
		)
	}
}
