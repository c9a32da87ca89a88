package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"confess-bot/internal/models"
	"confess-bot/pkg/logger"

	"gopkg.in/telebot.v4"
)

func (b *Bot) adminOnly(handler telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if b.cfg.OwnerID == 0 || c.Sender().ID != b.cfg.OwnerID {
			return c.Send("This command is only available to the owner.")
		}
		return handler(c)
	}
}

func (b *Bot) handleStats(c telebot.Context) error {
	msg, err := b.statsMessage(context.Background())
	if err != nil {
		logger.Error("Failed to get statistics", logger.Err(err))
		return c.Send("Failed to get statistics.")
	}
	return c.Send(msg, &telebot.SendOptions{ParseMode: b.cfg.ParseMode})
}

func (b *Bot) statsMessage(ctx context.Context) (string, error) {
	total, err := b.stats.Count(ctx)
	if err != nil {
		return "", err
	}

	published, err := b.stats.CountByAction(ctx, models.ActionPublish)
	if err != nil {
		return "", err
	}

	deleted, err := b.stats.CountByAction(ctx, models.ActionDelete)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"*Bot Statistics*\n\n"+
			"Audit records: %d\n"+
			"Published confessions: %d\n"+
			"Deleted confessions: %d",
		total, published, deleted,
	), nil
}

func (b *Bot) handleBan(c telebot.Context) error {
	userID, err := argUserID(c)
	if err != nil {
		return c.Send("Usage: /ban <user id>")
	}

	if err := b.store.Ban(context.Background(), userID); err != nil {
		logger.Error("Failed to ban user", logger.Err(err), logger.Int64("target", userID))
		return c.Send("Failed to ban user.")
	}
	return c.Send(fmt.Sprintf("User %d is now banned.", userID))
}

func (b *Bot) handleUnban(c telebot.Context) error {
	userID, err := argUserID(c)
	if err != nil {
		return c.Send("Usage: /unban <user id>")
	}

	if err := b.store.Unban(context.Background(), userID); err != nil {
		logger.Error("Failed to unban user", logger.Err(err), logger.Int64("target", userID))
		return c.Send("Failed to unban user.")
	}
	return c.Send(fmt.Sprintf("User %d is no longer banned.", userID))
}

func (b *Bot) handleAddWord(c telebot.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Send("Usage: /addword <word>")
	}

	if err := b.store.AddWord(context.Background(), args[0]); err != nil {
		logger.Error("Failed to add banned word", logger.Err(err))
		return c.Send("Failed to add word.")
	}
	return c.Send("Word added to the banned list.")
}

func (b *Bot) handleRemoveWord(c telebot.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Send("Usage: /removeword <word>")
	}

	if err := b.store.RemoveWord(context.Background(), args[0]); err != nil {
		logger.Error("Failed to remove banned word", logger.Err(err))
		return c.Send("Failed to remove word.")
	}
	return c.Send("Word removed from the banned list.")
}

func (b *Bot) handleTimeout(c telebot.Context) error {
	args := c.Args()
	if len(args) != 2 {
		return c.Send("Usage: /timeout <user id> <duration, e.g. 30m>")
	}

	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return c.Send("Usage: /timeout <user id> <duration, e.g. 30m>")
	}

	dur, err := time.ParseDuration(args[1])
	if err != nil || dur <= 0 {
		return c.Send("Usage: /timeout <user id> <duration, e.g. 30m>")
	}

	expiresAt := time.Now().Add(dur)
	if err := b.store.SetTimeout(context.Background(), userID, expiresAt); err != nil {
		logger.Error("Failed to set timeout", logger.Err(err), logger.Int64("target", userID))
		return c.Send("Failed to set timeout.")
	}
	return c.Send(fmt.Sprintf("User %d is timed out until %s.", userID, expiresAt.Format(time.RFC3339)))
}

func (b *Bot) handleUntimeout(c telebot.Context) error {
	userID, err := argUserID(c)
	if err != nil {
		return c.Send("Usage: /untimeout <user id>")
	}

	if err := b.store.ClearTimeout(context.Background(), userID); err != nil {
		logger.Error("Failed to clear timeout", logger.Err(err), logger.Int64("target", userID))
		return c.Send("Failed to clear timeout.")
	}
	return c.Send(fmt.Sprintf("Timeout cleared for user %d.", userID))
}

func (b *Bot) handleTogglePhotos(c telebot.Context) error {
	enabled := !b.store.PhotosEnabled()
	if err := b.store.SetPhotosEnabled(context.Background(), enabled); err != nil {
		logger.Error("Failed to toggle photos", logger.Err(err))
		return c.Send("Failed to toggle photo confessions.")
	}
	if enabled {
		return c.Send("Photo confessions are now enabled.")
	}
	return c.Send("Photo confessions are now disabled.")
}

func (b *Bot) handleToggleLinks(c telebot.Context) error {
	enabled := !b.store.LinksEnabled()
	if err := b.store.SetLinksEnabled(context.Background(), enabled); err != nil {
		logger.Error("Failed to toggle links", logger.Err(err))
		return c.Send("Failed to toggle link confessions.")
	}
	if enabled {
		return c.Send("Confessions with links are now enabled.")
	}
	return c.Send("Confessions with links are now disabled.")
}

func argUserID(c telebot.Context) (int64, error) {
	args := c.Args()
	if len(args) != 1 {
		return 0, fmt.Errorf("expected one argument")
	}
	return strconv.ParseInt(args[0], 10, 64)
}
