package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"confess-bot/internal/models"
	"confess-bot/pkg/logger"

	"gopkg.in/telebot.v4"
)

func (b *Bot) handleText(c telebot.Context) error {
	msg := c.Message()

	if msg.OriginalChat != nil {
		return b.handleDelete(c)
	}

	if b.consumeHelpPending(c.Sender().ID) {
		return b.forwardHelpMessage(c)
	}

	if strings.HasPrefix(msg.Text, "/") {
		return c.Send("Unknown command. Use /guide to learn how confessions work.")
	}

	sub := models.Submission{
		Kind:       models.KindText,
		Text:       msg.Text,
		HasLink:    hasLink(msg.Entities),
		ReceivedAt: time.Now(),
	}
	return b.handleSubmission(c, sub)
}

func (b *Bot) handlePhoto(c telebot.Context) error {
	msg := c.Message()

	if msg.OriginalChat != nil {
		return b.handleDelete(c)
	}

	if b.consumeHelpPending(c.Sender().ID) {
		return b.forwardHelpMessage(c)
	}

	sub := models.Submission{
		Kind:       models.KindPhoto,
		PhotoID:    msg.Photo.FileID,
		Caption:    msg.Caption,
		HasLink:    hasLink(msg.CaptionEntities),
		ReceivedAt: time.Now(),
	}
	return b.handleSubmission(c, sub)
}

func (b *Bot) handleSubmission(c telebot.Context, sub models.Submission) error {
	userID := c.Sender().ID
	now := time.Now()

	decision := b.gate.Evaluate(userID, sub, now)
	if !decision.Accepted() {
		logger.Debug("Submission rejected",
			logger.Int64("user_id", userID),
			logger.String("verdict", string(decision.Verdict)),
		)
		return c.Send(rejectionMessage(decision))
	}

	offset := b.windows.Offset(userID, now)

	rec := models.AuditRecord{
		UserID:    userID,
		FirstName: c.Sender().FirstName,
		Username:  c.Sender().Username,
		Kind:      sub.Kind,
		Content:   sub.Body(),
		PhotoID:   sub.PhotoID,
	}

	delay := b.sched.Schedule(userID, now, offset, func() {
		b.pub.Run(context.Background(), sub, rec)
	})

	logger.Info("Submission accepted",
		logger.Int64("user_id", userID),
		logger.String("kind", string(sub.Kind)),
		logger.Duration("delay", delay),
	)

	if delay > 0 {
		return c.Send(fmt.Sprintf(
			"Your confession is in the queue and will be posted in about %d seconds.",
			int(delay.Seconds()),
		))
	}
	return c.Send("Your confession has been posted anonymously.")
}

func (b *Bot) handleDelete(c telebot.Context) error {
	msg := c.Message()

	content := msg.Text
	kind := models.KindText
	if msg.Photo != nil {
		content = msg.Caption
		kind = models.KindPhoto
	}

	rec := models.AuditRecord{
		UserID:    c.Sender().ID,
		FirstName: c.Sender().FirstName,
		Username:  c.Sender().Username,
		Kind:      kind,
		Content:   content,
	}

	res := b.deleter.Request(
		context.Background(),
		rec,
		msg.OriginalChat.ID,
		msg.OriginalChat.Username,
		msg.OriginalMessageID,
		time.Now(),
	)

	switch res.Outcome {
	case models.DeleteOK:
		return c.Send("The post has been deleted.")
	case models.DeleteBanned:
		return c.Send("You are banned from using this bot.")
	case models.DeleteWrongOrigin:
		return c.Send("I can only delete posts from the official confession channel.")
	case models.DeleteCooldown:
		return c.Send(fmt.Sprintf(
			"You are on a cooldown. Please wait %d more seconds.",
			int(res.Remaining.Seconds()),
		))
	default:
		return c.Send("Could not delete the message. It might be too old or I may lack permissions.")
	}
}

func rejectionMessage(d models.Decision) string {
	switch d.Verdict {
	case models.VerdictBanned:
		return "You are banned from using this bot."
	case models.VerdictTimeout:
		return fmt.Sprintf(
			"You are timed out. Please wait %d more seconds.",
			int(d.Remaining.Seconds()),
		)
	case models.VerdictFeatureDisabled:
		if d.Feature == models.FeatureLinks {
			return "Confessions with links are currently disabled."
		}
		return "Photo confessions are currently disabled."
	case models.VerdictBannedWord:
		return "Your message contains a banned word and was not posted."
	case models.VerdictLinkCooldown:
		return fmt.Sprintf(
			"You recently posted a link. Please wait %d more seconds.",
			int(d.Remaining.Seconds()),
		)
	default:
		return "Your confession was not posted."
	}
}

func hasLink(entities telebot.Entities) bool {
	for _, e := range entities {
		if e.Type == telebot.EntityURL || e.Type == telebot.EntityTextLink {
			return true
		}
	}
	return false
}

func (b *Bot) handleStart(c telebot.Context) error {
	return c.Send("Welcome to the Confession Bot! Send me a message or a photo, " +
		"and I will post it anonymously to the confession channel. Use /help to contact the owner.")
}

func (b *Bot) handleGuide(c telebot.Context) error {
	guide := "*Confession Guide*\n\n" +
		"This bot only supports text and images. Files are not supported.\n\n" +
		"To delete a confession, forward it from the channel back to me.\n\n" +
		"*!! Restrictions !!*\n" +
		"- Each user has a per-post cooldown to reduce spam.\n" +
		"- Deleting confessions has its own cooldown to reduce abuse.\n" +
		"- Confessions with restricted words will not be posted.\n" +
		"- Confessions sent during night hours are queued until morning."

	return c.Send(guide, &telebot.SendOptions{ParseMode: b.cfg.ParseMode})
}

func (b *Bot) handleBannedWords(c telebot.Context) error {
	words := b.store.Words()
	if len(words) == 0 {
		return c.Send("No banned words configured.")
	}
	return c.Send("Banned words: " + strings.Join(words, ", "))
}

func (b *Bot) handleClearQueue(c telebot.Context) error {
	if b.sched.Clear(c.Sender().ID) {
		return c.Send("Your queue has been cleared.")
	}
	return c.Send("You don't have anything in the queue.")
}

func (b *Bot) handleHelp(c telebot.Context) error {
	b.helpMu.Lock()
	b.helpPending[c.Sender().ID] = struct{}{}
	b.helpMu.Unlock()

	return c.Send("Please send your question or problem. I will forward it anonymously to the owner. Use /cancel to abort.")
}

func (b *Bot) handleCancel(c telebot.Context) error {
	b.helpMu.Lock()
	_, pending := b.helpPending[c.Sender().ID]
	delete(b.helpPending, c.Sender().ID)
	b.helpMu.Unlock()

	if !pending {
		return c.Send("Nothing to cancel.")
	}
	return c.Send("Help request cancelled.")
}

func (b *Bot) consumeHelpPending(userID int64) bool {
	b.helpMu.Lock()
	defer b.helpMu.Unlock()

	if _, ok := b.helpPending[userID]; !ok {
		return false
	}
	delete(b.helpPending, userID)
	return true
}

func (b *Bot) forwardHelpMessage(c telebot.Context) error {
	if b.cfg.OwnerID == 0 {
		return c.Send("The owner has not set up help requests.")
	}

	if err := c.ForwardTo(&telebot.User{ID: b.cfg.OwnerID}); err != nil {
		logger.Error("Failed to forward help message",
			logger.Err(err),
			logger.Int64("user_id", c.Sender().ID),
		)
		return c.Send("Could not deliver your message. Please try again later.")
	}
	return c.Send("Your message has been sent to the owner. Thank you.")
}
