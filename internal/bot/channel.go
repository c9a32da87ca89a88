package bot

import (
	"fmt"
	"strconv"

	"confess-bot/internal/models"

	"gopkg.in/telebot.v4"
)

type recipient string

func (r recipient) Recipient() string {
	return string(r)
}

// Channel adapts the telegram bot into the publication surface the
// publisher and deletion coordinator work against.
type Channel struct {
	bot       *telebot.Bot
	parseMode string
}

func NewChannel(b *telebot.Bot, parseMode string) *Channel {
	return &Channel{bot: b, parseMode: parseMode}
}

func (ch *Channel) Publish(destination string, sub models.Submission) (int, error) {
	var (
		msg *telebot.Message
		err error
	)

	switch sub.Kind {
	case models.KindPhoto:
		photo := &telebot.Photo{
			File:    telebot.File{FileID: sub.PhotoID},
			Caption: sub.Caption,
		}
		msg, err = ch.bot.Send(recipient(destination), photo)
	default:
		msg, err = ch.bot.Send(recipient(destination), sub.Text)
	}

	if err != nil {
		return 0, fmt.Errorf("failed to send to channel: %w", err)
	}
	return msg.ID, nil
}

func (ch *Channel) Delete(destination string, messageID int) error {
	chatID, err := strconv.ParseInt(destination, 10, 64)
	if err != nil {
		return fmt.Errorf("unsupported chat reference %q: %w", destination, err)
	}

	return ch.bot.Delete(&telebot.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chatID,
	})
}
