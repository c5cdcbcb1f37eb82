// Package notify pushes short text notifications to the administrator.
package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aurafm/aura-bot/internal/domain"
)

// Notifier delivers a formatted message about a catalog change. Send
// failures are the caller's to log; they are never retried.
type Notifier interface {
	NotifyTrackChange(ctx context.Context, event *domain.ChangeEvent) error
}

// Telegram sends notifications to one fixed chat.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(api *tgbotapi.BotAPI, chatID int64) *Telegram {
	return &Telegram{api: api, chatID: chatID}
}

func (t *Telegram) NotifyTrackChange(ctx context.Context, event *domain.ChangeEvent) error {
	track := event.Subject()
	if track == nil {
		return fmt.Errorf("change event carries no record")
	}

	msg := tgbotapi.NewMessage(t.chatID, FormatChange(event.Type, track))
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := t.api.Send(msg)
	return err
}

// FormatChange renders the notification text for one change event.
func FormatChange(eventType string, track *domain.Track) string {
	switch eventType {
	case domain.EventDelete:
		return fmt.Sprintf("🗑 *Track removed*\n\n*%s* — %s\n🆔 ID: `%d`", track.Title, track.Artist, track.ID)
	case domain.EventUpdate:
		return fmt.Sprintf("✏️ *Track updated*\n\n*%s* — %s\n🆔 ID: `%d`", track.Title, track.Artist, track.ID)
	default:
		return fmt.Sprintf("🎵 *New track added!*\n\n*%s* — %s\n🆔 ID: `%d`", track.Title, track.Artist, track.ID)
	}
}
