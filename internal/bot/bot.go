// Package bot routes Telegram chat commands from the administrator to the
// catalog and the ingest pipeline.
package bot

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aurafm/aura-bot/internal/catalog"
	"github.com/aurafm/aura-bot/internal/domain"
	"github.com/aurafm/aura-bot/internal/ingest"
)

// Catalog is the slice of the catalog client the command handlers use.
type Catalog interface {
	ListTracks(ctx context.Context, opts catalog.ListOptions) ([]domain.Track, error)
	SiteConfig(ctx context.Context) (domain.SiteConfig, error)
	SetBlocked(ctx context.Context, blocked bool) error
}

// Ingestor runs downloads and deletions end to end.
type Ingestor interface {
	Run(ctx context.Context, url string, progress ingest.Progress) (*ingest.Result, error)
	Delete(ctx context.Context, id int64) (*domain.Track, error)
}

// Bot handles updates for the single-admin control panel.
type Bot struct {
	api     *tgbotapi.BotAPI
	admin   int64
	catalog Catalog
	ingest  Ingestor
}

func New(api *tgbotapi.BotAPI, adminChatID int64, cat Catalog, ing Ingestor) *Bot {
	return &Bot{
		api:     api,
		admin:   adminChatID,
		catalog: cat,
		ingest:  ing,
	}
}

// Commands lists the command menu registered with Telegram at startup.
func Commands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "start", Description: "Main menu"},
		{Command: "status", Description: "Player status"},
		{Command: "tracks", Description: "List tracks"},
		{Command: "download", Description: "Add a track from YouTube/SoundCloud"},
		{Command: "block", Description: "Block the player"},
		{Command: "unblock", Description: "Unblock the player"},
		{Command: "delete", Description: "Delete a track by ID"},
	}
}

// HandleUpdate dispatches one incoming update. Long-running work is pushed
// to a goroutine so the webhook path never stalls behind a download.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	msg := update.Message
	if msg == nil || !msg.IsCommand() {
		return
	}

	if !b.isAdmin(update) {
		b.reply(msg.Chat.ID, accessDeniedText)
		return
	}

	switch msg.Command() {
	case "start":
		b.replyMarkdown(msg.Chat.ID, startText)
	case "status":
		b.handleStatus(ctx, msg)
	case "tracks":
		b.handleTracks(ctx, msg)
	case "block":
		b.handleSetBlocked(ctx, msg, true)
	case "unblock":
		b.handleSetBlocked(ctx, msg, false)
	case "delete":
		b.handleDelete(ctx, msg)
	case "download":
		b.handleDownload(ctx, msg)
	}
}

func (b *Bot) isAdmin(update tgbotapi.Update) bool {
	from := update.SentFrom()
	return from != nil && from.ID == b.admin
}

func (b *Bot) handleStatus(ctx context.Context, msg *tgbotapi.Message) {
	text, keyboard, err := b.statusReply(ctx)
	if err != nil {
		b.reply(msg.Chat.ID, errorText(err))
		return
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ParseMode = tgbotapi.ModeMarkdown
	reply.ReplyMarkup = keyboard
	b.send(reply)
}

func (b *Bot) statusReply(ctx context.Context) (string, tgbotapi.InlineKeyboardMarkup, error) {
	tracks, err := b.catalog.ListTracks(ctx, catalog.ListOptions{Select: []string{"id", "title", "play_count"}})
	if err != nil {
		return "", tgbotapi.InlineKeyboardMarkup{}, err
	}
	cfg, err := b.catalog.SiteConfig(ctx)
	if err != nil {
		return "", tgbotapi.InlineKeyboardMarkup{}, err
	}

	var totalPlays int64
	for _, t := range tracks {
		totalPlays += t.PlayCount
	}

	return statusText(len(tracks), totalPlays, cfg.Blocked), statusKeyboard(cfg.Blocked), nil
}

func (b *Bot) handleTracks(ctx context.Context, msg *tgbotapi.Message) {
	tracks, err := b.catalog.ListTracks(ctx, catalog.ListOptions{
		Select:  []string{"id", "title", "artist", "duration", "play_count"},
		OrderBy: "created_at",
		Desc:    true,
		Limit:   50,
	})
	if err != nil {
		b.reply(msg.Chat.ID, errorText(err))
		return
	}
	b.replyMarkdown(msg.Chat.ID, tracksText(tracks))
}

func (b *Bot) handleSetBlocked(ctx context.Context, msg *tgbotapi.Message, blocked bool) {
	if err := b.catalog.SetBlocked(ctx, blocked); err != nil {
		b.reply(msg.Chat.ID, errorText(err))
		return
	}
	if blocked {
		b.replyMarkdown(msg.Chat.ID, "🔴 Player *blocked*. Visitors now see the block page.")
	} else {
		b.replyMarkdown(msg.Chat.ID, "🟢 Player *unblocked* and available.")
	}
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		b.reply(msg.Chat.ID, "Usage: /delete <id>")
		return
	}

	track, err := b.ingest.Delete(ctx, id)
	if err != nil {
		b.reply(msg.Chat.ID, errorText(err))
		return
	}
	if track == nil {
		b.reply(msg.Chat.ID, "❌ Track #"+arg+" not found.")
		return
	}
	b.replyMarkdown(msg.Chat.ID, "✅ Track *"+track.Title+"* deleted.")
}

func (b *Bot) handleDownload(ctx context.Context, msg *tgbotapi.Message) {
	url := strings.TrimSpace(msg.CommandArguments())
	if url == "" {
		b.replyMarkdown(msg.Chat.ID, downloadUsageText)
		return
	}
	if !strings.HasPrefix(url, "http") {
		b.reply(msg.Chat.ID, "❌ Invalid link.")
		return
	}

	status := b.send(tgbotapi.NewMessage(msg.Chat.ID, stageText(ingest.StageResolve)))

	// The pipeline blocks on network and the transcoder; run it off the
	// update-handling path so other commands stay responsive.
	go func() {
		progress := func(stage ingest.Stage) {
			b.editStatus(msg.Chat.ID, status, stageText(stage))
		}

		result, err := b.ingest.Run(context.WithoutCancel(ctx), url, progress)
		if err != nil {
			slog.Error("Ingest failed", "url", url, "error", err)
			b.editStatus(msg.Chat.ID, status, errorText(err))
			return
		}
		b.editStatusMarkdown(msg.Chat.ID, status, downloadSuccessText(result))
	}()
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Always answer so the client stops its spinner.
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		slog.Warn("Failed to answer callback", "error", err)
	}

	if query.From == nil || query.From.ID != b.admin || query.Message == nil {
		return
	}

	switch query.Data {
	case "toggle_block":
		cfg, err := b.catalog.SiteConfig(ctx)
		if err != nil {
			slog.Error("Failed to read site config", "error", err)
			return
		}
		if err := b.catalog.SetBlocked(ctx, !cfg.Blocked); err != nil {
			slog.Error("Failed to toggle block", "error", err)
			return
		}
		b.editStatusReply(ctx, query.Message.Chat.ID, query.Message.MessageID)
	case "refresh_status":
		b.editStatusReply(ctx, query.Message.Chat.ID, query.Message.MessageID)
	}
}

func (b *Bot) editStatusReply(ctx context.Context, chatID int64, messageID int) {
	text, keyboard, err := b.statusReply(ctx)
	if err != nil {
		slog.Error("Failed to build status reply", "error", err)
		return
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, keyboard)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		slog.Warn("Failed to edit status message", "error", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) replyMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	b.send(msg)
}

func (b *Bot) send(msg tgbotapi.MessageConfig) tgbotapi.Message {
	sent, err := b.api.Send(msg)
	if err != nil {
		slog.Warn("Failed to send message", "error", err)
	}
	return sent
}

func (b *Bot) editStatus(chatID int64, status tgbotapi.Message, text string) {
	if status.MessageID == 0 {
		return
	}
	edit := tgbotapi.NewEditMessageText(chatID, status.MessageID, text)
	if _, err := b.api.Send(edit); err != nil {
		slog.Warn("Failed to edit message", "error", err)
	}
}

func (b *Bot) editStatusMarkdown(chatID int64, status tgbotapi.Message, text string) {
	if status.MessageID == 0 {
		return
	}
	edit := tgbotapi.NewEditMessageText(chatID, status.MessageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		slog.Warn("Failed to edit message", "error", err)
	}
}
