package bot

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aurafm/aura-bot/internal/domain"
	"github.com/aurafm/aura-bot/internal/ingest"
)

// Telegram rejects messages over 4096 characters; track listings are cut a
// little earlier so the truncation marker always fits.
const maxListLength = 4000

const accessDeniedText = "⛔ Access denied."

const startText = "🎵 *AURA Bot* — control panel\n\n" +
	"Commands:\n" +
	"/status — player statistics\n" +
	"/tracks — list tracks\n" +
	"/block — block the player\n" +
	"/unblock — unblock the player\n" +
	"/download `<url>` — add a track from YouTube/SoundCloud\n" +
	"/delete `<id>` — delete a track\n"

const downloadUsageText = "Usage: /download <url>\n\n" +
	"YouTube, SoundCloud and 1000+ other sites are supported.\n" +
	"Example: `/download https://youtu.be/dQw4w9WgXcQ`"

func statusText(trackCount int, totalPlays int64, blocked bool) string {
	state := "🟢 Open"
	if blocked {
		state = "🔴 Blocked"
	}
	return fmt.Sprintf(
		"📊 *AURA Status*\n\n🌐 Player: %s\n🎵 Tracks: *%d*\n▶️ Total plays: *%d*\n",
		state, trackCount, totalPlays,
	)
}

func statusKeyboard(blocked bool) tgbotapi.InlineKeyboardMarkup {
	toggle := "🔴 Block"
	if blocked {
		toggle = "🟢 Unblock"
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(toggle, "toggle_block"),
			tgbotapi.NewInlineKeyboardButtonData("🔄 Refresh", "refresh_status"),
		),
	)
}

func tracksText(tracks []domain.Track) string {
	if len(tracks) == 0 {
		return "📭 No tracks."
	}

	var b strings.Builder
	b.WriteString("🎵 *Tracks* (latest 50):\n")
	for _, t := range tracks {
		line := fmt.Sprintf("\n`%4d` | %s | ▶%d | *%s* — %s",
			t.ID, domain.FormatDuration(t.Duration), t.PlayCount, t.Title, t.Artist)
		b.WriteString(line)
	}

	text := b.String()
	if len(text) > maxListLength {
		cut := maxListLength
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "\n…(truncated)"
	}
	return text
}

func downloadSuccessText(result *ingest.Result) string {
	return fmt.Sprintf(
		"✅ Track added!\n\n🎵 *%s*\n👤 %s\n⏱ %s\n🆔 ID: `%d`",
		result.Track.Title,
		result.Track.Artist,
		domain.FormatDuration(result.Track.Duration),
		result.Track.ID,
	)
}

func stageText(stage ingest.Stage) string {
	switch stage {
	case ingest.StageResolve:
		return "⏳ Fetching track info..."
	case ingest.StageAcquire:
		return "⏳ Downloading audio..."
	case ingest.StageUploadAudio, ingest.StageUploadArt:
		return "⏳ Uploading to storage..."
	case ingest.StageRegister:
		return "⏳ Registering track..."
	default:
		return "⏳ Working..."
	}
}

// errorText converts a pipeline or catalog failure into the short message
// the operator sees.
func errorText(err error) string {
	var stageErr *ingest.StageError
	if errors.As(err, &stageErr) {
		return fmt.Sprintf("❌ %s error: %v", capitalize(string(stageErr.Stage)), stageErr.Err)
	}
	return fmt.Sprintf("❌ Error: %v", err)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
