package bot

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurafm/aura-bot/internal/domain"
	"github.com/aurafm/aura-bot/internal/ingest"
)

func TestStatusText(t *testing.T) {
	open := statusText(3, 42, false)
	assert.Contains(t, open, "🟢 Open")
	assert.Contains(t, open, "*3*")
	assert.Contains(t, open, "*42*")

	blocked := statusText(0, 0, true)
	assert.Contains(t, blocked, "🔴 Blocked")
}

func TestStatusKeyboard(t *testing.T) {
	kb := statusKeyboard(false)
	require.Len(t, kb.InlineKeyboard, 1)
	require.Len(t, kb.InlineKeyboard[0], 2)
	assert.Equal(t, "🔴 Block", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "toggle_block", *kb.InlineKeyboard[0][0].CallbackData)

	kb = statusKeyboard(true)
	assert.Equal(t, "🟢 Unblock", kb.InlineKeyboard[0][0].Text)
}

func TestTracksText(t *testing.T) {
	assert.Equal(t, "📭 No tracks.", tracksText(nil))

	text := tracksText([]domain.Track{
		{ID: 1, Title: "Song", Artist: "Band", Duration: 125.4, PlayCount: 7},
	})
	assert.Contains(t, text, "2:05")
	assert.Contains(t, text, "▶7")
	assert.Contains(t, text, "*Song* — Band")
}

func TestTracksTextTruncatesLongListings(t *testing.T) {
	var tracks []domain.Track
	for i := 0; i < 100; i++ {
		tracks = append(tracks, domain.Track{
			ID:     int64(i),
			Title:  strings.Repeat("t", 60),
			Artist: strings.Repeat("a", 60),
		})
	}

	text := tracksText(tracks)
	assert.LessOrEqual(t, len(text), maxListLength+len("\n…(truncated)"))
	assert.Contains(t, text, "…(truncated)")
}

func TestDownloadSuccessText(t *testing.T) {
	result := &ingest.Result{
		Track: &domain.Track{ID: 9, Title: "Song", Artist: "Band", Duration: 125.4},
	}

	text := downloadSuccessText(result)
	assert.Contains(t, text, "✅ Track added!")
	assert.Contains(t, text, "*Song*")
	assert.Contains(t, text, "Band")
	assert.Contains(t, text, "⏱ 2:05")
	assert.Contains(t, text, "`9`")
}

func TestErrorTextNamesTheStage(t *testing.T) {
	err := &ingest.StageError{Stage: ingest.StageUploadAudio, Err: fmt.Errorf("transport error")}
	text := errorText(err)
	assert.Contains(t, text, "Audio upload error")
	assert.Contains(t, text, "transport error")

	plain := errorText(fmt.Errorf("boom"))
	assert.Contains(t, plain, "❌ Error: boom")
}

func TestStageText(t *testing.T) {
	assert.Equal(t, "⏳ Fetching track info...", stageText(ingest.StageResolve))
	assert.Equal(t, "⏳ Downloading audio...", stageText(ingest.StageAcquire))
	assert.Equal(t, "⏳ Uploading to storage...", stageText(ingest.StageUploadAudio))
	assert.Equal(t, "⏳ Registering track...", stageText(ingest.StageRegister))
}
