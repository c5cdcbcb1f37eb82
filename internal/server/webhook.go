package server

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aurafm/aura-bot/internal/domain"
)

const secretHeader = "x-webhook-secret"

// trackAdded receives row-change events fired by the catalog's database
// triggers. The shared secret is checked before the body is touched; once
// an event is accepted it is always acknowledged, even when the outbound
// notification fails.
func (s *Server) trackAdded(c *gin.Context) {
	provided := c.GetHeader(secretHeader)
	if subtle.ConstantTimeCompare([]byte(provided), []byte(s.secret)) != 1 {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid secret"})
		return
	}

	var event domain.ChangeEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}

	if event.Subject() == nil {
		slog.Warn("Change event carries no record", "type", event.Type)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if err := s.notifier.NotifyTrackChange(c.Request.Context(), &event); err != nil {
		// Delivery is best-effort; the trigger must not see a failure.
		slog.Error("Failed to deliver notification", "type", event.Type, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// telegramUpdate feeds raw Telegram webhook payloads to the bot.
func (s *Server) telegramUpdate(c *gin.Context) {
	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}

	// Commands can block on downloads; never hold the webhook open.
	go s.bot.HandleUpdate(context.Background(), update)

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
