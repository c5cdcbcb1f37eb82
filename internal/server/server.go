// Package server exposes the service's HTTP surface: the catalog trigger
// webhook, the Telegram update webhook and a health endpoint.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aurafm/aura-bot/internal/notify"
)

// UpdateHandler consumes decoded Telegram updates.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

// Server handles inbound HTTP requests. The notifier and bot are explicit
// dependencies wired at construction time.
type Server struct {
	router   *gin.Engine
	secret   string
	notifier notify.Notifier
	bot      UpdateHandler

	httpServer *http.Server
}

func New(webhookSecret string, notifier notify.Notifier, bot UpdateHandler) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router:   router,
		secret:   webhookSecret,
		notifier: notifier,
		bot:      bot,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.health)
	s.router.POST("/webhook/track-added", s.trackAdded)
	s.router.POST("/webhook/telegram", s.telegramUpdate)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "aura-bot",
	})
}

// Start blocks serving HTTP until Shutdown is called or the listener fails.
func (s *Server) Start(port string) error {
	s.httpServer = &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
