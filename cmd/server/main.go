package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/aurafm/aura-bot/config"
	"github.com/aurafm/aura-bot/internal/bot"
	"github.com/aurafm/aura-bot/internal/catalog"
	"github.com/aurafm/aura-bot/internal/downloader"
	"github.com/aurafm/aura-bot/internal/ingest"
	"github.com/aurafm/aura-bot/internal/notify"
	"github.com/aurafm/aura-bot/internal/objstore"
	"github.com/aurafm/aura-bot/internal/server"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "Path to config file")
	port := flag.String("port", "", "Server port (overrides config)")
	flag.Parse()

	// Local development keeps secrets in .env; absent in production.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	// Setup logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		slog.Error("Failed to connect to Telegram", "error", err)
		os.Exit(1)
	}
	slog.Info("Authorized on Telegram", "username", api.Self.UserName)

	dl := downloader.New(cfg.Downloader.CookiesFile, cfg.Downloader.AudioQuality)
	if err := dl.Available(); err != nil {
		slog.Warn("Downloader unavailable, /download will fail", "error", err)
	}

	cat := catalog.New(cfg.Supabase.URL, cfg.Supabase.Key)
	store := objstore.New(cfg.Supabase.URL, cfg.Supabase.Key, cfg.Supabase.Bucket)
	pipeline := ingest.New(dl, store, cat)

	adminBot := bot.New(api, cfg.Telegram.AdminChatID, cat, pipeline)
	notifier := notify.NewTelegram(api, cfg.Telegram.AdminChatID)

	if _, err := api.Request(tgbotapi.NewSetMyCommands(bot.Commands()...)); err != nil {
		slog.Warn("Failed to register command menu", "error", err)
	}

	if cfg.Server.PublicURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.Server.PublicURL + "/webhook/telegram")
		if err != nil {
			slog.Error("Failed to build webhook config", "error", err)
			os.Exit(1)
		}
		if _, err := api.Request(wh); err != nil {
			slog.Error("Failed to register Telegram webhook", "error", err)
			os.Exit(1)
		}
		slog.Info("Telegram webhook registered", "url", cfg.Server.PublicURL+"/webhook/telegram")
	} else {
		slog.Warn("No public URL configured, Telegram webhook not registered")
	}

	srv := server.New(cfg.Webhook.Secret, notifier, adminBot)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting admin panel server", "port", cfg.Server.Port)
		errCh <- srv.Start(cfg.Server.Port)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		slog.Info("Shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}
