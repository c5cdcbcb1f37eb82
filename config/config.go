package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel int `yaml:"log_level"`

	Server     ServerConfig     `yaml:"server"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Supabase   SupabaseConfig   `yaml:"supabase"`
	Webhook    WebhookConfig    `yaml:"webhook"`
	Downloader DownloaderConfig `yaml:"downloader"`
}

type ServerConfig struct {
	Port string `yaml:"port"`

	// PublicURL is the externally reachable base URL used to register the
	// Telegram webhook. The bot receives no updates until it is set.
	PublicURL string `yaml:"public_url"`
}

type TelegramConfig struct {
	Token string `yaml:"token"`

	// AdminChatID is the only chat allowed to issue commands and the
	// recipient of trigger notifications.
	AdminChatID int64 `yaml:"admin_chat_id"`
}

type SupabaseConfig struct {
	URL    string `yaml:"url"`
	Key    string `yaml:"key"`
	Bucket string `yaml:"bucket"`
}

type WebhookConfig struct {
	Secret string `yaml:"secret"`
}

type DownloaderConfig struct {
	// CookiesFile is an optional browser-session export handed to yt-dlp
	// for platforms that gate automated access.
	CookiesFile  string `yaml:"cookies_file"`
	AudioQuality string `yaml:"audio_quality"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Unmarshal into a value so an empty or comments-only file, which is
	// valid YAML, yields a zero config for env overrides to fill in.
	var config Config

	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	config.applyEnv()
	config.applyDefaults()

	return &config, nil
}

// applyEnv lets deployment environments override file values. Secrets are
// expected to arrive this way rather than sitting in YAML.
func (c *Config) applyEnv() {
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("ADMIN_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Telegram.AdminChatID = id
		}
	}
	if v := os.Getenv("SB_URL"); v != "" {
		c.Supabase.URL = v
	}
	if v := os.Getenv("SB_KEY"); v != "" {
		c.Supabase.Key = v
	}
	if v := os.Getenv("SB_BUCKET"); v != "" {
		c.Supabase.Bucket = v
	}
	if v := os.Getenv("WEBHOOK_SECRET"); v != "" {
		c.Webhook.Secret = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("PUBLIC_URL"); v != "" {
		c.Server.PublicURL = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}

	if c.Supabase.Bucket == "" {
		c.Supabase.Bucket = "tracks"
	}

	if c.Downloader.AudioQuality == "" {
		c.Downloader.AudioQuality = "192K"
	}
}

// Validate checks the settings without which the service cannot run at all.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required (telegram.token or BOT_TOKEN)")
	}
	if c.Telegram.AdminChatID == 0 {
		return fmt.Errorf("admin chat id is required (telegram.admin_chat_id or ADMIN_CHAT_ID)")
	}
	if c.Supabase.URL == "" {
		return fmt.Errorf("supabase url is required (supabase.url or SB_URL)")
	}
	return nil
}
