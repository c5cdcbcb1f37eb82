package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "test_config.yaml")
	configContent := `
log_level: -4
server:
  port: "9000"
  public_url: https://bot.example.com
telegram:
  token: test-token
  admin_chat_id: 42
supabase:
  url: https://proj.supabase.co
  key: anon-key
webhook:
  secret: s3cret
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	cfg, err := Load(configPath)

	assert.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, -4, cfg.LogLevel)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "https://bot.example.com", cfg.Server.PublicURL)
	assert.Equal(t, "test-token", cfg.Telegram.Token)
	assert.Equal(t, int64(42), cfg.Telegram.AdminChatID)
	assert.Equal(t, "https://proj.supabase.co", cfg.Supabase.URL)
	assert.Equal(t, "s3cret", cfg.Webhook.Secret)

	// Defaults for everything the file left out
	assert.Equal(t, "tracks", cfg.Supabase.Bucket)
	assert.Equal(t, "192K", cfg.Downloader.AudioQuality)
}

func TestLoadDefaults(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "minimal.yaml")
	err := os.WriteFile(configPath, []byte("log_level: 0\n"), 0644)
	assert.NoError(t, err)

	cfg, err := Load(configPath)

	assert.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "tracks", cfg.Supabase.Bucket)
}

func TestLoadEnvOverrides(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "env.yaml")
	configContent := `
telegram:
  token: file-token
supabase:
  url: https://file.supabase.co
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	t.Setenv("BOT_TOKEN", "env-token")
	t.Setenv("ADMIN_CHAT_ID", "1001")
	t.Setenv("SB_BUCKET", "audio-bucket")
	t.Setenv("PORT", "8888")

	cfg, err := Load(configPath)

	assert.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.Token)
	assert.Equal(t, int64(1001), cfg.Telegram.AdminChatID)
	assert.Equal(t, "audio-bucket", cfg.Supabase.Bucket)
	assert.Equal(t, "8888", cfg.Server.Port)
	// File value survives when no env override exists
	assert.Equal(t, "https://file.supabase.co", cfg.Supabase.URL)
}

func TestLoadEmptyFile(t *testing.T) {
	tempDir := t.TempDir()

	// Env-only deployments ship a file that is nothing but comments
	configPath := filepath.Join(tempDir, "empty.yaml")
	err := os.WriteFile(configPath, []byte("# secrets come from the environment\n"), 0644)
	assert.NoError(t, err)

	t.Setenv("BOT_TOKEN", "env-token")

	cfg, err := Load(configPath)

	assert.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "env-token", cfg.Telegram.Token)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "tracks", cfg.Supabase.Bucket)
}

func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("non_existent_file.yaml")

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadInvalidYAML(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "invalid_config.yaml")
	err := os.WriteFile(configPath, []byte("telegram: [this is not valid yaml\n"), 0644)
	assert.NoError(t, err)

	cfg, err := Load(configPath)

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"complete", func(c *Config) {}, false},
		{"missing token", func(c *Config) { c.Telegram.Token = "" }, true},
		{"missing admin", func(c *Config) { c.Telegram.AdminChatID = 0 }, true},
		{"missing supabase url", func(c *Config) { c.Supabase.URL = "" }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{
				Telegram: TelegramConfig{Token: "t", AdminChatID: 1},
				Supabase: SupabaseConfig{URL: "https://proj.supabase.co"},
			}
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
