package cmd_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"trackit/cmd"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := cmd.LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, cmd.StoreMemory, cfg.Store)
	assert.Equal(t, cmd.PublisherLog, cfg.Publisher)
	assert.Equal(t, 100, cfg.RelayBatchSize)
	assert.Equal(t, 5*time.Second, cfg.WebhookTimeout)
	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadConfig_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	_, err := cmd.LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestLoadConfig_ReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("TRACKIT_TEST_PLACEHOLDER=1\n"), 0o600))
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE", "postgres")
	t.Setenv("DATABASE_DSN", "postgres://u:p@localhost/db")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := cmd.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cmd.StorePostgres, cfg.Store)
	assert.Equal(t, "1", os.Getenv("TRACKIT_TEST_PLACEHOLDER"))
	require.NoError(t, os.Unsetenv("TRACKIT_TEST_PLACEHOLDER"))

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestConfig_Validate(t *testing.T) {
	base := cmd.Config{
		JWTSecret:      "s",
		Store:          cmd.StoreMemory,
		Publisher:      cmd.PublisherLog,
		RelayBatchSize: 100,
		LogLevel:       "info",
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*cmd.Config)
	}{
		{"unknown store", func(c *cmd.Config) { c.Store = "redis" }},
		{"postgres without dsn", func(c *cmd.Config) { c.Store = cmd.StorePostgres }},
		{"unknown publisher", func(c *cmd.Config) { c.Publisher = "kafka" }},
		{"sqs without queue", func(c *cmd.Config) { c.Publisher = cmd.PublisherSQS }},
		{"webhook without url", func(c *cmd.Config) { c.Publisher = cmd.PublisherWebhook }},
		{"zero batch", func(c *cmd.Config) { c.RelayBatchSize = 0 }},
		{"bad log level", func(c *cmd.Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
