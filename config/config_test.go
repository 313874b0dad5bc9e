package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("DB_HOST", "db")
	t.Setenv("IDENTITY_BYPASS", "true")
	t.Setenv("IDENTITY_CLAIMS_TTL", "0s")
	t.Setenv("OUTBOX_POLL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_RPS", "0.5")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "db", cfg.DB.Host)
	assert.Equal(t, "UTC", cfg.App.Location.String())
	assert.True(t, cfg.Identity.Bypass)
	assert.Zero(t, cfg.Identity.ClaimsTTL)
	assert.Equal(t, 2*time.Second, cfg.Outbox.PollInterval)
	assert.Equal(t, 0.5, cfg.RateLimit.RPS)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "auto", cfg.DB.Migrations)
	assert.Equal(t, time.Hour, cfg.JWT.AccessExpiry)
	assert.Equal(t, 30*time.Second, cfg.Identity.ClaimsTTL)
	assert.Equal(t, 15*time.Second, cfg.Outbox.PollInterval)
	assert.Equal(t, 5, cfg.Outbox.MaxAttempts)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
}

func TestLoadConfigRejectsUnknownTimezone(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("TIMEZONE", "Mars/Olympus_Mons")

	_, err := LoadConfig()
	assert.Error(t, err)
}
