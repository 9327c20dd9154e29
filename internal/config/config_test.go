package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ticket-sync", cfg.App.Name)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Backend.PollInterval())
	assert.Equal(t, 4*time.Second, cfg.Backend.PollTimeout())
	assert.Equal(t, 15*time.Second, cfg.Backend.RetryTimeout())
	assert.Equal(t, 48*time.Hour, cfg.Backend.OverdueAfter())
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://backend:9090")
	t.Setenv("SYNC_POLL_INTERVAL_SECONDS", "30")
	t.Setenv("APP_LOCAL_PORT", "9999")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://backend:9090", cfg.Backend.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Backend.PollInterval())
	assert.Equal(t, "127.0.0.1:9999", cfg.App.LocalAddr())
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("SYNC_POLL_INTERVAL_SECONDS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Backend.PollInterval())
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := Load()
	require.Error(t, err)
}

func TestBackendConfig_ZeroValuesGetSaneDurations(t *testing.T) {
	var b BackendConfig
	assert.Equal(t, 5*time.Second, b.PollInterval())
	assert.Equal(t, 4*time.Second, b.PollTimeout())
	assert.Equal(t, 15*time.Second, b.RetryTimeout())
	assert.Equal(t, 48*time.Hour, b.OverdueAfter())
}
