package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENVIRONMENT", "")

	cfg := LoadConfig()

	assert.Equal(t, "production", cfg.Environment)
	assert.False(t, cfg.IsDevelopment())
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, "NM", cfg.ReferencePrefix)
	assert.Equal(t, 30*time.Second, cfg.EventCacheTTL)
	assert.Equal(t, 5, cfg.ApplyRateLimit)
	assert.False(t, cfg.PubNubEnabled())
}

func TestLoadConfig_Development(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENVIRONMENT", "development")

	assert.True(t, LoadConfig().IsDevelopment())
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("GATE_RATE_LIMIT", "30")
	t.Setenv("EVENT_CACHE_TTL", "2m")
	t.Setenv("ENABLE_GATE_FEED", "false")
	t.Setenv("PUBNUB_SUBSCRIBE_KEY", "sub-c-123")

	cfg := LoadConfig()

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 30, cfg.GateRateLimit)
	assert.Equal(t, 2*time.Minute, cfg.EventCacheTTL)
	assert.False(t, cfg.EnableGateFeed)
	assert.True(t, cfg.PubNubEnabled())
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REFERENCE_PREFIX=HX\nBRAND_LOCK_TTL=3s\n"), 0o600))
	t.Setenv("REFERENCE_PREFIX", "")
	os.Unsetenv("REFERENCE_PREFIX")
	os.Unsetenv("BRAND_LOCK_TTL")
	t.Cleanup(func() {
		os.Unsetenv("REFERENCE_PREFIX")
		os.Unsetenv("BRAND_LOCK_TTL")
	})

	cfg := LoadConfig()

	assert.Equal(t, "HX", cfg.ReferencePrefix)
	assert.Equal(t, 3*time.Second, cfg.BrandLockTTL)
}

func TestGetEnvAsDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_DURATION", "soon")
	assert.Equal(t, 5*time.Second, getEnvAsDuration("SOME_DURATION", "5s"))
}
