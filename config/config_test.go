package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "GIN_MODE", "SITE_URL", "DATA_DIR", "LOG_LEVEL", "LOG_FORMAT",
		"RATE_LIMIT", "RATE_BURST", "FETCH_TIMEOUT", "FETCH_CACHE_TTL", EnvDevMode} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8082", cfg.Port)
	assert.Equal(t, "release", cfg.GinMode)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 2.0, cfg.RateLimit)
	assert.Equal(t, 5.0, cfg.RateBurst)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 30*time.Minute, cfg.FetchCacheTTL)
	assert.False(t, cfg.DevMode)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SITE_URL", "https://example.com")
	t.Setenv("RATE_LIMIT", "10")
	t.Setenv("RATE_BURST", "not-a-number")
	t.Setenv("FETCH_TIMEOUT", "45")
	t.Setenv("FETCH_CACHE_TTL", "2m")
	t.Setenv(EnvDevMode, "true")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "https://example.com", cfg.SiteURL)
	assert.Equal(t, 10.0, cfg.RateLimit)
	assert.Equal(t, 5.0, cfg.RateBurst)
	assert.Equal(t, 45*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 2*time.Minute, cfg.FetchCacheTTL)
	assert.True(t, cfg.DevMode)
}
