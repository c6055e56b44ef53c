package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "HTTP_ADDR", "LOG_LEVEL", "LOG_FORMAT",
		"SHUTDOWN_TIMEOUT", "LIVE_INTERVAL", "CYCLE_TIMEOUT",
		"STORMGLASS_API_KEY", "STORMGLASS_ENABLED", "STORMGLASS_TIMEOUT",
		"FORECAST_INTERVAL", "FORECAST_CACHE_TTL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/swellsync")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/swellsync", cfg.DatabaseURL)
	assert.Equal(t, ":3000", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 2*time.Second, cfg.LiveInterval)
	assert.Equal(t, 30*time.Second, cfg.CycleTimeout)
	assert.Equal(t, 10*time.Second, cfg.StormGlassTimeout)
	assert.Equal(t, 6*time.Hour, cfg.ForecastInterval)
	assert.Equal(t, 6*time.Hour, cfg.ForecastCacheTTL)
	assert.False(t, cfg.StormGlassEnabled)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://db:5432/surf")
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("LIVE_INTERVAL", "500ms")
	t.Setenv("CYCLE_TIMEOUT", "5s")
	t.Setenv("FORECAST_INTERVAL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 500*time.Millisecond, cfg.LiveInterval)
	assert.Equal(t, 5*time.Second, cfg.CycleTimeout)
	assert.Equal(t, time.Hour, cfg.ForecastInterval)
}

func TestLoad_InvalidDurations(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"LIVE_INTERVAL", "fast"},
		{"LIVE_INTERVAL", "-2s"},
		{"LIVE_INTERVAL", "0s"},
		{"CYCLE_TIMEOUT", "30"},
		{"SHUTDOWN_TIMEOUT", "ten seconds"},
		{"FORECAST_CACHE_TTL", "-1h"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DATABASE_URL", "postgres://localhost/swellsync")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestLoad_StormGlassKeyImpliesEnabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/swellsync")
	t.Setenv("STORMGLASS_API_KEY", "sg-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.StormGlassEnabled)
	assert.Equal(t, "sg-key", cfg.StormGlassKey)
}

func TestLoad_StormGlassExplicitDisable(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/swellsync")
	t.Setenv("STORMGLASS_API_KEY", "sg-key")
	t.Setenv("STORMGLASS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.StormGlassEnabled)
}

func TestLoad_StormGlassEnabledWithoutKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/swellsync")
	t.Setenv("STORMGLASS_ENABLED", "true")

	_, err := Load()
	assert.ErrorContains(t, err, "STORMGLASS_API_KEY")
}
