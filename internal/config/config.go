package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DatabaseURL     string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Live engine cadence.
	LiveInterval time.Duration
	CycleTimeout time.Duration

	// StormGlass forecast supplier configuration.
	StormGlassKey     string
	StormGlassEnabled bool
	StormGlassTimeout time.Duration
	ForecastInterval  time.Duration
	ForecastCacheTTL  time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	liveInterval, err := parsePositiveDuration("LIVE_INTERVAL", "2s")
	if err != nil {
		return nil, err
	}
	cycleTimeout, err := parsePositiveDuration("CYCLE_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	stormGlassTimeout, err := parsePositiveDuration("STORMGLASS_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	forecastInterval, err := parsePositiveDuration("FORECAST_INTERVAL", "6h")
	if err != nil {
		return nil, err
	}
	forecastCacheTTL, err := parsePositiveDuration("FORECAST_CACHE_TTL", "6h")
	if err != nil {
		return nil, err
	}

	stormGlassKey := os.Getenv("STORMGLASS_API_KEY")
	stormGlassEnabled := stormGlassKey != ""
	if v := os.Getenv("STORMGLASS_ENABLED"); v != "" {
		stormGlassEnabled = v == "true"
	}

	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":3000"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		LiveInterval: liveInterval,
		CycleTimeout: cycleTimeout,

		StormGlassKey:     stormGlassKey,
		StormGlassEnabled: stormGlassEnabled,
		StormGlassTimeout: stormGlassTimeout,
		ForecastInterval:  forecastInterval,
		ForecastCacheTTL:  forecastCacheTTL,
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.StormGlassEnabled && cfg.StormGlassKey == "" {
		return nil, errors.New("STORMGLASS_ENABLED is true but STORMGLASS_API_KEY is not set")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	s := envOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}
