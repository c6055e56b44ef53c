// Command swellsync runs the live estimate service: the recomputation
// engine, the baseline forecast refresh job, and the HTTP query facade.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/swellsync/swellsync/internal/adapter/httpapi"
	"github.com/swellsync/swellsync/internal/adapter/stormglass"
	"github.com/swellsync/swellsync/internal/agents"
	"github.com/swellsync/swellsync/internal/config"
	"github.com/swellsync/swellsync/internal/forecast"
	"github.com/swellsync/swellsync/internal/live"
	"github.com/swellsync/swellsync/internal/observability"
	"github.com/swellsync/swellsync/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	st := store.New(db, clock, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Schema must exist before the engine's first cycle.
	if err := st.Init(ctx, cfg.LiveInterval); err != nil {
		logger.Error("storage initialization failed", "error", err)
		os.Exit(1)
	}

	pipeline := agents.NewPipeline(agents.SystemRand())
	engine := live.New(st, st, st, pipeline, clock, logger, metrics, cfg.LiveInterval, cfg.CycleTimeout)

	// Baseline refresh is feature-flagged on the StormGlass key; without it
	// the service runs on seeded or stale baselines plus fallbacks.
	var updater *forecast.Updater
	if cfg.StormGlassEnabled {
		client := stormglass.NewClient(cfg.StormGlassKey, cfg.StormGlassTimeout, cfg.ForecastCacheTTL, logger)
		updater = forecast.New(st, client, st, logger, metrics, cfg.ForecastInterval)
		if err := updater.Start(); err != nil {
			logger.Error("forecast updater failed to start", "error", err)
			os.Exit(1)
		}
		logger.Info("stormglass forecast refresh enabled", "interval", cfg.ForecastInterval)
	} else {
		logger.Info("stormglass forecast refresh disabled")
	}

	srv := httpapi.NewServer(cfg.HTTPAddr, st, engine, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := engine.Run(ctx); err != nil {
			logger.Error("live engine error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if updater != nil {
		updater.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("database close error", "error", err)
		}
	}

	cycles, writes := engine.Stats()
	logger.Info("shutdown complete", "cycles", cycles, "writes", writes)
}
