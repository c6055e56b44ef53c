// Command seed provisions the spot catalog (and optionally baseline
// forecasts) from JSON fixture files into the database.
//
// Usage:
//
//	go run ./cmd/seed -spots spots.json -forecasts forecast_data.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/swellsync/swellsync/internal/config"
	"github.com/swellsync/swellsync/internal/domain"
	"github.com/swellsync/swellsync/internal/observability"
	"github.com/swellsync/swellsync/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	spotsPath := flag.String("spots", "spots.json", "path to the spot catalog JSON")
	forecastsPath := flag.String("forecasts", "", "optional path to baseline forecasts JSON")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg.LogLevel, "text")

	spots, err := readSpots(*spotsPath)
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	st := store.New(db, clockwork.NewRealClock(), logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := st.Init(ctx, cfg.LiveInterval); err != nil {
		return err
	}

	for _, spot := range spots {
		if err := st.UpsertSpot(ctx, spot); err != nil {
			return err
		}
	}
	logger.Info("spots seeded", "count", len(spots))

	if *forecastsPath != "" {
		forecasts, err := readForecasts(*forecastsPath)
		if err != nil {
			return err
		}
		for spotID, f := range forecasts {
			f.SpotID = spotID
			if err := st.UpsertForecast(ctx, f); err != nil {
				return err
			}
		}
		logger.Info("forecasts seeded", "count", len(forecasts))
	}

	return nil
}

func readSpots(path string) ([]domain.Spot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var spots []domain.Spot
	if err := json.Unmarshal(data, &spots); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(spots) == 0 {
		return nil, fmt.Errorf("%s contains no spots", path)
	}
	return spots, nil
}

func readForecasts(path string) (map[string]domain.Forecast, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var forecasts map[string]domain.Forecast
	if err := json.Unmarshal(data, &forecasts); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return forecasts, nil
}
