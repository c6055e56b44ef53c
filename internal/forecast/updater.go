// Package forecast runs the slow-cadence baseline refresh: fetch a point
// forecast per spot from the supplier and upsert the forecasts table. The
// live engine only ever consumes this package's output rows.
package forecast

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/swellsync/swellsync/internal/domain"
	"github.com/swellsync/swellsync/internal/observability"
)

// refreshTimeout bounds one full pass over the catalog.
const refreshTimeout = 5 * time.Minute

// spotDelay spaces provider requests to respect StormGlass rate limits.
const spotDelay = 100 * time.Millisecond

// SpotSource lists the spots to fetch forecasts for.
type SpotSource interface {
	ListSpots(ctx context.Context) ([]domain.Spot, error)
}

// PointSource fetches a baseline forecast for a coordinate.
type PointSource interface {
	PointForecast(ctx context.Context, lat, lng float64) (domain.Forecast, error)
}

// Sink persists fetched baselines.
type Sink interface {
	UpsertForecast(ctx context.Context, f domain.Forecast) error
}

// Updater schedules periodic baseline refreshes.
type Updater struct {
	scheduler *gocron.Scheduler
	spots     SpotSource
	source    PointSource
	sink      Sink
	logger    *slog.Logger
	metrics   *observability.Metrics
	interval  time.Duration
}

// New creates an Updater firing every interval.
func New(spots SpotSource, source PointSource, sink Sink, logger *slog.Logger, metrics *observability.Metrics, interval time.Duration) *Updater {
	return &Updater{
		scheduler: gocron.NewScheduler(time.UTC),
		spots:     spots,
		source:    source,
		sink:      sink,
		logger:    logger,
		metrics:   metrics,
		interval:  interval,
	}
}

// Start registers the refresh job and starts the scheduler. The first
// refresh runs immediately so a fresh deployment has baselines before the
// first slow-cadence tick.
func (u *Updater) Start() error {
	_, err := u.scheduler.Every(u.interval).StartImmediately().Do(u.RefreshAll)
	if err != nil {
		return err
	}
	u.scheduler.StartAsync()
	return nil
}

// Stop cancels future refreshes.
func (u *Updater) Stop() {
	u.scheduler.Stop()
}

// RefreshAll fetches and persists a baseline for every spot. A failed spot
// is logged and skipped; its stale row (or the fallback default at read
// time) covers the gap until the next pass.
func (u *Updater) RefreshAll() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	spots, err := u.spots.ListSpots(ctx)
	if err != nil {
		u.logger.Error("forecast refresh: read spot catalog failed", "error", err)
		return
	}

	u.logger.Info("forecast refresh started", "spots", len(spots))

	updated := 0
	for i, spot := range spots {
		if ctx.Err() != nil {
			u.logger.Warn("forecast refresh cancelled", "updated", updated, "total", len(spots))
			return
		}

		start := time.Now()
		f, err := u.source.PointForecast(ctx, spot.Lat, spot.Lng)
		u.metrics.ForecastFetchDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			u.metrics.ForecastFetches.WithLabelValues("error").Inc()
			u.logger.Warn("forecast fetch failed", "spot", spot.ID, "error", err)
			continue
		}
		u.metrics.ForecastFetches.WithLabelValues("success").Inc()

		f.SpotID = spot.ID
		if err := u.sink.UpsertForecast(ctx, f); err != nil {
			u.logger.Error("forecast upsert failed", "spot", spot.ID, "error", err)
			continue
		}
		updated++

		if i < len(spots)-1 {
			time.Sleep(spotDelay)
		}
	}

	u.logger.Info("forecast refresh complete", "updated", updated, "total", len(spots))
}
