// Package live implements the recomputation engine: a serialized timer loop
// that refines every spot's baseline forecast through the correction
// pipeline and republishes the live estimate table each cycle.
package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/swellsync/swellsync/internal/agents"
	"github.com/swellsync/swellsync/internal/domain"
	"github.com/swellsync/swellsync/internal/observability"
)

// SpotSource lists the full spot catalog.
type SpotSource interface {
	ListSpots(ctx context.Context) ([]domain.Spot, error)
}

// BaselineSource returns the latest baseline forecast per spot id.
type BaselineSource interface {
	BaselinesBySpot(ctx context.Context) (map[string]domain.Forecast, error)
}

// EstimateSink commits refined estimates and the per-cycle status stamp.
type EstimateSink interface {
	UpsertEstimate(ctx context.Context, est domain.LiveEstimate) error
	TouchStatus(ctx context.Context, status string) error
}

// Counters are the engine's observability state: updated once per cycle,
// read-only to everyone else, and carrying no correctness obligation.
type Counters struct {
	Cycles     atomic.Uint64
	Writes     atomic.Uint64
	SpotErrors atomic.Uint64
}

// Engine owns the recurring recomputation schedule. It is the sole writer
// of the live estimate table and the status row.
type Engine struct {
	spots     SpotSource
	baselines BaselineSource
	sink      EstimateSink
	pipeline  *agents.Pipeline

	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics

	interval     time.Duration
	cycleTimeout time.Duration

	ready    atomic.Bool
	counters Counters
}

// New creates an Engine. A nil clock falls back to the real clock.
func New(spots SpotSource, baselines BaselineSource, sink EstimateSink, pipeline *agents.Pipeline,
	clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics,
	interval, cycleTimeout time.Duration) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{
		spots:        spots,
		baselines:    baselines,
		sink:         sink,
		pipeline:     pipeline,
		clock:        clock,
		logger:       logger,
		metrics:      metrics,
		interval:     interval,
		cycleTimeout: cycleTimeout,
	}
}

// CheckReadiness returns nil once at least one cycle has published
// estimates, or an error describing why the service is not yet ready.
func (e *Engine) CheckReadiness(_ context.Context) error {
	if !e.ready.Load() {
		return errors.New("live engine has not completed a cycle yet")
	}
	return nil
}

// Stats returns the cycle and write totals. Approximate under concurrency.
func (e *Engine) Stats() (cycles, writes uint64) {
	return e.counters.Cycles.Load(), e.counters.Writes.Load()
}

// Run executes recomputation cycles until the context is cancelled. Ticks
// are consumed only between cycles, so cycles never overlap: a slow cycle
// delays the next one rather than stacking against the same store.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("live engine started", "interval", e.interval, "cycle_timeout", e.cycleTimeout)
	e.metrics.EngineRunning.Set(1)
	defer e.metrics.EngineRunning.Set(0)

	e.RunOnce(ctx)

	ticker := e.clock.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("live engine stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			e.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single recomputation cycle under the cycle timeout.
// Storage failures are logged and absorbed; the next scheduled cycle
// retries naturally.
func (e *Engine) RunOnce(parent context.Context) {
	if parent.Err() != nil {
		return
	}

	ctx, cancel := context.WithTimeout(parent, e.cycleTimeout)
	defer cancel()

	runID := uuid.NewString()[:8]
	start := e.clock.Now()

	// One logical pass: read catalog and baselines up front so estimates
	// within a cycle never mix two forecast generations.
	spots, err := e.spots.ListSpots(ctx)
	if err != nil {
		e.metrics.CycleErrors.Inc()
		e.logger.Error("read spot catalog failed", "run", runID, "error", err)
		return
	}
	baselines, err := e.baselines.BaselinesBySpot(ctx)
	if err != nil {
		e.metrics.CycleErrors.Inc()
		e.logger.Error("read baseline forecasts failed", "run", runID, "error", err)
		return
	}

	if err := e.sink.TouchStatus(ctx, domain.StatusOptimal); err != nil {
		e.logger.Warn("touch status failed", "run", runID, "error", err)
	}

	written := 0
	for _, spot := range spots {
		if ctx.Err() != nil {
			e.logger.Warn("cycle cancelled mid-pass", "run", runID, "written", written, "total", len(spots))
			break
		}

		base := e.resolveBaseline(spot.ID, baselines)
		if err := e.refreshSpot(ctx, spot, base); err != nil {
			e.counters.SpotErrors.Add(1)
			e.metrics.SpotErrors.Inc()
			e.logger.Error("spot refresh failed", "run", runID, "spot", spot.ID, "error", err)
			continue
		}
		written++
	}

	e.counters.Cycles.Add(1)
	e.counters.Writes.Add(uint64(written))
	e.metrics.CyclesTotal.Inc()
	e.metrics.EstimatesPublished.Add(float64(written))
	e.metrics.CycleDuration.Observe(e.clock.Since(start).Seconds())

	if written > 0 {
		e.ready.Store(true)
	}

	e.logger.Debug("cycle complete",
		"run", runID,
		"spots", len(spots),
		"written", written,
		"duration", e.clock.Since(start),
	)
}

func (e *Engine) resolveBaseline(spotID string, baselines map[string]domain.Forecast) domain.Forecast {
	if base, ok := baselines[spotID]; ok {
		return domain.ResolveBaseline(spotID, &base)
	}
	return domain.ResolveBaseline(spotID, nil)
}

// refreshSpot refines and commits one spot. A panic in a correction stage
// is converted to an error so a single spot cannot abort the cycle.
func (e *Engine) refreshSpot(ctx context.Context, spot domain.Spot, base domain.Forecast) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("correction pipeline panic: %v", r)
		}
	}()

	est := e.pipeline.Refine(spot, base)
	e.metrics.VisionConfidence.Observe(est.VisionConfidence)

	return e.sink.UpsertEstimate(ctx, domain.LiveEstimate{
		SpotID:     spot.ID,
		WaveHeight: est.WaveHeight,
		WavePeriod: est.WavePeriod,
		WindSpeed:  est.WindSpeed,
	})
}
