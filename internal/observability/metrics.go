package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// live engine and the forecast supplier.
type Metrics struct {
	CyclesTotal        prometheus.Counter
	CycleErrors        prometheus.Counter
	SpotErrors         prometheus.Counter
	EstimatesPublished prometheus.Counter
	EngineRunning      prometheus.Gauge

	CycleDuration    prometheus.Histogram
	VisionConfidence prometheus.Histogram

	// Forecast supplier metrics.
	ForecastFetches       *prometheus.CounterVec // labels: outcome={success,error}
	ForecastFetchDuration prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swellsync",
			Name:      "cycles_total",
			Help:      "Total completed recomputation cycles.",
		}),
		CycleErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swellsync",
			Name:      "cycle_errors_total",
			Help:      "Cycles abandoned before the per-spot pass (storage read failures).",
		}),
		SpotErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swellsync",
			Name:      "spot_errors_total",
			Help:      "Per-spot refresh failures isolated within a cycle.",
		}),
		EstimatesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swellsync",
			Name:      "estimates_published_total",
			Help:      "Total live estimate rows upserted.",
		}),
		EngineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "swellsync",
			Name:      "engine_running",
			Help:      "1 when the live engine is active, 0 when shut down.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "swellsync",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete read-refine-commit cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}),
		VisionConfidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "swellsync",
			Name:      "vision_confidence_percent",
			Help:      "Confidence reported by the vision stage per refined spot.",
			Buckets:   []float64{95, 96, 97, 98, 99},
		}),
		ForecastFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swellsync",
			Name:      "forecast_fetches_total",
			Help:      "StormGlass point forecast fetches by outcome.",
		}, []string{"outcome"}),
		ForecastFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "swellsync",
			Name:      "forecast_fetch_duration_seconds",
			Help:      "StormGlass API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}

	prometheus.MustRegister(
		m.CyclesTotal,
		m.CycleErrors,
		m.SpotErrors,
		m.EstimatesPublished,
		m.EngineRunning,
		m.CycleDuration,
		m.VisionConfidence,
		m.ForecastFetches,
		m.ForecastFetchDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		CyclesTotal:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "swellsync", Name: "cycles_total"}),
		CycleErrors:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "swellsync", Name: "cycle_errors_total"}),
		SpotErrors:            prometheus.NewCounter(prometheus.CounterOpts{Namespace: "swellsync", Name: "spot_errors_total"}),
		EstimatesPublished:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "swellsync", Name: "estimates_published_total"}),
		EngineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "swellsync", Name: "engine_running"}),
		CycleDuration:         prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "swellsync", Name: "cycle_duration_seconds"}),
		VisionConfidence:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "swellsync", Name: "vision_confidence_percent"}),
		ForecastFetches:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "swellsync", Name: "forecast_fetches_total"}, []string{"outcome"}),
		ForecastFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "swellsync", Name: "forecast_fetch_duration_seconds"}),
	}
}
