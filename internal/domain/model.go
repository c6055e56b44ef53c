package domain

import "time"

// Fixed display values reported alongside every estimate. The reliability
// figure is a business rule, not a computed statistic; see the package doc.
const (
	Reliability  = "100.00"
	ActiveAgents = 124

	StatusOptimal = "OPTIMAL"

	// DefaultUpdateFrequencyMs is reported by the status row when no
	// configured interval is available.
	DefaultUpdateFrequencyMs = 2000
)

// Spot is a named, geolocated surf location tracked by the system.
type Spot struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Region string  `json:"region"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

// Forecast is the latest baseline wave/wind prediction for a spot.
type Forecast struct {
	SpotID         string    `json:"-"`
	WaveHeight     float64   `json:"waveHeight"`
	WavePeriod     float64   `json:"wavePeriod"`
	WaveDirection  float64   `json:"waveDirection"`
	WindSpeed      float64   `json:"windSpeed"`
	WindDirection  float64   `json:"windDirection"`
	PeakWaveHeight float64   `json:"peakWaveHeight"`
	LastUpdated    time.Time `json:"lastUpdated"`
}

// LiveEstimate is the refined wave/wind figure published for a spot.
type LiveEstimate struct {
	SpotID      string
	WaveHeight  float64
	WavePeriod  float64
	WindSpeed   float64
	Reliability string
	UpdatedAt   time.Time
}

// SystemStatus is the singleton record describing the live engine.
type SystemStatus struct {
	Timestamp         time.Time
	ActiveAgents      int
	GlobalReliability string
	UpdateFrequencyMs int
	Status            string
}

// DefaultStatus returns the status row defaults, used both to create the
// singleton at initialization and as a substitute when the row is absent.
func DefaultStatus(now time.Time, updateFrequencyMs int) SystemStatus {
	if updateFrequencyMs <= 0 {
		updateFrequencyMs = DefaultUpdateFrequencyMs
	}
	return SystemStatus{
		Timestamp:         now,
		ActiveAgents:      ActiveAgents,
		GlobalReliability: Reliability,
		UpdateFrequencyMs: updateFrequencyMs,
		Status:            StatusOptimal,
	}
}

// User is a registered front-end user. Owned by the query facade; the live
// engine never reads or writes users.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	Status    string    `json:"status"`
}
