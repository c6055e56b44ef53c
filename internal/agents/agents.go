// Package agents implements the correction pipeline: six independent stages
// that refine a spot's baseline forecast into a live wave/wind estimate.
//
// Stage order is fixed. Bathymetry and topology read only static spot
// attributes and the baseline; storm inertia raises the running wave height,
// and its output feeds the three consensus readings (vision, satellite,
// barometer). The final wave height is the average of the three readings
// scaled by the bathymetry factor; the final wind speed comes from the
// topology stage. Both are clamped to zero. Wave period passes through.
//
// Only the satellite and barometer stages consume randomness, and both are
// bounded; everything else is deterministic for a given spot and baseline.
package agents

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"

	"github.com/swellsync/swellsync/internal/domain"
)

// Stage parameters.
const (
	// stormResidualEnergy is the swell carry-over from recent storms.
	stormResidualEnergy = 0.05

	// satelliteJitter and barometerJitter bound the relative noise of the
	// two stochastic readings.
	satelliteJitter = 0.01
	barometerJitter = 0.02

	// depthFactorMin/Span bound the bathymetry factor to [0.98, 1.02].
	depthFactorMin  = 0.98
	depthFactorSpan = 0.04

	// confidenceFloor/Span bound the vision confidence to [95, 99].
	// Confidence is observability-only; it never touches the estimate.
	confidenceFloor = 95.0
	confidenceSpan  = 4.0
)

// Rand is the randomness source for the jittered stages. Tests inject a
// fixed sequence to pin outputs; production uses [SystemRand].
type Rand interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
}

type systemRand struct{}

func (systemRand) Float64() float64 { return rand.Float64() }

// SystemRand returns the process-wide randomness source.
func SystemRand() Rand { return systemRand{} }

// Estimate is the refined output of one pipeline run.
type Estimate struct {
	WaveHeight float64
	WavePeriod float64
	WindSpeed  float64

	// VisionConfidence is the vision stage's reported confidence
	// percentage, exported for observability only.
	VisionConfidence float64
}

// Pipeline runs the correction stages with an injected randomness source.
type Pipeline struct {
	rng Rand
}

// NewPipeline creates a Pipeline. A nil rng falls back to [SystemRand].
func NewPipeline(rng Rand) *Pipeline {
	if rng == nil {
		rng = SystemRand()
	}
	return &Pipeline{rng: rng}
}

// Refine runs all six stages for one spot. The baseline must already be
// resolved (see [domain.ResolveBaseline]); the topology stage assumes no
// missing fields.
func (p *Pipeline) Refine(spot domain.Spot, base domain.Forecast) Estimate {
	depth := DepthFactor(spot.Lat, spot.Lng)
	wind := LocalWind(spot.Region, base.WindSpeed, base.WindDirection)
	storm := stormCarryover(base.WaveHeight)

	vision, confidence := p.visionReading(storm)
	satellite := p.satelliteReading(storm)
	barometer := p.barometerReading(storm)

	wave := ((vision + satellite + barometer) / 3) * depth

	return Estimate{
		WaveHeight:       math.Max(0, wave),
		WavePeriod:       base.WavePeriod,
		WindSpeed:        math.Max(0, wind),
		VisionConfidence: confidence,
	}
}

// DepthFactor derives the seabed stability factor from the spot's
// coordinates. It is deterministic per spot and bounded to [0.98, 1.02];
// a stable bank reads close to 1.0.
func DepthFactor(lat, lng float64) float64 {
	h := fnv.New32a()
	fmt.Fprintf(h, "%.4f:%.4f", lat, lng)
	frac := float64(h.Sum32()) / float64(math.MaxUint32)
	return depthFactorMin + depthFactorSpan*frac
}

// LocalWind applies the region's fixed multiplier to the baseline wind
// speed. Wind direction is part of the stage contract but the current
// profiles are direction-independent.
func LocalWind(region string, windSpeed, _ float64) float64 {
	return windSpeed * regionProfile(region).WindMultiplier
}

// stormCarryover raises the wave height by the residual storm energy.
func stormCarryover(waveHeight float64) float64 {
	return waveHeight * (1 + stormResidualEnergy)
}

// visionReading is the zero-noise reference reading. The returned
// confidence percentage is bounded to [95, 99].
func (p *Pipeline) visionReading(waveHeight float64) (reading, confidence float64) {
	return waveHeight, confidenceFloor + confidenceSpan*p.rng.Float64()
}

// satelliteReading applies a bounded correction of at most ±1%.
func (p *Pipeline) satelliteReading(waveHeight float64) float64 {
	return waveHeight * (1 + (2*p.rng.Float64()-1)*satelliteJitter)
}

// barometerReading applies a bounded jitter of at most ±2%.
func (p *Pipeline) barometerReading(waveHeight float64) float64 {
	return waveHeight * (1 + (2*p.rng.Float64()-1)*barometerJitter)
}
