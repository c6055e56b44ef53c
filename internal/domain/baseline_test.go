package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/swellsync/swellsync/internal/domain"
)

func TestResolveBaseline_MissingRow(t *testing.T) {
	got := domain.ResolveBaseline("hossegor-id", nil)

	assert.Equal(t, "hossegor-id", got.SpotID)
	assert.Equal(t, 1.5, got.WaveHeight)
	assert.Equal(t, 10.0, got.WavePeriod)
	assert.Equal(t, 15.0, got.WindSpeed)
	assert.Equal(t, 270.0, got.WindDirection)
}

func TestResolveBaseline_PerFieldFallback(t *testing.T) {
	partial := &domain.Forecast{WaveHeight: 2.2, WindSpeed: 0, WavePeriod: 0, WindDirection: 0}

	got := domain.ResolveBaseline("spot-1", partial)

	assert.Equal(t, 2.2, got.WaveHeight)
	assert.Equal(t, 10.0, got.WavePeriod)
	assert.Equal(t, 15.0, got.WindSpeed)
	assert.Equal(t, 270.0, got.WindDirection)
}

func TestResolveBaseline_CompleteRowUntouched(t *testing.T) {
	full := &domain.Forecast{
		WaveHeight:     0.8,
		WavePeriod:     12,
		WaveDirection:  245,
		WindSpeed:      22,
		WindDirection:  180,
		PeakWaveHeight: 1.4,
	}

	got := domain.ResolveBaseline("spot-1", full)

	assert.Equal(t, 0.8, got.WaveHeight)
	assert.Equal(t, 12.0, got.WavePeriod)
	assert.Equal(t, 22.0, got.WindSpeed)
	assert.Equal(t, 180.0, got.WindDirection)
	assert.Equal(t, 1.4, got.PeakWaveHeight)
}

func TestDefaultStatus(t *testing.T) {
	now := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)

	got := domain.DefaultStatus(now, 2000)
	assert.Equal(t, now, got.Timestamp)
	assert.Equal(t, 124, got.ActiveAgents)
	assert.Equal(t, "100.00", got.GlobalReliability)
	assert.Equal(t, 2000, got.UpdateFrequencyMs)
	assert.Equal(t, "OPTIMAL", got.Status)

	// Non-positive interval falls back to the default frequency.
	assert.Equal(t, 2000, domain.DefaultStatus(now, 0).UpdateFrequencyMs)
}
