package domain

// Fallback baseline used when a spot has no forecast row, or per field when
// a row exists but a field is missing. Values match the upstream supplier's
// "typical Atlantic day" defaults.
const (
	DefaultWaveHeight    = 1.5
	DefaultWavePeriod    = 10.0
	DefaultWindSpeed     = 15.0
	DefaultWindDirection = 270.0
)

// ResolveBaseline returns the baseline the correction pipeline should run
// on. A nil forecast yields the full fallback default; otherwise missing or
// non-positive fields are substituted individually. A zero wind direction is
// treated as unreported, matching the supplier's encoding.
func ResolveBaseline(spotID string, f *Forecast) Forecast {
	if f == nil {
		return Forecast{
			SpotID:        spotID,
			WaveHeight:    DefaultWaveHeight,
			WavePeriod:    DefaultWavePeriod,
			WindSpeed:     DefaultWindSpeed,
			WindDirection: DefaultWindDirection,
		}
	}

	out := *f
	out.SpotID = spotID
	if out.WaveHeight <= 0 {
		out.WaveHeight = DefaultWaveHeight
	}
	if out.WavePeriod <= 0 {
		out.WavePeriod = DefaultWavePeriod
	}
	if out.WindSpeed <= 0 {
		out.WindSpeed = DefaultWindSpeed
	}
	if out.WindDirection <= 0 {
		out.WindDirection = DefaultWindDirection
	}
	return out
}
