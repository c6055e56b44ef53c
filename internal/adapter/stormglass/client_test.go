package stormglass

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pointPayload = `{
	"hours": [
		{
			"time": "2026-03-14T09:00:00+00:00",
			"waveHeight": {"sg": 1.8},
			"wavePeriod": {"sg": 11.2},
			"waveDirection": {"sg": 280},
			"windSpeed": {"sg": 6.5},
			"windDirection": {"sg": 45}
		},
		{
			"time": "2026-03-14T10:00:00+00:00",
			"waveHeight": {"sg": 2.4},
			"wavePeriod": {"sg": 11.0},
			"waveDirection": {"sg": 278},
			"windSpeed": {"sg": 7.1},
			"windDirection": {"sg": 50}
		}
	]
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestClient points a client at a local stub server.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-key", 5*time.Second, time.Hour, testLogger())
	c.baseURL = srv.URL
	return c, srv
}

func TestPointForecast_ParsesCurrentAndPeak(t *testing.T) {
	var gotAuth atomic.Value
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		assert.Equal(t, "/weather/point", r.URL.Path)
		assert.Equal(t, "43.6617", r.URL.Query().Get("lat"))
		assert.Equal(t, forecastParams, r.URL.Query().Get("params"))
		w.Write([]byte(pointPayload))
	})

	f, err := c.PointForecast(context.Background(), 43.6617, -1.4410)
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotAuth.Load())
	assert.Equal(t, 1.8, f.WaveHeight)
	assert.Equal(t, 11.2, f.WavePeriod)
	assert.Equal(t, 280.0, f.WaveDirection)
	assert.Equal(t, 6.5, f.WindSpeed)
	assert.Equal(t, 45.0, f.WindDirection)
	assert.Equal(t, 2.4, f.PeakWaveHeight, "peak should be the window maximum, not the current hour")
}

func TestPointForecast_MissingReadingsGetDefaults(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"hours":[{"time":"2026-03-14T09:00:00+00:00"}]}`))
	})

	f, err := c.PointForecast(context.Background(), 47.8380, -4.3433)
	require.NoError(t, err)

	assert.Equal(t, 0.5, f.WaveHeight)
	assert.Equal(t, 8.0, f.WavePeriod)
	assert.Equal(t, 270.0, f.WaveDirection)
	assert.Equal(t, 10.0, f.WindSpeed)
	assert.Equal(t, 90.0, f.WindDirection)
	assert.Equal(t, 0.5, f.PeakWaveHeight, "peak can never sit below the current wave height")
}

func TestPointForecast_CacheServesRepeatCalls(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Write([]byte(pointPayload))
	})

	first, err := c.PointForecast(context.Background(), 43.6617, -1.4410)
	require.NoError(t, err)
	second, err := c.PointForecast(context.Background(), 43.6617, -1.4410)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load(), "second call for the same coordinate must hit the cache")

	_, err = c.PointForecast(context.Background(), 47.8380, -4.3433)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "a new coordinate is a new fetch")
}

func TestPointForecast_EmptyHours(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"hours":[]}`))
	})

	_, err := c.PointForecast(context.Background(), 43.6617, -1.4410)
	assert.ErrorContains(t, err, "no hours")
}

func TestPointForecast_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	for i := 0; i < 3; i++ {
		_, err := c.PointForecast(context.Background(), 43.6617, -1.4410)
		require.Error(t, err)
	}
	require.Equal(t, int32(3), calls.Load())

	_, err := c.PointForecast(context.Background(), 43.6617, -1.4410)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(3), calls.Load(), "open breaker must short-circuit without a request")
}

func TestPointForecast_APIErrorIncludesStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte("quota exceeded"))
	})

	_, err := c.PointForecast(context.Background(), 43.6617, -1.4410)
	require.Error(t, err)
	assert.ErrorContains(t, err, "status 402")
	assert.ErrorContains(t, err, "quota exceeded")
}
