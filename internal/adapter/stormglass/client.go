// Package stormglass fetches baseline point forecasts from the StormGlass
// weather API. Requests run behind a circuit breaker and a TTL cache sized
// to the provider's free-tier quota: a coordinate is fetched at most once
// per cache window no matter how often the refresh job fires.
package stormglass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker"

	"github.com/swellsync/swellsync/internal/domain"
)

// forecastParams are the StormGlass data points the baseline needs.
const forecastParams = "waveHeight,wavePeriod,waveDirection,windSpeed,windDirection"

// forecastWindow is how far ahead each request looks; the peak wave height
// is the maximum over this window.
const forecastWindow = 24 * time.Hour

// Client implements point-forecast fetching against the StormGlass API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker
	cache      *cache.Cache
	logger     *slog.Logger
}

// NewClient creates a StormGlass client with the given request timeout and
// response cache TTL.
func NewClient(apiKey string, timeout, cacheTTL time.Duration, logger *slog.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "stormglass",
		Timeout: 2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://api.stormglass.io/v2",
		breaker:    breaker,
		cache:      cache.New(cacheTTL, 10*time.Minute),
		logger:     logger,
	}
}

// PointForecast returns the baseline forecast for a coordinate, served from
// cache when a fresh fetch exists.
func (c *Client) PointForecast(ctx context.Context, lat, lng float64) (domain.Forecast, error) {
	key := fmt.Sprintf("%.4f,%.4f", lat, lng)
	if v, ok := c.cache.Get(key); ok {
		return v.(domain.Forecast), nil
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.fetch(ctx, lat, lng)
	})
	if err != nil {
		return domain.Forecast{}, err
	}

	forecast := result.(domain.Forecast)
	c.cache.Set(key, forecast, cache.DefaultExpiration)
	return forecast, nil
}

func (c *Client) fetch(ctx context.Context, lat, lng float64) (domain.Forecast, error) {
	start := time.Now().UTC()
	end := start.Add(forecastWindow)

	params := url.Values{
		"lat":    {strconv.FormatFloat(lat, 'f', 4, 64)},
		"lng":    {strconv.FormatFloat(lng, 'f', 4, 64)},
		"params": {forecastParams},
		"start":  {strconv.FormatInt(start.Unix(), 10)},
		"end":    {strconv.FormatInt(end.Unix(), 10)},
	}
	fullURL := c.baseURL + "/weather/point?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("point forecast request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Forecast{}, fmt.Errorf("stormglass API error: status %d: %s", resp.StatusCode, body)
	}

	var point pointResponse
	if err := json.NewDecoder(resp.Body).Decode(&point); err != nil {
		return domain.Forecast{}, fmt.Errorf("decode response: %w", err)
	}
	if len(point.Hours) == 0 {
		return domain.Forecast{}, fmt.Errorf("stormglass returned no hours for %.4f,%.4f", lat, lng)
	}

	return buildForecast(point.Hours), nil
}

// buildForecast takes current-hour conditions plus the peak wave height
// over the window. Absent readings get the provider's neutral defaults.
func buildForecast(hours []hourReading) domain.Forecast {
	current := hours[0]

	peak := current.WaveHeight.SG
	for _, h := range hours {
		if h.WaveHeight.SG > peak {
			peak = h.WaveHeight.SG
		}
	}

	f := domain.Forecast{
		WaveHeight:     orDefault(current.WaveHeight.SG, 0.5),
		WavePeriod:     orDefault(current.WavePeriod.SG, 8),
		WaveDirection:  orDefault(current.WaveDirection.SG, 270),
		WindSpeed:      orDefault(current.WindSpeed.SG, 10),
		WindDirection:  orDefault(current.WindDirection.SG, 90),
		PeakWaveHeight: peak,
	}
	if f.PeakWaveHeight < f.WaveHeight {
		f.PeakWaveHeight = f.WaveHeight
	}
	return f
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// pointResponse mirrors the StormGlass /weather/point payload; every data
// point is wrapped in a per-source object keyed "sg".
type pointResponse struct {
	Hours []hourReading `json:"hours"`
}

type hourReading struct {
	Time          string      `json:"time"`
	WaveHeight    sourceValue `json:"waveHeight"`
	WavePeriod    sourceValue `json:"wavePeriod"`
	WaveDirection sourceValue `json:"waveDirection"`
	WindSpeed     sourceValue `json:"windSpeed"`
	WindDirection sourceValue `json:"windDirection"`
}

type sourceValue struct {
	SG float64 `json:"sg"`
}
