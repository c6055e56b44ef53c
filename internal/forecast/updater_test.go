package forecast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swellsync/swellsync/internal/domain"
	"github.com/swellsync/swellsync/internal/observability"
)

var testSpots = []domain.Spot{
	{ID: "latorche-id", Name: "La Torche", Region: "Bretagne", Lat: 47.8380, Lng: -4.3433},
	{ID: "hossegor-id", Name: "Hossegor", Region: "Landes", Lat: 43.6617, Lng: -1.4410},
	{ID: "biarritz-id", Name: "Biarritz", Region: "Pays Basque", Lat: 43.4832, Lng: -1.5586},
}

type mockCatalog struct {
	spots []domain.Spot
	err   error
}

func (m *mockCatalog) ListSpots(_ context.Context) ([]domain.Spot, error) {
	return m.spots, m.err
}

// mockPointSource returns a forecast keyed off the coordinate, failing for
// configured coordinates.
type mockPointSource struct {
	mu      sync.Mutex
	calls   int
	failLat float64
}

func (m *mockPointSource) PointForecast(_ context.Context, lat, _ float64) (domain.Forecast, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if lat == m.failLat {
		return domain.Forecast{}, errors.New("upstream unavailable")
	}
	return domain.Forecast{
		WaveHeight: lat / 10,
		WavePeriod: 10,
		WindSpeed:  12,
	}, nil
}

type mockSink struct {
	mu    sync.Mutex
	saved []domain.Forecast
	err   error
}

func (m *mockSink) UpsertForecast(_ context.Context, f domain.Forecast) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, f)
	return nil
}

func (m *mockSink) spotIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, len(m.saved))
	for i, f := range m.saved {
		ids[i] = f.SpotID
	}
	return ids
}

func newTestUpdater(catalog *mockCatalog, source *mockPointSource, sink *mockSink) *Updater {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(catalog, source, sink, logger, observability.NewMetricsForTesting(), 6*time.Hour)
}

func TestRefreshAll_PersistsBaselinePerSpot(t *testing.T) {
	source := &mockPointSource{}
	sink := &mockSink{}
	u := newTestUpdater(&mockCatalog{spots: testSpots}, source, sink)

	u.RefreshAll()

	require.Len(t, sink.saved, 3)
	assert.Equal(t, []string{"latorche-id", "hossegor-id", "biarritz-id"}, sink.spotIDs(),
		"each persisted forecast must carry its spot id")
	for _, f := range sink.saved {
		assert.Greater(t, f.WaveHeight, 0.0)
	}
}

func TestRefreshAll_FailedSpotIsSkipped(t *testing.T) {
	source := &mockPointSource{failLat: 43.6617}
	sink := &mockSink{}
	u := newTestUpdater(&mockCatalog{spots: testSpots}, source, sink)

	u.RefreshAll()

	assert.Equal(t, 3, source.calls, "a failed fetch must not stop the pass")
	assert.Equal(t, []string{"latorche-id", "biarritz-id"}, sink.spotIDs())
}

func TestRefreshAll_CatalogErrorAbortsPass(t *testing.T) {
	source := &mockPointSource{}
	sink := &mockSink{}
	u := newTestUpdater(&mockCatalog{err: fmt.Errorf("db down")}, source, sink)

	u.RefreshAll()

	assert.Zero(t, source.calls)
	assert.Empty(t, sink.saved)
}

func TestRefreshAll_SinkErrorContinues(t *testing.T) {
	source := &mockPointSource{}
	sink := &mockSink{err: errors.New("write failed")}
	u := newTestUpdater(&mockCatalog{spots: testSpots}, source, sink)

	u.RefreshAll()

	assert.Equal(t, 3, source.calls, "a failed upsert must not stop the pass")
	assert.Empty(t, sink.saved)
}

func TestStartStop(t *testing.T) {
	source := &mockPointSource{}
	sink := &mockSink{}
	u := newTestUpdater(&mockCatalog{spots: testSpots[:1]}, source, sink)

	require.NoError(t, u.Start())
	defer u.Stop()

	assert.Eventually(t, func() bool {
		return len(sink.spotIDs()) >= 1
	}, 2*time.Second, 10*time.Millisecond, "the first refresh runs immediately on start")
}
