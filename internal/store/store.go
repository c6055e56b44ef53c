// Package store provides relational access to the SwellSync tables. The
// live engine is the only writer of live_stream and live_meta; the query
// facade reads everything and writes only users.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/swellsync/swellsync/internal/domain"
)

// metaID is the fixed identity of the singleton status row.
const metaID = 1

// Open connects to Postgres with a quiet GORM logger. Query logging is the
// service logger's job.
func Open(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// Store wraps a GORM connection with domain-typed operations.
type Store struct {
	db     *gorm.DB
	clock  clockwork.Clock
	logger *slog.Logger
}

// New creates a Store. A nil clock falls back to the real clock.
func New(db *gorm.DB, clock clockwork.Clock, logger *slog.Logger) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{db: db, clock: clock, logger: logger}
}

// Init creates the schema and the singleton status row. The live engine
// must not start if this fails.
func (s *Store) Init(ctx context.Context, updateInterval time.Duration) error {
	db := s.db.WithContext(ctx)

	if err := db.AutoMigrate(&spotRow{}, &forecastRow{}, &liveRow{}, &metaRow{}, &userRow{}); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	defaults := domain.DefaultStatus(s.clock.Now().UTC(), int(updateInterval.Milliseconds()))
	meta := metaRow{
		ID:                metaID,
		Timestamp:         defaults.Timestamp,
		ActiveRobots:      defaults.ActiveAgents,
		GlobalReliability: defaults.GlobalReliability,
		UpdateFrequencyMs: defaults.UpdateFrequencyMs,
		SystemStatus:      defaults.Status,
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&meta).Error; err != nil {
		return fmt.Errorf("seed status row: %w", err)
	}

	s.logger.Info("storage initialized", "update_frequency_ms", meta.UpdateFrequencyMs)
	return nil
}

// ListSpots returns the full catalog ordered north to south, the order the
// front end renders the coastline in.
func (s *Store) ListSpots(ctx context.Context) ([]domain.Spot, error) {
	var rows []spotRow
	if err := s.db.WithContext(ctx).Order("lat DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list spots: %w", err)
	}

	spots := make([]domain.Spot, len(rows))
	for i, r := range rows {
		spots[i] = domain.Spot{ID: r.ID, Name: r.Name, Region: r.Region, Lat: r.Lat, Lng: r.Lng}
	}
	return spots, nil
}

// BaselinesBySpot returns the latest baseline forecast per spot id.
func (s *Store) BaselinesBySpot(ctx context.Context) (map[string]domain.Forecast, error) {
	var rows []forecastRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("read forecasts: %w", err)
	}

	out := make(map[string]domain.Forecast, len(rows))
	for _, r := range rows {
		out[r.SpotID] = domain.Forecast{
			SpotID:         r.SpotID,
			WaveHeight:     r.WaveHeight,
			WavePeriod:     r.WavePeriod,
			WaveDirection:  r.WaveDirection,
			WindSpeed:      r.WindSpeed,
			WindDirection:  r.WindDirection,
			PeakWaveHeight: r.PeakWaveHeight,
			LastUpdated:    r.LastUpdated,
		}
	}
	return out, nil
}

// UpsertEstimate creates or replaces the live row for a spot. Reliability
// and the updated-at stamp are owned here: every write reports the fixed
// reliability constant and the current time.
func (s *Store) UpsertEstimate(ctx context.Context, est domain.LiveEstimate) error {
	row := liveRow{
		SpotID:      est.SpotID,
		WaveHeight:  est.WaveHeight,
		WavePeriod:  est.WavePeriod,
		WindSpeed:   est.WindSpeed,
		Reliability: domain.Reliability,
		UpdatedAt:   s.clock.Now().UTC(),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "spot_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"wave_height", "wave_period", "wind_speed", "reliability", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert estimate %s: %w", est.SpotID, err)
	}
	return nil
}

// TouchStatus stamps the singleton status row for the current cycle.
func (s *Store) TouchStatus(ctx context.Context, status string) error {
	err := s.db.WithContext(ctx).Model(&metaRow{}).Where("id = ?", metaID).Updates(map[string]any{
		"timestamp":     s.clock.Now().UTC(),
		"system_status": status,
	}).Error
	if err != nil {
		return fmt.Errorf("touch status: %w", err)
	}
	return nil
}

// LiveSnapshot returns every current live estimate keyed by spot id plus
// the status row, with defaults substituted if the row is absent.
func (s *Store) LiveSnapshot(ctx context.Context) (domain.SystemStatus, map[string]domain.LiveEstimate, error) {
	var meta metaRow
	err := s.db.WithContext(ctx).First(&meta, metaID).Error
	status := domain.SystemStatus{
		Timestamp:         meta.Timestamp,
		ActiveAgents:      meta.ActiveRobots,
		GlobalReliability: meta.GlobalReliability,
		UpdateFrequencyMs: meta.UpdateFrequencyMs,
		Status:            meta.SystemStatus,
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		status = domain.DefaultStatus(s.clock.Now().UTC(), 0)
	case err != nil:
		return domain.SystemStatus{}, nil, fmt.Errorf("read status: %w", err)
	}

	var rows []liveRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return domain.SystemStatus{}, nil, fmt.Errorf("read live estimates: %w", err)
	}

	estimates := make(map[string]domain.LiveEstimate, len(rows))
	for _, r := range rows {
		estimates[r.SpotID] = domain.LiveEstimate{
			SpotID:      r.SpotID,
			WaveHeight:  r.WaveHeight,
			WavePeriod:  r.WavePeriod,
			WindSpeed:   r.WindSpeed,
			Reliability: r.Reliability,
			UpdatedAt:   r.UpdatedAt,
		}
	}
	return status, estimates, nil
}

// UpsertSpot creates or updates a catalog entry. Used by the seeder only.
func (s *Store) UpsertSpot(ctx context.Context, spot domain.Spot) error {
	row := spotRow{ID: spot.ID, Name: spot.Name, Region: spot.Region, Lat: spot.Lat, Lng: spot.Lng}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "region", "lat", "lng"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert spot %s: %w", spot.ID, err)
	}
	return nil
}

// UpsertForecast creates or replaces a spot's baseline forecast, stamping
// last_updated with the current time.
func (s *Store) UpsertForecast(ctx context.Context, f domain.Forecast) error {
	row := forecastRow{
		SpotID:         f.SpotID,
		WaveHeight:     f.WaveHeight,
		WavePeriod:     f.WavePeriod,
		WaveDirection:  f.WaveDirection,
		WindSpeed:      f.WindSpeed,
		WindDirection:  f.WindDirection,
		PeakWaveHeight: f.PeakWaveHeight,
		LastUpdated:    s.clock.Now().UTC(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "spot_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"wave_height", "wave_period", "wave_direction",
			"wind_speed", "wind_direction", "peak_wave_height", "last_updated",
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert forecast %s: %w", f.SpotID, err)
	}
	return nil
}

// SaveUser registers a user by email, or refreshes the stored name when a
// non-empty one is supplied on a repeat registration.
func (s *Store) SaveUser(ctx context.Context, name, email string) (domain.User, error) {
	db := s.db.WithContext(ctx)

	var row userRow
	err := db.Where("email = ?", email).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if name == "" {
			name = "Guest"
		}
		row = userRow{Name: name, Email: email, CreatedAt: s.clock.Now().UTC(), Status: "Active"}
		if err := db.Create(&row).Error; err != nil {
			return domain.User{}, fmt.Errorf("create user: %w", err)
		}
	case err != nil:
		return domain.User{}, fmt.Errorf("find user: %w", err)
	default:
		if name != "" && name != row.Name {
			row.Name = name
			if err := db.Model(&row).Update("name", name).Error; err != nil {
				return domain.User{}, fmt.Errorf("update user: %w", err)
			}
		}
	}

	return domain.User{ID: row.ID, Name: row.Name, Email: row.Email, CreatedAt: row.CreatedAt, Status: row.Status}, nil
}

// Users lists registered users, newest first.
func (s *Store) Users(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]domain.User, len(rows))
	for i, r := range rows {
		users[i] = domain.User{ID: r.ID, Name: r.Name, Email: r.Email, CreatedAt: r.CreatedAt, Status: r.Status}
	}
	return users, nil
}
