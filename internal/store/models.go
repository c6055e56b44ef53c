package store

import "time"

// Row types mirror the SQL schema exactly; the exported API speaks
// internal/domain types only.

type spotRow struct {
	ID     string  `gorm:"column:id;primaryKey;size:100"`
	Name   string  `gorm:"column:name;size:255;not null"`
	Region string  `gorm:"column:region;size:255;not null"`
	Lat    float64 `gorm:"column:lat;not null"`
	Lng    float64 `gorm:"column:lng;not null"`
}

func (spotRow) TableName() string { return "spots" }

type forecastRow struct {
	SpotID         string    `gorm:"column:spot_id;primaryKey;size:100"`
	WaveHeight     float64   `gorm:"column:wave_height"`
	WavePeriod     float64   `gorm:"column:wave_period"`
	WaveDirection  float64   `gorm:"column:wave_direction"`
	WindSpeed      float64   `gorm:"column:wind_speed"`
	WindDirection  float64   `gorm:"column:wind_direction"`
	PeakWaveHeight float64   `gorm:"column:peak_wave_height"`
	LastUpdated    time.Time `gorm:"column:last_updated"`

	Spot spotRow `gorm:"foreignKey:SpotID;references:ID;constraint:OnDelete:CASCADE"`
}

func (forecastRow) TableName() string { return "forecasts" }

type liveRow struct {
	SpotID      string    `gorm:"column:spot_id;primaryKey;size:100"`
	WaveHeight  float64   `gorm:"column:wave_height"`
	WavePeriod  float64   `gorm:"column:wave_period"`
	WindSpeed   float64   `gorm:"column:wind_speed"`
	Reliability string    `gorm:"column:reliability;size:10"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime:false"`

	Spot spotRow `gorm:"foreignKey:SpotID;references:ID;constraint:OnDelete:CASCADE"`
}

func (liveRow) TableName() string { return "live_stream" }

type metaRow struct {
	ID                int       `gorm:"column:id;primaryKey"`
	Timestamp         time.Time `gorm:"column:timestamp"`
	ActiveRobots      int       `gorm:"column:active_robots"`
	GlobalReliability string    `gorm:"column:global_reliability;size:10"`
	UpdateFrequencyMs int       `gorm:"column:update_frequency_ms"`
	SystemStatus      string    `gorm:"column:system_status;size:50"`
}

func (metaRow) TableName() string { return "live_meta" }

type userRow struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;size:255"`
	Email     string    `gorm:"column:email;size:255;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime:false"`
	Status    string    `gorm:"column:status;size:50"`
}

func (userRow) TableName() string { return "users" }
