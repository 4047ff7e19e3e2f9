// Package datastore persists per-cycle observations and the alert log to
// SQLite for diagnostics. A failed transmission is only observable here and
// in the logs, never through pipeline state.
package datastore

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agrisense/cropsentry-go/internal/errors"
)

// Observation is one duty cycle's record.
type Observation struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	DeviceID    string `gorm:"index"`
	Timestamp   int64  // monotonic ms
	Moisture    float64
	Temperature float64
	Humidity    float64
	AudioEnergy float64
	Degraded    bool
	Class       string `gorm:"index"`
	Confidence  float64
	LatencyUS   int64
}

// AlertLog is one dispatch attempt's record.
type AlertLog struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	DeviceID    string `gorm:"index"`
	Timestamp   int64  // monotonic ms
	AlertType   string `gorm:"index"`
	Confidence  uint8
	Outcome     string
	MaxAttempts int
}

// Store is the SQLite-backed diagnostics store.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the database at path and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to open sqlite database: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatastore).
			Context("path", path).
			Build()
	}

	if err := db.AutoMigrate(&Observation{}, &AlertLog{}); err != nil {
		return nil, errors.New(fmt.Errorf("failed to migrate schema: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatastore).
			Context("path", path).
			Build()
	}

	return &Store{db: db}, nil
}

// SaveObservation inserts one cycle record.
func (s *Store) SaveObservation(o *Observation) error {
	if err := s.db.Create(o).Error; err != nil {
		return errors.New(fmt.Errorf("failed to save observation: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatastore).
			Build()
	}
	return nil
}

// SaveAlertLog inserts one dispatch record.
func (s *Store) SaveAlertLog(a *AlertLog) error {
	if err := s.db.Create(a).Error; err != nil {
		return errors.New(fmt.Errorf("failed to save alert log: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatastore).
			Build()
	}
	return nil
}

// RecentObservations returns up to limit most recent cycle records.
func (s *Store) RecentObservations(limit int) ([]Observation, error) {
	var out []Observation
	err := s.db.Order("id desc").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to query observations: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatastore).
			Build()
	}
	return out, nil
}

// RecentAlerts returns up to limit most recent alert records.
func (s *Store) RecentAlerts(limit int) ([]AlertLog, error) {
	var out []AlertLog
	err := s.db.Order("id desc").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to query alerts: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatastore).
			Build()
	}
	return out, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
