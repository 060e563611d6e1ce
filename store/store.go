// Package store persists interaction history and generated forecasts.
package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"workforce-engine/config"
	"workforce-engine/models"
)

const batchSize = 500

// Store defines the persistence operations used by the API.
type Store interface {
	// ReplaceForecasts deletes stored rows of the same activity on every date
	// the new rows cover, then inserts the new rows, in one transaction.
	// Rows without an activity are stored under activity.
	ReplaceForecasts(ctx context.Context, activity string, rows []models.ForecastRow) error
	// ListForecasts returns rows with from <= slot start < to.
	ListForecasts(ctx context.Context, from, to time.Time) ([]models.ForecastRow, error)
	AddInteractions(ctx context.Context, records []models.HistoryRecord) error
	// ListInteractions returns history with from <= occurred at < to.
	ListInteractions(ctx context.Context, from, to time.Time) ([]models.HistoryRecord, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// Open connects to the configured database and runs migrations.
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&ForecastRecord{}, &InteractionRecord{}); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

func (s *gormStore) ReplaceForecasts(ctx context.Context, activity string, rows []models.ForecastRow) error {
	if len(rows) == 0 {
		return nil
	}

	records := make([]ForecastRecord, 0, len(rows))
	var activities []string
	dates := make(map[string][]string)
	seen := make(map[string]bool)
	for _, row := range rows {
		rec := newForecastRecord(activity, row)
		records = append(records, rec)
		if _, ok := dates[rec.Activity]; !ok {
			activities = append(activities, rec.Activity)
		}
		if key := rec.Activity + "|" + rec.ForecastDate; !seen[key] {
			seen[key] = true
			dates[rec.Activity] = append(dates[rec.Activity], rec.ForecastDate)
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, a := range activities {
			err := tx.Where("activity = ? AND forecast_date IN ?", a, dates[a]).Delete(&ForecastRecord{}).Error
			if err != nil {
				return fmt.Errorf("failed to delete stale forecasts for %s: %w", a, err)
			}
		}
		if err := tx.CreateInBatches(&records, batchSize).Error; err != nil {
			return fmt.Errorf("failed to insert %d forecast rows: %w", len(records), err)
		}
		return nil
	})
}

func (s *gormStore) ListForecasts(ctx context.Context, from, to time.Time) ([]models.ForecastRow, error) {
	var records []ForecastRecord
	err := s.db.WithContext(ctx).
		Where("slot_start >= ? AND slot_start < ?", from.UTC(), to.UTC()).
		Order("slot_start, activity").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list forecasts: %w", err)
	}

	rows := make([]models.ForecastRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.row())
	}
	return rows, nil
}

func (s *gormStore) AddInteractions(ctx context.Context, history []models.HistoryRecord) error {
	if len(history) == 0 {
		return nil
	}
	records := make([]InteractionRecord, 0, len(history))
	for _, h := range history {
		records = append(records, newInteractionRecord(h))
	}
	if err := s.db.WithContext(ctx).CreateInBatches(&records, batchSize).Error; err != nil {
		return fmt.Errorf("failed to insert %d interactions: %w", len(records), err)
	}
	return nil
}

func (s *gormStore) ListInteractions(ctx context.Context, from, to time.Time) ([]models.HistoryRecord, error) {
	var records []InteractionRecord
	err := s.db.WithContext(ctx).
		Where("occurred_at >= ? AND occurred_at < ?", from.UTC(), to.UTC()).
		Order("occurred_at").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}

	history := make([]models.HistoryRecord, 0, len(records))
	for _, r := range records {
		history = append(history, r.history())
	}
	return history, nil
}
