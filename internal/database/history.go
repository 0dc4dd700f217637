package database

import (
	"fmt"
	"investadvisor/server/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// HistoryStore persists prediction records
type HistoryStore struct {
	db *gorm.DB
}

// NewHistoryStore opens (or creates) the history database and migrates it
func NewHistoryStore(dbPath string) (*HistoryStore, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.AutoMigrate(&models.PredictionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}

	return &HistoryStore{db: db}, nil
}

func (s *HistoryStore) DB() *gorm.DB {
	return s.db
}

// InsertPredictions writes a batch of records using the given transaction
func InsertPredictions(tx *gorm.DB, batch []*models.PredictionRecord) error {
	if len(batch) == 0 {
		return nil
	}
	if err := tx.CreateInBatches(batch, 100).Error; err != nil {
		return fmt.Errorf("failed to insert predictions: %w", err)
	}
	return nil
}

// GetRecentPredictions returns the newest records first, optionally
// restricted to one locality
func (s *HistoryStore) GetRecentPredictions(limit int, locality string) ([]models.PredictionRecord, error) {
	query := s.db.Order("created_at DESC").Order("id DESC").Limit(limit)
	if locality != "" {
		query = query.Where("locality = ?", locality)
	}

	var records []models.PredictionRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	return records, nil
}

func (s *HistoryStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
