package postgres

import (
	"Launchpad-Backend/internal/domain"
	"Launchpad-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClickStore хранит агрегаты кликов в PostgreSQL, одна строка на запуск
type ClickStore struct {
	db  *gorm.DB
	log *zap.Logger
}

var _ repository.ClickStore = (*ClickStore)(nil)

// NewClickStore создает PostgreSQL click store
func NewClickStore(db *gorm.DB, log *zap.Logger) *ClickStore {
	return &ClickStore{db: db, log: log}
}

// RecordEvent применяет событие под блокировкой строки
func (s *ClickStore) RecordEvent(ctx context.Context, launchID int64, sessionID string, clickType domain.ClickType, now time.Time) (bool, error) {
	accepted := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Создаем пустую запись, если её ещё нет
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&domain.ClickRecord{LaunchID: launchID}).Error; err != nil {
			return err
		}

		var record domain.ClickRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("launch_id = ?", launchID).
			First(&record).Error; err != nil {
			return err
		}

		if !record.Apply(sessionID, clickType, domain.DayKey(now)) {
			return nil
		}
		accepted = true

		return tx.Model(&record).Select(
			"all_time", "all_time_outbound", "daily_clicks", "daily_outbound_clicks", "tracked_sessions", "updated_at",
		).Updates(&record).Error
	})
	if err != nil {
		s.log.Error("failed to record click event",
			zap.Int64("launch_id", launchID),
			zap.String("type", string(clickType)),
			zap.Error(err))
		return false, fmt.Errorf("failed to record click: %w", err)
	}

	return accepted, nil
}

// GetClickRecord возвращает агрегат по запуску или nil
func (s *ClickStore) GetClickRecord(ctx context.Context, launchID int64) (*domain.ClickRecord, error) {
	var record domain.ClickRecord

	err := s.db.WithContext(ctx).Where("launch_id = ?", launchID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		s.log.Error("failed to get click record", zap.Int64("launch_id", launchID), zap.Error(err))
		return nil, fmt.Errorf("failed to get click record: %w", err)
	}

	return &record, nil
}

// GetClickRecords возвращает агрегаты по набору запусков
func (s *ClickStore) GetClickRecords(ctx context.Context, launchIDs []int64) (map[int64]*domain.ClickRecord, error) {
	out := make(map[int64]*domain.ClickRecord, len(launchIDs))
	if len(launchIDs) == 0 {
		return out, nil
	}

	var records []*domain.ClickRecord
	if err := s.db.WithContext(ctx).Where("launch_id IN ?", launchIDs).Find(&records).Error; err != nil {
		s.log.Error("failed to get click records", zap.Int("count", len(launchIDs)), zap.Error(err))
		return nil, fmt.Errorf("failed to get click records: %w", err)
	}

	for _, record := range records {
		out[record.LaunchID] = record
	}
	return out, nil
}
