package database

import (
	"Launchpad-Backend/internal/config"
	"Launchpad-Backend/internal/domain"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoMigrate выполняет автоматические миграции для всех доменных моделей
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("starting database auto-migration")

	// Порядок миграций важен из-за внешних ключей
	models := []interface{}{
		&domain.PlacementSlot{}, // Сначала справочники
		&domain.User{},          // Затем пользователи
		&domain.Launch{},        // Запуски (зависят от пользователей)
		&domain.Comment{},       // Комментарии (зависят от запусков)
		&domain.Placement{},     // Размещения (зависят от слотов и пользователей)
		&domain.ClickRecord{},   // Агрегаты кликов (postgres backend)
	}

	log.Info("migrating database models", zap.Int("total_models", len(models)))

	for i, model := range models {
		modelName := fmt.Sprintf("%T", model)
		log.Info("migrating model",
			zap.String("model", modelName),
			zap.Int("step", i+1),
			zap.Int("total", len(models)))

		if err := db.AutoMigrate(model); err != nil {
			log.Error("failed to migrate model",
				zap.String("model", modelName),
				zap.Error(err))
			return fmt.Errorf("failed to migrate model %s: %w", modelName, err)
		}
	}

	// GIN-индекс для фильтра по категориям (categories @> '["tag"]')
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_launches_categories ON launches USING GIN (categories)").Error; err != nil {
		log.Error("failed to create categories index", zap.Error(err))
		return fmt.Errorf("failed to create categories index: %w", err)
	}

	log.Info("database auto-migration completed successfully", zap.Int("migrated_models", len(models)))
	return nil
}

// DefaultSlots возвращает каталог слотов с ценами из конфигурации
func DefaultSlots(cfg *config.Placements) []domain.PlacementSlot {
	slots := []domain.PlacementSlot{
		{
			Code:        "HERO-001",
			Category:    domain.SlotCategoryHero,
			Position:    domain.SlotPositionHero,
			DisplayName: "Hero Banner",
			BasePrice:   cfg.HeroBasePrice,
			IsActive:    true,
		},
	}

	for _, side := range []struct {
		prefix   string
		position domain.SlotPosition
		name     string
	}{
		{"LEFT", domain.SlotPositionLeft, "Left Sidebar"},
		{"RIGHT", domain.SlotPositionRight, "Right Sidebar"},
	} {
		for i := 1; i <= 3; i++ {
			slots = append(slots, domain.PlacementSlot{
				Code:        fmt.Sprintf("%s-%03d", side.prefix, i),
				Category:    domain.SlotCategorySidebar,
				Position:    side.position,
				DisplayName: fmt.Sprintf("%s #%d", side.name, i),
				BasePrice:   cfg.SidebarBasePrice,
				IsActive:    true,
			})
		}
	}

	return slots
}

// SeedData заполняет базу данных начальными данными
func SeedData(db *gorm.DB, cfg *config.Placements, log *zap.Logger) error {
	log.Info("starting database seeding")

	// Проверяем, есть ли уже данные
	var count int64
	if err := db.Model(&domain.PlacementSlot{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count placement slots: %w", err)
	}
	if count > 0 {
		log.Info("placement slots already exist, skipping seeding", zap.Int64("existing_count", count))
		return nil
	}

	slots := DefaultSlots(cfg)
	log.Info("creating placement slots", zap.Int("slots_count", len(slots)))

	if err := db.Create(&slots).Error; err != nil {
		log.Error("failed to seed placement slots", zap.Error(err))
		return fmt.Errorf("failed to seed placement slots: %w", err)
	}

	log.Info("database seeding completed successfully", zap.Int("placement_slots_created", len(slots)))
	return nil
}
