package postgres

import (
	"Launchpad-Backend/internal/domain"
	"Launchpad-Backend/internal/repository"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresStorage реализует интерфейс Storage для PostgreSQL
type PostgresStorage struct {
	db  *gorm.DB
	log *zap.Logger
}

var _ repository.Storage = (*PostgresStorage)(nil)

// New создает новый экземпляр PostgreSQL storage
func New(db *gorm.DB, log *zap.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:  db,
		log: log,
	}
}

// Ping проверяет доступность базы данных
func (s *PostgresStorage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// --- User Methods ---

// CreateUser создает нового пользователя
func (s *PostgresStorage) CreateUser(ctx context.Context, user *domain.User) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("LOWER(email) = LOWER(?)", user.Email).Count(&count).Error; err != nil {
		s.log.Error("failed to check user existence", zap.String("email", user.Email), zap.Error(err))
		return fmt.Errorf("failed to check user: %w", err)
	}
	if count > 0 {
		return repository.ErrUserExists
	}

	user.IsActive = true
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrUserExists
		}
		s.log.Error("failed to create user", zap.String("email", user.Email), zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("created new user", zap.Int64("user_id", user.ID), zap.String("source", user.RegistrationSource))
	return nil
}

// GetUserByID получает пользователя по ID
func (s *PostgresStorage) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User

	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		s.log.Error("failed to get user by id", zap.Int64("user_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// GetUserByEmail получает пользователя по email
func (s *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User

	err := s.db.WithContext(ctx).Where("LOWER(email) = LOWER(?) AND is_active = ?", email, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		s.log.Error("failed to get user by email", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// UpdateUser сохраняет изменения пользователя
func (s *PostgresStorage) UpdateUser(ctx context.Context, user *domain.User) error {
	result := s.db.WithContext(ctx).Model(user).Select(
		"name", "image", "google_id", "stripe_customer_id", "last_login_at", "updated_at",
	).Updates(user)
	if result.Error != nil {
		s.log.Error("failed to update user", zap.Int64("user_id", user.ID), zap.Error(result.Error))
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}
	return nil
}

// --- Launch Methods ---

// CreateLaunch сохраняет новый запуск
func (s *PostgresStorage) CreateLaunch(ctx context.Context, launch *domain.Launch) error {
	launch.IsActive = true
	if err := s.db.WithContext(ctx).Create(launch).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrSlugExists
		}
		s.log.Error("failed to create launch", zap.String("slug", launch.Slug), zap.Error(err))
		return fmt.Errorf("failed to create launch: %w", err)
	}

	s.log.Info("saved new launch", zap.Int64("launch_id", launch.ID), zap.String("slug", launch.Slug))
	return nil
}

// GetLaunch получает запуск по ID
func (s *PostgresStorage) GetLaunch(ctx context.Context, id int64) (*domain.Launch, error) {
	var launch domain.Launch

	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&launch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrLaunchNotFound
	}
	if err != nil {
		s.log.Error("failed to get launch", zap.Int64("launch_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get launch: %w", err)
	}

	return &launch, nil
}

// GetLaunchBySlug получает запуск по slug
func (s *PostgresStorage) GetLaunchBySlug(ctx context.Context, slug string) (*domain.Launch, error) {
	var launch domain.Launch

	err := s.db.WithContext(ctx).Where("slug = ? AND is_active = ?", slug, true).First(&launch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrLaunchNotFound
	}
	if err != nil {
		s.log.Error("failed to get launch by slug", zap.String("slug", slug), zap.Error(err))
		return nil, fmt.Errorf("failed to get launch: %w", err)
	}

	return &launch, nil
}

// SlugExists проверяет, занят ли slug
func (s *PostgresStorage) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Launch{}).Where("slug = ?", slug).Count(&count).Error
	if err != nil {
		s.log.Error("failed to check slug existence", zap.String("slug", slug), zap.Error(err))
		return false, fmt.Errorf("failed to check slug: %w", err)
	}

	return count > 0, nil
}

// UpdateLaunch сохраняет изменения запуска
func (s *PostgresStorage) UpdateLaunch(ctx context.Context, launch *domain.Launch) error {
	result := s.db.WithContext(ctx).Model(launch).Where("is_active = ?", true).Select(
		"name", "tagline", "description", "website_url", "logo_url", "categories", "tier", "updated_at",
	).Updates(launch)
	if result.Error != nil {
		s.log.Error("failed to update launch", zap.Int64("launch_id", launch.ID), zap.Error(result.Error))
		return fmt.Errorf("failed to update launch: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrLaunchNotFound
	}
	return nil
}

// DeleteLaunch удаляет запуск (мягкое удаление)
func (s *PostgresStorage) DeleteLaunch(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Model(&domain.Launch{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if result.Error != nil {
		s.log.Error("failed to delete launch", zap.Int64("launch_id", id), zap.Error(result.Error))
		return fmt.Errorf("failed to delete launch: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return repository.ErrLaunchNotFound
	}

	s.log.Info("deleted launch", zap.Int64("launch_id", id))
	return nil
}

// QueryLaunches фильтрует и постранично возвращает каталог
func (s *PostgresStorage) QueryLaunches(ctx context.Context, filter domain.LaunchFilter) ([]*domain.Launch, int64, error) {
	query := s.db.WithContext(ctx).Model(&domain.Launch{}).Where("is_active = ?", true)

	if filter.Category != "" {
		tag, err := json.Marshal([]string{domain.NormalizeCategory(filter.Category)})
		if err != nil {
			return nil, 0, fmt.Errorf("failed to encode category filter: %w", err)
		}
		query = query.Where("categories @> ?::jsonb", string(tag))
	}
	if filter.Tier != "" {
		query = query.Where("tier = ?", filter.Tier)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		query = query.Where("(name ILIKE ? OR tagline ILIKE ? OR description ILIKE ?)", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		s.log.Error("failed to count launches", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count launches: %w", err)
	}

	var launches []*domain.Launch
	err := query.Order("created_at DESC").Order("id DESC").
		Limit(filter.Limit).Offset(filter.Offset()).
		Find(&launches).Error
	if err != nil {
		s.log.Error("failed to query launches", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to query launches: %w", err)
	}

	return launches, total, nil
}

// ClaimLaunch передает импортированный запуск пользователю
func (s *PostgresStorage) ClaimLaunch(ctx context.Context, id int64, userID int64, claimedAt time.Time) (*domain.Launch, error) {
	result := s.db.WithContext(ctx).Model(&domain.Launch{}).
		Where("id = ? AND is_active = ? AND user_id IS NULL", id, true).
		Updates(map[string]interface{}{"user_id": userID, "claimed_at": claimedAt})
	if result.Error != nil {
		s.log.Error("failed to claim launch", zap.Int64("launch_id", id), zap.Error(result.Error))
		return nil, fmt.Errorf("failed to claim launch: %w", result.Error)
	}

	launch, err := s.GetLaunch(ctx, id)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrAlreadyClaimed
	}

	s.log.Info("launch claimed", zap.Int64("launch_id", id), zap.Int64("user_id", userID))
	return launch, nil
}

// --- Comment Methods ---

// CreateComment сохраняет комментарий
func (s *PostgresStorage) CreateComment(ctx context.Context, comment *domain.Comment) error {
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		s.log.Error("failed to create comment", zap.Int64("launch_id", comment.LaunchID), zap.Error(err))
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// GetComment получает комментарий по ID
func (s *PostgresStorage) GetComment(ctx context.Context, id int64) (*domain.Comment, error) {
	var comment domain.Comment

	err := s.db.WithContext(ctx).First(&comment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrCommentNotFound
	}
	if err != nil {
		s.log.Error("failed to get comment", zap.Int64("comment_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return &comment, nil
}

// ListComments возвращает комментарии запуска, старые первыми
func (s *PostgresStorage) ListComments(ctx context.Context, launchID int64, limit, offset int) ([]*domain.Comment, int64, error) {
	query := s.db.WithContext(ctx).Model(&domain.Comment{}).Where("launch_id = ?", launchID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		s.log.Error("failed to count comments", zap.Int64("launch_id", launchID), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}

	var comments []*domain.Comment
	if err := query.Order("created_at ASC").Limit(limit).Offset(offset).Find(&comments).Error; err != nil {
		s.log.Error("failed to list comments", zap.Int64("launch_id", launchID), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}

	return comments, total, nil
}

// DeleteComment удаляет комментарий
func (s *PostgresStorage) DeleteComment(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&domain.Comment{}, id)
	if result.Error != nil {
		s.log.Error("failed to delete comment", zap.Int64("comment_id", id), zap.Error(result.Error))
		return fmt.Errorf("failed to delete comment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrCommentNotFound
	}
	return nil
}

// --- Placement Methods ---

// ListSlots возвращает активные слоты каталога
func (s *PostgresStorage) ListSlots(ctx context.Context) ([]*domain.PlacementSlot, error) {
	var slots []*domain.PlacementSlot

	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").Find(&slots).Error; err != nil {
		s.log.Error("failed to list placement slots", zap.Error(err))
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}

	return slots, nil
}

// GetSlot получает слот по коду
func (s *PostgresStorage) GetSlot(ctx context.Context, code string) (*domain.PlacementSlot, error) {
	var slot domain.PlacementSlot

	err := s.db.WithContext(ctx).Where("code = ? AND is_active = ?", code, true).First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrSlotNotFound
	}
	if err != nil {
		s.log.Error("failed to get placement slot", zap.String("code", code), zap.Error(err))
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}

	return &slot, nil
}

// GetPlacement получает размещение по ID
func (s *PostgresStorage) GetPlacement(ctx context.Context, id int64) (*domain.Placement, error) {
	var p domain.Placement

	err := s.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrPlacementNotFound
	}
	if err != nil {
		s.log.Error("failed to get placement", zap.Int64("placement_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get placement: %w", err)
	}

	return &p, nil
}

// GetPlacementBySession получает размещение по ID checkout-сессии
func (s *PostgresStorage) GetPlacementBySession(ctx context.Context, sessionID string) (*domain.Placement, error) {
	var p domain.Placement

	err := s.db.WithContext(ctx).Where("payment_intent_id = ?", sessionID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrPlacementNotFound
	}
	if err != nil {
		s.log.Error("failed to get placement by session", zap.String("session_id", sessionID), zap.Error(err))
		return nil, fmt.Errorf("failed to get placement: %w", err)
	}

	return &p, nil
}

// ListUserPlacements возвращает размещения пользователя
func (s *PostgresStorage) ListUserPlacements(ctx context.Context, userID int64) ([]*domain.Placement, error) {
	var placements []*domain.Placement

	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&placements).Error
	if err != nil {
		s.log.Error("failed to list user placements", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list placements: %w", err)
	}

	return placements, nil
}

// ListLivePlacements возвращает оплаченные активные размещения, действующие сейчас
func (s *PostgresStorage) ListLivePlacements(ctx context.Context, now time.Time) ([]*domain.Placement, error) {
	var placements []*domain.Placement

	err := s.db.WithContext(ctx).
		Where("status = ? AND payment_status = ?", domain.PlacementStatusActive, domain.PaymentStatusPaid).
		Where("start_date <= ? AND end_date >= ?", now, now).
		Order("start_date ASC").
		Find(&placements).Error
	if err != nil {
		s.log.Error("failed to list live placements", zap.Error(err))
		return nil, fmt.Errorf("failed to list live placements: %w", err)
	}

	return placements, nil
}

// FindSlotHolder ищет оплаченное размещение кода, пересекающееся с периодом
func (s *PostgresStorage) FindSlotHolder(ctx context.Context, code string, start, end time.Time) (*domain.Placement, error) {
	return s.findSlotHolder(s.db.WithContext(ctx), code, start, end)
}

func (s *PostgresStorage) findSlotHolder(db *gorm.DB, code string, start, end time.Time) (*domain.Placement, error) {
	var holder domain.Placement

	err := db.Where("code_name = ? AND payment_status = ?", code, domain.PaymentStatusPaid).
		Where("status IN ?", []domain.PlacementStatus{domain.PlacementStatusActive, domain.PlacementStatusInactive}).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Order("end_date DESC").
		First(&holder).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		s.log.Error("failed to check slot holder", zap.String("code", code), zap.Error(err))
		return nil, fmt.Errorf("failed to check slot availability: %w", err)
	}

	return &holder, nil
}

// ReservePlacement проверяет доступность слота и записывает размещение в одной транзакции
func (s *PostgresStorage) ReservePlacement(ctx context.Context, p *domain.Placement) error {
	start, end := p.BookingWindow()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Транзакционная блокировка по коду слота сериализует конкурентные checkout
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", p.CodeName).Error; err != nil {
			return fmt.Errorf("failed to lock slot: %w", err)
		}

		holder, err := s.findSlotHolder(tx, p.CodeName, start, end)
		if err != nil {
			return err
		}
		if holder != nil {
			return repository.ErrSlotUnavailable
		}

		if p.ID != 0 {
			var existing domain.Placement
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ? AND user_id = ? AND code_name = ? AND payment_status IN ?", p.ID, p.UserID, p.CodeName,
					[]domain.PaymentStatus{domain.PaymentStatusDraft, domain.PaymentStatusPending}).
				First(&existing).Error
			if err == nil {
				p.CreatedAt = existing.CreatedAt
				return tx.Save(p).Error
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			p.ID = 0
		}
		return tx.Create(p).Error
	})
	if errors.Is(err, repository.ErrSlotUnavailable) {
		return err
	}
	if err != nil {
		s.log.Error("failed to reserve placement",
			zap.String("code", p.CodeName),
			zap.Int64("user_id", p.UserID),
			zap.Error(err))
		return fmt.Errorf("failed to reserve placement: %w", err)
	}

	s.log.Info("placement reserved",
		zap.Int64("placement_id", p.ID),
		zap.String("code", p.CodeName),
		zap.String("session_id", p.PaymentIntentID))
	return nil
}

// editableColumns колонки, которые владелец меняет сам; платежные поля
// меняет только ApplyPlacementPayment
var editableColumns = []string{"title", "tagline", "logo_url", "background_url", "website_url", "status", "updated_at"}

// ModifyPlacement читает размещение под блокировкой строки, применяет fn и
// сохраняет только редактируемые колонки
func (s *PostgresStorage) ModifyPlacement(ctx context.Context, id int64, fn func(p *domain.Placement) error) (*domain.Placement, error) {
	var (
		p     domain.Placement
		fnErr error
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrPlacementNotFound
		}
		if err != nil {
			return err
		}

		draft := p
		if fnErr = fn(&draft); fnErr != nil {
			return fnErr
		}
		p.Title, p.Tagline = draft.Title, draft.Tagline
		p.LogoURL, p.BackgroundURL, p.WebsiteURL = draft.LogoURL, draft.BackgroundURL, draft.WebsiteURL
		p.Status = draft.Status
		return tx.Model(&p).Select(editableColumns).Updates(&p).Error
	})
	if fnErr != nil {
		return nil, fnErr
	}
	if errors.Is(err, repository.ErrPlacementNotFound) {
		return nil, err
	}
	if err != nil {
		s.log.Error("failed to update placement", zap.Int64("placement_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update placement: %w", err)
	}

	return &p, nil
}

// ApplyPlacementPayment применяет результат оплаты под блокировкой строки
func (s *PostgresStorage) ApplyPlacementPayment(ctx context.Context, sessionID string, payment domain.PaymentStatus) (*domain.Placement, error) {
	var p domain.Placement

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("payment_intent_id = ?", sessionID).
			First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrPlacementNotFound
		}
		if err != nil {
			return err
		}

		p.ApplyPayment(payment)
		return tx.Model(&p).Select("payment_status", "status", "updated_at").Updates(&p).Error
	})
	if errors.Is(err, repository.ErrPlacementNotFound) {
		return nil, err
	}
	if err != nil {
		s.log.Error("failed to apply placement payment", zap.String("session_id", sessionID), zap.Error(err))
		return nil, fmt.Errorf("failed to apply payment: %w", err)
	}

	return &p, nil
}

// ExpirePlacements помечает истекшие размещения
func (s *PostgresStorage) ExpirePlacements(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Model(&domain.Placement{}).
		Where("status IN ? AND end_date < ?",
			[]domain.PlacementStatus{domain.PlacementStatusActive, domain.PlacementStatusInactive}, now).
		Updates(map[string]interface{}{"status": domain.PlacementStatusExpired, "updated_at": now})
	if result.Error != nil {
		s.log.Error("failed to expire placements", zap.Error(result.Error))
		return 0, fmt.Errorf("failed to expire placements: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// --- Helper Methods ---

// escapeLike экранирует спецсимволы LIKE
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
