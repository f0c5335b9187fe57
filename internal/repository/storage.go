package repository

import (
	"Launchpad-Backend/internal/domain"
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserExists        = errors.New("user already exists")
	ErrLaunchNotFound    = errors.New("launch not found")
	ErrSlugExists        = errors.New("slug already exists")
	ErrAlreadyClaimed    = errors.New("launch already claimed")
	ErrCommentNotFound   = errors.New("comment not found")
	ErrSlotNotFound      = errors.New("placement slot not found")
	ErrPlacementNotFound = errors.New("placement not found")
	ErrSlotUnavailable   = errors.New("placement slot is already booked for this period")
)

// Storage is the relational store behind users, launches, comments and placements.
type Storage interface {
	// User methods
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error

	// Launch methods
	CreateLaunch(ctx context.Context, launch *domain.Launch) error
	GetLaunch(ctx context.Context, id int64) (*domain.Launch, error)
	GetLaunchBySlug(ctx context.Context, slug string) (*domain.Launch, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	UpdateLaunch(ctx context.Context, launch *domain.Launch) error
	DeleteLaunch(ctx context.Context, id int64) error
	QueryLaunches(ctx context.Context, filter domain.LaunchFilter) ([]*domain.Launch, int64, error)
	// ClaimLaunch assigns an unowned launch to userID. Returns ErrAlreadyClaimed if it has an owner.
	ClaimLaunch(ctx context.Context, id int64, userID int64, claimedAt time.Time) (*domain.Launch, error)

	// Comment methods
	CreateComment(ctx context.Context, comment *domain.Comment) error
	GetComment(ctx context.Context, id int64) (*domain.Comment, error)
	ListComments(ctx context.Context, launchID int64, limit, offset int) ([]*domain.Comment, int64, error)
	DeleteComment(ctx context.Context, id int64) error

	// Placement methods
	ListSlots(ctx context.Context) ([]*domain.PlacementSlot, error)
	GetSlot(ctx context.Context, code string) (*domain.PlacementSlot, error)
	GetPlacement(ctx context.Context, id int64) (*domain.Placement, error)
	GetPlacementBySession(ctx context.Context, sessionID string) (*domain.Placement, error)
	ListUserPlacements(ctx context.Context, userID int64) ([]*domain.Placement, error)
	ListLivePlacements(ctx context.Context, now time.Time) ([]*domain.Placement, error)
	// FindSlotHolder returns the paid, non-expired placement of code overlapping [start, end], if any.
	FindSlotHolder(ctx context.Context, code string, start, end time.Time) (*domain.Placement, error)
	// ReservePlacement atomically checks exclusivity over p.BookingWindow() and
	// writes p. A non-zero p.ID names a draft or pending row of the same user and
	// code to overwrite; when that row is gone or no longer reusable a new row is
	// inserted. Returns ErrSlotUnavailable on conflict.
	ReservePlacement(ctx context.Context, p *domain.Placement) error
	// ModifyPlacement locks placement id, passes it to fn and persists the
	// creative fields and status fn leaves on it. Payment fields are never written.
	// An error from fn is returned unchanged and nothing is saved.
	ModifyPlacement(ctx context.Context, id int64, fn func(p *domain.Placement) error) (*domain.Placement, error)
	// ApplyPlacementPayment applies a payment outcome to the placement owning sessionID under a row lock.
	ApplyPlacementPayment(ctx context.Context, sessionID string, payment domain.PaymentStatus) (*domain.Placement, error)
	ExpirePlacements(ctx context.Context, now time.Time) (int64, error)

	Ping(ctx context.Context) error
}

// ClickStore is the counter store behind click aggregation.
type ClickStore interface {
	// RecordEvent applies one event and reports whether it was counted.
	RecordEvent(ctx context.Context, launchID int64, sessionID string, clickType domain.ClickType, now time.Time) (bool, error)
	// GetClickRecord returns nil without error when nothing was recorded yet.
	GetClickRecord(ctx context.Context, launchID int64) (*domain.ClickRecord, error)
	GetClickRecords(ctx context.Context, launchIDs []int64) (map[int64]*domain.ClickRecord, error)
}
