package service

import (
	"Launchpad-Backend/internal/config"
	"Launchpad-Backend/internal/domain"
	"Launchpad-Backend/internal/repository"
	"Launchpad-Backend/pkg/random"
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
)

const (
	maxRetries = 5

	defaultPageLimit = 12
	maxPageLimit     = 50
	maxSlugLength    = 80
	maxImportBatch   = 200
)

// LaunchInput is the editable content of a launch.
type LaunchInput struct {
	Name        string              `json:"name" validate:"required,max=100"`
	Tagline     string              `json:"tagline" validate:"max=160"`
	Description string              `json:"description" validate:"max=5000"`
	WebsiteURL  string              `json:"websiteUrl" validate:"required,http_url,max=500"`
	LogoURL     string              `json:"logoUrl" validate:"omitempty,http_url,max=500"`
	Categories  domain.CategoryList `json:"categories"`
	Tier        domain.LaunchTier   `json:"tier" validate:"omitempty,oneof=free featured"`
}

// LaunchUpdate holds the fields an owner may change. Nil fields are left as is.
type LaunchUpdate struct {
	Name        *string             `json:"name" validate:"omitempty,min=1,max=100"`
	Tagline     *string             `json:"tagline" validate:"omitempty,max=160"`
	Description *string             `json:"description" validate:"omitempty,max=5000"`
	WebsiteURL  *string             `json:"websiteUrl" validate:"omitempty,http_url,max=500"`
	LogoURL     *string             `json:"logoUrl" validate:"omitempty,http_url,max=500"`
	Categories  domain.CategoryList `json:"categories"`
}

// LaunchQuery is a raw catalog query as received from the client.
type LaunchQuery struct {
	Category string
	Search   string
	Tier     string
	Page     int
	Limit    int
}

// ImportedLaunch pairs an imported launch with its one-time claim key.
type ImportedLaunch struct {
	Launch   *domain.Launch `json:"launch"`
	ClaimKey string         `json:"claimKey"`
}

// LaunchService manages the launch catalog.
type LaunchService struct {
	storage repository.Storage
	config  *config.Launches
	log     *zap.Logger
	now     func() time.Time
}

func NewLaunchService(storage repository.Storage, cfg *config.Launches, log *zap.Logger) *LaunchService {
	return &LaunchService{
		storage: storage,
		config:  cfg,
		log:     log,
		now:     time.Now,
	}
}

// Create adds a launch owned by userID. User submissions always start on the free tier.
func (s *LaunchService) Create(ctx context.Context, userID int64, in LaunchInput) (*domain.Launch, error) {
	launch, err := s.buildLaunch(in)
	if err != nil {
		return nil, err
	}
	owner := userID
	launch.UserID = &owner
	launch.Tier = domain.LaunchTierFree

	if err := s.insertWithSlug(ctx, launch); err != nil {
		return nil, err
	}

	s.log.Info("launch created",
		zap.Int64("launch_id", launch.ID),
		zap.String("slug", launch.Slug),
		zap.Int64("user_id", userID))
	return launch, nil
}

// Get returns a launch by numeric id or by slug.
func (s *LaunchService) Get(ctx context.Context, idOrSlug string) (*domain.Launch, error) {
	if id, err := strconv.ParseInt(idOrSlug, 10, 64); err == nil {
		return s.storage.GetLaunch(ctx, id)
	}
	return s.storage.GetLaunchBySlug(ctx, idOrSlug)
}

// Query returns one page of the catalog, newest first.
func (s *LaunchService) Query(ctx context.Context, q LaunchQuery) (*domain.LaunchPage, error) {
	filter, err := buildFilter(q)
	if err != nil {
		return nil, err
	}
	return s.query(ctx, filter)
}

// ListMine returns the launches owned by userID.
func (s *LaunchService) ListMine(ctx context.Context, userID int64, page, limit int) (*domain.LaunchPage, error) {
	filter, err := buildFilter(LaunchQuery{Page: page, Limit: limit})
	if err != nil {
		return nil, err
	}
	filter.UserID = &userID
	return s.query(ctx, filter)
}

func (s *LaunchService) query(ctx context.Context, filter domain.LaunchFilter) (*domain.LaunchPage, error) {
	items, total, err := s.storage.QueryLaunches(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query launches: %w", err)
	}
	if items == nil {
		items = []*domain.Launch{}
	}

	return &domain.LaunchPage{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

// Update changes an owned launch. The slug never changes.
func (s *LaunchService) Update(ctx context.Context, userID, id int64, in LaunchUpdate) (*domain.Launch, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	launch, err := s.storage.GetLaunch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !launch.IsOwnedBy(userID) {
		return nil, ErrForbidden
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, invalidf("name is required")
		}
		launch.Name = name
	}
	if in.Tagline != nil {
		launch.Tagline = strings.TrimSpace(*in.Tagline)
	}
	if in.Description != nil {
		launch.Description = strings.TrimSpace(*in.Description)
	}
	if in.WebsiteURL != nil {
		launch.WebsiteURL = *in.WebsiteURL
	}
	if in.LogoURL != nil {
		launch.LogoURL = *in.LogoURL
	}
	if in.Categories != nil {
		categories, err := domain.NormalizeCategories(in.Categories)
		if err != nil {
			return nil, &ValidationError{Message: err.Error()}
		}
		launch.Categories = categories
	}

	if err := s.storage.UpdateLaunch(ctx, launch); err != nil {
		return nil, fmt.Errorf("failed to update launch: %w", err)
	}
	return launch, nil
}

// Delete hides an owned launch from the catalog.
func (s *LaunchService) Delete(ctx context.Context, userID, id int64) error {
	launch, err := s.storage.GetLaunch(ctx, id)
	if err != nil {
		return err
	}
	if !launch.IsOwnedBy(userID) {
		return ErrForbidden
	}

	if err := s.storage.DeleteLaunch(ctx, id); err != nil {
		return err
	}

	s.log.Info("launch deleted", zap.Int64("launch_id", id), zap.Int64("user_id", userID))
	return nil
}

// Claim transfers an imported launch to userID when claimKey matches.
func (s *LaunchService) Claim(ctx context.Context, userID, id int64, claimKey string) (*domain.Launch, error) {
	if strings.TrimSpace(claimKey) == "" {
		return nil, invalidf("claimKey is required")
	}

	launch, err := s.storage.GetLaunch(ctx, id)
	if err != nil {
		return nil, err
	}
	if launch.UserID != nil {
		return nil, repository.ErrAlreadyClaimed
	}
	if launch.ClaimKey == nil || subtle.ConstantTimeCompare([]byte(*launch.ClaimKey), []byte(claimKey)) != 1 {
		s.log.Warn("claim key mismatch", zap.Int64("launch_id", id), zap.Int64("user_id", userID))
		return nil, ErrInvalidClaimKey
	}

	claimed, err := s.storage.ClaimLaunch(ctx, id, userID, s.now().UTC())
	if err != nil {
		return nil, err
	}

	s.log.Info("launch claimed", zap.Int64("launch_id", id), zap.Int64("user_id", userID))
	return claimed, nil
}

// Import creates unowned launches, each with a fresh claim key. The keys are
// returned once and never exposed again.
func (s *LaunchService) Import(ctx context.Context, items []LaunchInput) ([]ImportedLaunch, error) {
	if len(items) == 0 {
		return nil, invalidf("at least one launch is required")
	}
	if len(items) > maxImportBatch {
		return nil, invalidf("at most %d launches per import", maxImportBatch)
	}

	launches := make([]*domain.Launch, 0, len(items))
	for i, in := range items {
		launch, err := s.buildLaunch(in)
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				return nil, invalidf("item %d: %s", i, ve.Message)
			}
			return nil, err
		}
		if launch.Tier == "" {
			launch.Tier = domain.LaunchTierFree
		}
		launches = append(launches, launch)
	}

	out := make([]ImportedLaunch, 0, len(launches))
	for _, launch := range launches {
		key, err := random.NewRandomString(s.config.ClaimKeyLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate claim key: %w", err)
		}
		launch.ClaimKey = &key

		if err := s.insertWithSlug(ctx, launch); err != nil {
			return out, err
		}
		out = append(out, ImportedLaunch{Launch: launch, ClaimKey: key})
	}

	s.log.Info("launches imported", zap.Int("count", len(out)))
	return out, nil
}

func (s *LaunchService) buildLaunch(in LaunchInput) (*domain.Launch, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	categories, err := domain.NormalizeCategories(in.Categories)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	return &domain.Launch{
		Name:        in.Name,
		Tagline:     strings.TrimSpace(in.Tagline),
		Description: strings.TrimSpace(in.Description),
		WebsiteURL:  in.WebsiteURL,
		LogoURL:     in.LogoURL,
		Categories:  categories,
		Tier:        in.Tier,
	}, nil
}

// insertWithSlug derives a slug from the name and retries with a random
// suffix while it collides.
func (s *LaunchService) insertWithSlug(ctx context.Context, launch *domain.Launch) error {
	base := Slugify(launch.Name)

	candidate := base
	for i := 0; i < maxRetries; i++ {
		if i > 0 {
			suffix, err := random.NewRandomString(s.config.SlugSuffixLength)
			if err != nil {
				return fmt.Errorf("failed to generate slug suffix: %w", err)
			}
			candidate = base + "-" + suffix
		}

		exists, err := s.storage.SlugExists(ctx, candidate)
		if err != nil {
			return fmt.Errorf("failed to check slug existence: %w", err)
		}
		if exists {
			continue
		}

		launch.Slug = candidate
		err = s.storage.CreateLaunch(ctx, launch)
		if errors.Is(err, repository.ErrSlugExists) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to save launch: %w", err)
		}
		return nil
	}

	return repository.ErrSlugExists
}

// Slugify lowercases name and joins its letters and digits with dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.TrimRight(b.String(), "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	if slug == "" {
		return "launch"
	}
	return slug
}

func buildFilter(q LaunchQuery) (domain.LaunchFilter, error) {
	filter := domain.LaunchFilter{
		Category: domain.NormalizeCategory(q.Category),
		Search:   strings.TrimSpace(q.Search),
		Page:     q.Page,
		Limit:    q.Limit,
	}

	if q.Tier != "" {
		tier := domain.LaunchTier(strings.ToLower(q.Tier))
		if !tier.Valid() {
			return filter, invalidf("tier must be one of: free featured")
		}
		filter.Tier = tier
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultPageLimit
	case filter.Limit > maxPageLimit:
		filter.Limit = maxPageLimit
	}
	return filter, nil
}

func totalPages(total int64, limit int) int {
	if limit <= 0 || total == 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
