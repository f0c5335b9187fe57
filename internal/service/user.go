package service

import (
	"Launchpad-Backend/internal/domain"
	"Launchpad-Backend/internal/repository"
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ProfileUpdate holds the profile fields a user may change.
type ProfileUpdate struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
	Image *string `json:"image" validate:"omitempty,http_url,max=500"`
}

// UserService manages user profiles.
type UserService struct {
	storage repository.Storage
	log     *zap.Logger
}

func NewUserService(storage repository.Storage, log *zap.Logger) *UserService {
	return &UserService{storage: storage, log: log}
}

// Me returns the profile of userID.
func (s *UserService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	return s.storage.GetUserByID(ctx, userID)
}

// UpdateProfile changes the name and image of userID.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, in ProfileUpdate) (*domain.User, error) {
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		if trimmed == "" {
			return nil, invalidf("name is required")
		}
		in.Name = &trimmed
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Image != nil {
		user.Image = *in.Image
	}

	if err := s.storage.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}
