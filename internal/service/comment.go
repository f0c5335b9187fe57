package service

import (
	"Launchpad-Backend/internal/domain"
	"Launchpad-Backend/internal/repository"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

const maxCommentLength = 1000

// CommentPage is one page of comments, oldest first.
type CommentPage struct {
	Items      []*domain.Comment `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"totalPages"`
}

// CommentService manages launch comments.
type CommentService struct {
	storage repository.Storage
	log     *zap.Logger
}

func NewCommentService(storage repository.Storage, log *zap.Logger) *CommentService {
	return &CommentService{storage: storage, log: log}
}

// Create adds a comment by userID to an existing launch.
func (s *CommentService) Create(ctx context.Context, userID, launchID int64, body string) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, invalidf("body is required")
	}
	if utf8.RuneCountInString(body) > maxCommentLength {
		return nil, invalidf("body must be at most %d characters", maxCommentLength)
	}

	if _, err := s.storage.GetLaunch(ctx, launchID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		LaunchID: launchID,
		UserID:   userID,
		Body:     body,
	}
	if err := s.storage.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.log.Debug("comment created",
		zap.Int64("comment_id", comment.ID),
		zap.Int64("launch_id", launchID))
	return comment, nil
}

// List returns comments of a launch, oldest first.
func (s *CommentService) List(ctx context.Context, launchID int64, page, limit int) (*CommentPage, error) {
	if _, err := s.storage.GetLaunch(ctx, launchID); err != nil {
		return nil, err
	}

	filter, _ := buildFilter(LaunchQuery{Page: page, Limit: limit})
	items, total, err := s.storage.ListComments(ctx, launchID, filter.Limit, filter.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	if items == nil {
		items = []*domain.Comment{}
	}

	return &CommentPage{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

// Delete removes a comment written by userID.
func (s *CommentService) Delete(ctx context.Context, userID, commentID int64) error {
	comment, err := s.storage.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return ErrForbidden
	}

	return s.storage.DeleteComment(ctx, commentID)
}
