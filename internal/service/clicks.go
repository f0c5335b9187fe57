package service

import (
	"Launchpad-Backend/internal/domain"
	"Launchpad-Backend/internal/metrics"
	"Launchpad-Backend/internal/repository"
	"Launchpad-Backend/pkg/useragent"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const maxBatchIDs = 100

// Reasons an event was not counted.
const (
	ReasonDuplicate = "duplicate"
	ReasonBot       = "bot"
)

// RecordInput is one click event.
type RecordInput struct {
	LaunchID  int64            `json:"productId" validate:"required,gt=0"`
	SessionID string           `json:"sessionId" validate:"required,max=128,printascii"`
	Type      domain.ClickType `json:"type" validate:"required,oneof=click outbound"`
	UserAgent string           `json:"-"`
}

// RecordResult reports whether an event was counted and why not.
type RecordResult struct {
	Recorded bool
	Reason   string
}

// ClickService records click events and computes windowed statistics.
type ClickService struct {
	clicks  repository.ClickStore
	storage repository.Storage
	ua      *useragent.Parser
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

func NewClickService(clicks repository.ClickStore, storage repository.Storage, ua *useragent.Parser, m *metrics.Metrics, log *zap.Logger) *ClickService {
	return &ClickService{
		clicks:  clicks,
		storage: storage,
		ua:      ua,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// Record counts one event unless the session already produced the same event
// type for the launch today or the caller is a bot.
func (s *ClickService) Record(ctx context.Context, in RecordInput) (*RecordResult, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	launch, err := s.storage.GetLaunch(ctx, in.LaunchID)
	if err != nil {
		return nil, err
	}
	if !launch.IsActive {
		return nil, repository.ErrLaunchNotFound
	}

	device := useragent.DeviceUnknown
	if s.ua != nil {
		device = s.ua.ParseUserAgent(in.UserAgent).DeviceType
	}
	if device == useragent.DeviceBot {
		s.metrics.RecordClick(string(in.Type), ReasonBot, device)
		s.log.Debug("bot click ignored", zap.Int64("launch_id", in.LaunchID))
		return &RecordResult{Recorded: false, Reason: ReasonBot}, nil
	}

	recorded, err := s.clicks.RecordEvent(ctx, in.LaunchID, in.SessionID, in.Type, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to record click: %w", err)
	}

	if !recorded {
		s.metrics.RecordClick(string(in.Type), ReasonDuplicate, device)
		return &RecordResult{Recorded: false, Reason: ReasonDuplicate}, nil
	}

	s.metrics.RecordClick(string(in.Type), "recorded", device)
	return &RecordResult{Recorded: true}, nil
}

// Stats returns the windowed counters of one launch. Launches without events
// get all-zero stats.
func (s *ClickService) Stats(ctx context.Context, launchID int64) (domain.ClickStats, error) {
	if launchID <= 0 {
		return domain.ClickStats{}, invalidf("productId must be a positive integer")
	}

	record, err := s.clicks.GetClickRecord(ctx, launchID)
	if err != nil {
		return domain.ClickStats{}, fmt.Errorf("failed to get click stats: %w", err)
	}
	return domain.ComputeStats(record, s.now().UTC()), nil
}

// BatchStats returns stats for every requested id, zero for ids without events.
func (s *ClickService) BatchStats(ctx context.Context, launchIDs []int64) (map[int64]domain.ClickStats, error) {
	if len(launchIDs) == 0 {
		return nil, invalidf("ids is required")
	}
	if len(launchIDs) > maxBatchIDs {
		return nil, invalidf("at most %d ids per request", maxBatchIDs)
	}
	for _, id := range launchIDs {
		if id <= 0 {
			return nil, invalidf("ids must be positive integers")
		}
	}

	records, err := s.clicks.GetClickRecords(ctx, launchIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get click stats: %w", err)
	}

	now := s.now().UTC()
	out := make(map[int64]domain.ClickStats, len(launchIDs))
	for _, id := range launchIDs {
		out[id] = domain.ComputeStats(records[id], now)
	}
	return out, nil
}
