package memory

import (
	"Launchpad-Backend/internal/domain"
	"context"
	"sync"
	"time"
)

// ClickStore keeps click records in process memory.
type ClickStore struct {
	mu      sync.Mutex
	records map[int64]*domain.ClickRecord
}

func NewClickStore() *ClickStore {
	return &ClickStore{records: make(map[int64]*domain.ClickRecord)}
}

func (s *ClickStore) RecordEvent(_ context.Context, launchID int64, sessionID string, clickType domain.ClickType, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[launchID]
	if !ok {
		record = &domain.ClickRecord{LaunchID: launchID}
		s.records[launchID] = record
	}

	accepted := record.Apply(sessionID, clickType, domain.DayKey(now))
	if accepted {
		record.UpdatedAt = now
	}
	return accepted, nil
}

func (s *ClickStore) GetClickRecord(_ context.Context, launchID int64) (*domain.ClickRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[launchID]
	if !ok {
		return nil, nil
	}
	return cloneRecord(record), nil
}

func (s *ClickStore) GetClickRecords(_ context.Context, launchIDs []int64) (map[int64]*domain.ClickRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int64]*domain.ClickRecord, len(launchIDs))
	for _, id := range launchIDs {
		if record, ok := s.records[id]; ok {
			out[id] = cloneRecord(record)
		}
	}
	return out, nil
}

func cloneRecord(r *domain.ClickRecord) *domain.ClickRecord {
	cp := *r
	cp.DailyClicks = append([]domain.DailyCount(nil), r.DailyClicks...)
	cp.DailyOutboundClicks = append([]domain.DailyCount(nil), r.DailyOutboundClicks...)
	cp.TrackedSessions = append([]domain.TrackedSession(nil), r.TrackedSessions...)
	return &cp
}
