package ratelimit

import (
	"context"
	"sync"
	"time"
)

type counter struct {
	count   int
	resetAt time.Time
}

// MemoryStore keeps counters in process memory. Limits are enforced per
// instance only.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*counter
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[string]*counter)}
}

func (s *MemoryStore) Take(_ context.Context, key string, limit int, window time.Duration, now time.Time) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[key]
	if !ok || !now.Before(c.resetAt) {
		c = &counter{count: 1, resetAt: now.Add(window)}
		s.counters[key] = c
		return allow(limit, c.count, c.resetAt), nil
	}

	if c.count >= limit {
		return deny(limit, c.resetAt, now), nil
	}

	c.count++
	return allow(limit, c.count, c.resetAt), nil
}

func (s *MemoryStore) Sweep(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, c := range s.counters {
		if !now.Before(c.resetAt) {
			delete(s.counters, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of live keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters)
}
