// Package ratelimit implements a fixed-window request counter.
//
// Each key holds {count, resetAt}. A request with no entry, or arriving at or
// after resetAt, starts a new window with count 1. Otherwise it is denied when
// count has reached the limit and counted when it has not. A client can send
// up to twice the limit across a window boundary; this is accepted behaviour.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidRule = errors.New("rate limit must be positive")

// Decision is the outcome of one Take.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Store holds window counters. Implementations must make Take atomic per key.
type Store interface {
	// Take counts one request for key and returns the decision.
	Take(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Decision, error)
	// Sweep drops entries whose window ended before now and returns how many were removed.
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// Limiter applies fixed-window limits over an injected Store.
type Limiter struct {
	store  Store
	prefix string
	now    func() time.Time
}

// New creates a limiter. prefix namespaces keys in shared stores.
func New(store Store, prefix string) *Limiter {
	return &Limiter{
		store:  store,
		prefix: prefix,
		now:    time.Now,
	}
}

// WithClock replaces the time source.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Allow counts one request for key against limit per window.
func (l *Limiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	if limit <= 0 || window <= 0 {
		return Decision{}, ErrInvalidRule
	}
	return l.store.Take(ctx, l.prefix+key, limit, window, l.now())
}

// Sweep removes expired entries from the store.
func (l *Limiter) Sweep(ctx context.Context) (int, error) {
	return l.store.Sweep(ctx, l.now())
}

func deny(limit int, resetAt, now time.Time) Decision {
	return Decision{
		Allowed:    false,
		Limit:      limit,
		Remaining:  0,
		ResetAt:    resetAt,
		RetryAfter: resetAt.Sub(now),
	}
}

func allow(limit, count int, resetAt time.Time) Decision {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   true,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}
