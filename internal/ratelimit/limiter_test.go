package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestLimiter() (*Limiter, *MemoryStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore()
	return New(store, "rl:").WithClock(clock.Now), store, clock
}

func TestLimiter_Allow(t *testing.T) {
	ctx := context.Background()

	t.Run("allows up to limit then denies", func(t *testing.T) {
		l, _, _ := newTestLimiter()

		for i := 1; i <= 3; i++ {
			d, err := l.Allow(ctx, "clicks:1.2.3.4", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, d.Allowed)
			assert.Equal(t, 3-i, d.Remaining)
		}

		d, err := l.Allow(ctx, "clicks:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, 0, d.Remaining)
		assert.Equal(t, time.Minute, d.RetryAfter)
	})

	t.Run("denied requests do not extend window", func(t *testing.T) {
		l, _, clock := newTestLimiter()

		_, err := l.Allow(ctx, "k", 1, time.Minute)
		require.NoError(t, err)

		clock.Advance(40 * time.Second)
		d, err := l.Allow(ctx, "k", 1, time.Minute)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, 20*time.Second, d.RetryAfter)

		clock.Advance(20 * time.Second)
		d, err = l.Allow(ctx, "k", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	})

	t.Run("keys are independent", func(t *testing.T) {
		l, _, _ := newTestLimiter()

		_, err := l.Allow(ctx, "a", 1, time.Minute)
		require.NoError(t, err)

		d, err := l.Allow(ctx, "b", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	})

	t.Run("rejects invalid rule", func(t *testing.T) {
		l, _, _ := newTestLimiter()

		_, err := l.Allow(ctx, "a", 0, time.Minute)
		assert.ErrorIs(t, err, ErrInvalidRule)
	})
}

func TestLimiter_Sweep(t *testing.T) {
	ctx := context.Background()
	l, store, clock := newTestLimiter()

	_, err := l.Allow(ctx, "short", 5, time.Second)
	require.NoError(t, err)
	_, err = l.Allow(ctx, "long", 5, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())

	clock.Advance(2 * time.Second)
	removed, err := l.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())
}
