package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// takeScript runs the fixed-window decision atomically inside Redis.
// KEYS[1] = counter key, ARGV[1] = limit, ARGV[2] = window in ms.
// Returns {allowed, count, ttl_ms}.
var takeScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
local ttl = redis.call('PTTL', KEYS[1])
if (not current) or ttl <= 0 then
	redis.call('SET', KEYS[1], 1, 'PX', ARGV[2])
	return {1, 1, tonumber(ARGV[2])}
end
current = tonumber(current)
if current >= tonumber(ARGV[1]) then
	return {0, current, ttl}
end
current = redis.call('INCR', KEYS[1])
return {1, current, ttl}
`)

// RedisStore shares counters between instances. Expiry is delegated to key TTLs.
type RedisStore struct {
	client redis.Scripter
}

func NewRedisStore(client redis.Scripter) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Take(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Decision, error) {
	res, err := takeScript.Run(ctx, s.client, []string{key}, limit, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script failed: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("unexpected rate limit script reply: %v", res)
	}

	resetAt := now.Add(time.Duration(res[2]) * time.Millisecond)
	if res[0] == 0 {
		return deny(limit, resetAt, now), nil
	}
	return allow(limit, int(res[1]), resetAt), nil
}

// Sweep is a no-op: Redis expires keys on its own.
func (s *RedisStore) Sweep(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}
