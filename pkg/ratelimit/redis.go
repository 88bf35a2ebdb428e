package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript counts a hit in KEYS[1] and blocks via KEYS[2] once the
// count passes ARGV[2]. Returns {count, ttl_ms}; count is -1 while blocked.
var fixedWindowScript = redis.NewScript(`
local blocked = redis.call('PTTL', KEYS[2])
if blocked > 0 then
  return {-1, blocked}
end
local n = redis.call('INCR', KEYS[1])
if n == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if n > tonumber(ARGV[2]) and tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[2], '1', 'PX', ARGV[3])
  return {-1, tonumber(ARGV[3])}
end
return {n, ttl}
`)

// RedisLimiter is a fixed-window limiter shared by every replica that talks
// to the same Redis.
type RedisLimiter struct {
	client redis.Scripter
	policy Policy
	prefix string
}

// NewRedisLimiter creates a limiter storing its counters under
// "<prefix>:<policy>:...".
func NewRedisLimiter(client redis.Scripter, prefix string, policy Policy) *RedisLimiter {
	return &RedisLimiter{client: client, policy: policy, prefix: prefix}
}

// Policy returns the limiter's policy.
func (l *RedisLimiter) Policy() Policy { return l.policy }

// Allow records a hit for key and reports whether it is within budget.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	countKey := fmt.Sprintf("%s:%s:count:%s", l.prefix, l.policy.Name, key)
	blockKey := fmt.Sprintf("%s:%s:block:%s", l.prefix, l.policy.Name, key)

	vals, err := fixedWindowScript.Run(ctx, l.client,
		[]string{countKey, blockKey},
		l.policy.Window.Milliseconds(), l.policy.Points, l.policy.Block.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit %s: %w", l.policy.Name, err)
	}
	if len(vals) != 2 {
		return Result{}, fmt.Errorf("rate limit %s: unexpected script reply %v", l.policy.Name, vals)
	}

	count, ttl := vals[0], time.Duration(vals[1])*time.Millisecond
	if ttl < 0 {
		ttl = l.policy.Window
	}

	res := Result{Limit: l.policy.Points, ResetAfter: ttl}
	if count < 0 || count > int64(l.policy.Points) {
		res.RetryAfter = ttl
		return res, nil
	}
	res.Allowed = true
	res.Remaining = l.policy.Points - int(count)
	return res, nil
}
