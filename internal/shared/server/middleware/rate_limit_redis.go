package middleware

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"resume-tailor/internal/shared/telemetry"
)

const redisKeyPrefix = "ratelimit:"

// tokenBucketScript refills and takes one token atomically. It returns
// {allowed, retry_after_ms}. Buckets expire once they would be full again.
var tokenBucketScript = redis.NewScript(`
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local state = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(state[1])
local ts = tonumber(state[2])
if tokens == nil then
  tokens = burst
  ts = now
end
local elapsed = math.max(0, now - ts) / 1000
tokens = math.min(burst, tokens + elapsed * rate)
local allowed = 0
local retry = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
else
  retry = math.ceil((1 - tokens) / rate * 1000)
end
redis.call("HSET", KEYS[1], "tokens", tostring(tokens), "ts", now)
redis.call("PEXPIRE", KEYS[1], math.ceil(burst / rate * 1000) + 1000)
return {allowed, retry}
`)

// RedisLimiter shares token buckets between replicas through Redis. Redis
// errors let the request through and are logged.
type RedisLimiter struct {
	client redis.Scripter
	now    func() time.Time
}

// NewRedisLimiter wraps an existing client.
func NewRedisLimiter(client redis.Scripter, now func() time.Time) *RedisLimiter {
	if now == nil {
		now = time.Now
	}
	return &RedisLimiter{client: client, now: now}
}

// NewRedisLimiterFromURL parses a redis:// URL such as
// "redis://:password@localhost:6379/0".
func NewRedisLimiterFromURL(rawURL string) (*RedisLimiter, *redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, nil, err
	}
	client := redis.NewClient(opts)
	return NewRedisLimiter(client, nil), client, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || l.client == nil {
		return true, 0
	}
	if rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0
	}
	nowMs := l.now().UnixMilli()
	res, err := tokenBucketScript.Run(ctx, l.client, []string{redisKeyPrefix + key},
		strconv.FormatFloat(rule.Rate, 'f', -1, 64), rule.Burst, nowMs).Int64Slice()
	if err != nil || len(res) != 2 {
		telemetry.Warn("rate_limit.redis.failed", map[string]any{
			"key":   key,
			"error": err,
		})
		return true, 0
	}
	if res[0] == 1 {
		return true, 0
	}
	retry := time.Duration(math.Max(float64(res[1]), 1)) * time.Millisecond
	return false, retry
}

var (
	_ Limiter = (*RateLimiter)(nil)
	_ Limiter = (*RedisLimiter)(nil)
)
