package middleware

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLimiterNilPassesThrough(t *testing.T) {
	var l *RedisLimiter
	ok, wait := l.Allow(context.Background(), "k", RateLimitRule{Rate: 1, Burst: 1})
	assert.True(t, ok)
	assert.Zero(t, wait)
}

func TestRedisLimiterFromURLRejectsBadURL(t *testing.T) {
	_, _, err := NewRedisLimiterFromURL("not-a-redis-url")
	assert.Error(t, err)
}

func TestRedisLimiterFailsOpenWhenUnreachable(t *testing.T) {
	l, client, err := NewRedisLimiterFromURL("redis://127.0.0.1:1/0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ok, _ := l.Allow(ctx, "k", RateLimitRule{Rate: 1, Burst: 1})
	assert.True(t, ok)
}

// Runs against a real server when REDIS_URL is set.
func TestRedisLimiterTokenBucket(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	now := time.Now()
	l, client, err := NewRedisLimiterFromURL(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	l.now = func() time.Time { return now }

	key := "test-" + uuid.NewString()
	rule := RateLimitRule{Rate: 1, Burst: 2}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _ := l.Allow(ctx, key, rule)
		require.True(t, ok)
	}
	ok, wait := l.Allow(ctx, key, rule)
	assert.False(t, ok)
	assert.Equal(t, time.Second, wait)

	now = now.Add(time.Second)
	ok, _ = l.Allow(ctx, key, rule)
	assert.True(t, ok)
}
