package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRateLimiterAllowAcrossWindows(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)

	now := time.Unix(1_700_000_010, 0)
	l := NewRateLimiter(client, "rl:signin", 2, time.Minute)
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		ok, retry, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 50*time.Second, retry)
	}

	ok, _, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok, "third hit in the window is denied")

	ok, _, err = l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok, "other clients keep their own budget")

	key := l.key("10.0.0.1", now.Truncate(time.Minute))
	assert.Equal(t, time.Minute, mr.TTL(key))

	now = now.Add(time.Minute)
	ok, _, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok, "next window starts fresh")
}

func TestRateLimiterRedisDown(t *testing.T) {
	mr, client := newTestClient(t)
	l := NewRateLimiter(client, "rl", 1, time.Minute)
	mr.Close()

	_, _, err := l.Allow(context.Background(), "k")
	assert.Error(t, err)
}

func TestTokenLedgerConsumeOnce(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	ledger := NewTokenLedger(client)

	fresh, err := ledger.Consume(ctx, "jti-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = ledger.Consume(ctx, "jti-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Equal(t, time.Hour, mr.TTL("auth:used:jti-1"))

	require.NoError(t, ledger.Release(ctx, "jti-1"))
	fresh, err = ledger.Consume(ctx, "jti-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, fresh, "released token can be used again")
}

func TestTokenLedgerExpiry(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	ledger := NewTokenLedger(client)

	fresh, err := ledger.Consume(ctx, "jti-2", 0)
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, time.Minute, mr.TTL("auth:used:jti-2"))

	mr.FastForward(time.Minute + time.Second)
	fresh, err = ledger.Consume(ctx, "jti-2", 0)
	require.NoError(t, err)
	assert.True(t, fresh)
}
