package permissions

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*TTLCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTTLCache(client, ttl), mr
}

func TestTTLCacheMiss(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)

	var dest string
	found, stale, err := cache.Get(context.Background(), "missing", &dest)
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, stale)
}

func TestTTLCacheFreshHit(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "greeting", "hello"))

	var dest string
	found, stale, err := cache.Get(ctx, "greeting", &dest)
	require.NoError(t, err)
	assert.True(t, found)
	assert.False(t, stale)
	assert.Equal(t, "hello", dest)
}

func TestTTLCacheFlagsStaleEntries(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	base := time.Now()
	cache.now = func() time.Time { return base }
	require.NoError(t, cache.Set(ctx, "greeting", "hello"))

	cache.now = func() time.Time { return base.Add(90 * time.Second) }
	var dest string
	found, stale, err := cache.Get(ctx, "greeting", &dest)
	require.NoError(t, err)
	assert.True(t, found, "entry past the TTL should still be served")
	assert.True(t, stale)
	assert.Equal(t, "hello", dest)
}

func TestTTLCacheEvictsAfterTwiceTTL(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "greeting", "hello"))
	mr.FastForward(2*time.Minute + time.Second)

	var dest string
	found, _, err := cache.Get(ctx, "greeting", &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTTLCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", 1))
	require.NoError(t, cache.Set(ctx, "b", 2))
	require.NoError(t, cache.Invalidate(ctx, "a", "b"))

	var dest int
	found, _, err := cache.Get(ctx, "a", &dest)
	require.NoError(t, err)
	assert.False(t, found)
}
