package market

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCache(client, ttl), mr
}

func TestCacheSetGet(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, ok := cache.Get(ctx, "AAPL")
	assert.False(t, ok)

	cache.Set(ctx, "AAPL", 189.5)

	price, ok := cache.Get(ctx, "AAPL")
	require.True(t, ok)
	assert.Equal(t, 189.5, price)
}

func TestCacheKeysAreSymbolScoped(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	cache.Set(ctx, "AAPL", 189.5)
	cache.Set(ctx, "MSFT", 415.0)

	assert.True(t, mr.Exists("price:AAPL"))
	assert.True(t, mr.Exists("price:MSFT"))

	price, ok := cache.Get(ctx, "MSFT")
	require.True(t, ok)
	assert.Equal(t, 415.0, price)
}

func TestCacheExpiry(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	cache.Set(ctx, "AAPL", 189.5)
	mr.FastForward(2 * time.Minute)

	_, ok := cache.Get(ctx, "AAPL")
	assert.False(t, ok)
}

func TestCacheCorruptEntryIsAMiss(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)

	require.NoError(t, mr.Set("price:AAPL", "not json"))

	_, ok := cache.Get(context.Background(), "AAPL")
	assert.False(t, ok)
}

// A nil cache must be fully usable: every method is a no-op.
func TestNilCacheIsSafe(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	cache.Set(ctx, "AAPL", 189.5)
	_, ok := cache.Get(ctx, "AAPL")
	assert.False(t, ok)

	assert.Nil(t, NewCache(nil, time.Minute))
}

func TestCacheUnreachableRedisIsAMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := NewCache(client, time.Minute)

	mr.Close()

	cache.Set(context.Background(), "AAPL", 189.5)
	_, ok := cache.Get(context.Background(), "AAPL")
	assert.False(t, ok)
}
