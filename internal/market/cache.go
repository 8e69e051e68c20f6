package market

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Cache provides Redis-based caching for latest symbol prices. All methods
// are nil-safe: a nil *Cache behaves as a cache that always misses, so Redis
// stays strictly optional.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// cacheEntry is the stored representation of a cached price
type cacheEntry struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// NewCache creates a Redis-backed price cache. Returns nil if client is nil.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	if ttl == 0 {
		ttl = 60 * time.Second
	}
	return &Cache{client: client, ttl: ttl}
}

// Get retrieves a cached price. Returns (0, false) on miss or on any cache
// error; a degraded cache must never fail a read path.
func (c *Cache) Get(ctx context.Context, symbol string) (float64, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}

	cacheCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	cached, err := c.client.Get(cacheCtx, c.buildKey(symbol)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Debug().Err(err).Str("symbol", symbol).Msg("Price cache read failed")
		}
		return 0, false
	}

	var entry cacheEntry
	if err := json.Unmarshal([]byte(cached), &entry); err != nil {
		log.Debug().Err(err).Str("symbol", symbol).Msg("Price cache entry corrupt")
		return 0, false
	}

	return entry.Price, true
}

// Set stores a price with the configured TTL. Errors are logged and dropped.
func (c *Cache) Set(ctx context.Context, symbol string, price float64) {
	if c == nil || c.client == nil {
		return
	}

	cacheCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	entry := cacheEntry{
		Symbol:    symbol,
		Price:     price,
		Timestamp: time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	if err := c.client.Set(cacheCtx, c.buildKey(symbol), data, c.ttl).Err(); err != nil {
		log.Debug().Err(err).Str("symbol", symbol).Msg("Price cache write failed")
	}
}

func (c *Cache) buildKey(symbol string) string {
	return fmt.Sprintf("price:%s", symbol)
}
