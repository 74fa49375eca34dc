package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ResponseCache holds rendered dashboard payloads in Redis for a short
// TTL. A nil client disables caching entirely; every lookup misses.
type ResponseCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

// NewResponseCache creates a cache around an existing Redis client.
func NewResponseCache(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *ResponseCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &ResponseCache{rdb: rdb, ttl: ttl, log: log}
}

// Get returns the cached payload for a key, if present. Redis errors are
// treated as misses; the cache never blocks an aggregation.
func (c *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Debug("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

// Set stores a payload under a key with the configured TTL, best effort.
func (c *ResponseCache) Set(ctx context.Context, key string, payload []byte) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.log.Debug("cache set failed", zap.String("key", key), zap.Error(err))
	}
}
