package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ViewCache is a generic JSON-backed Redis cache for read-model projections.
// Bind it to a view type T; pass ttl 0 for keys that should not expire.
type ViewCache[T any] struct {
	client *goredis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewViewCache creates a ViewCache backed by the provided Redis client.
func NewViewCache[T any](client *goredis.Client, ttl time.Duration, log *zap.Logger) *ViewCache[T] {
	return &ViewCache[T]{client: client, ttl: ttl, log: log}
}

// Get retrieves and unmarshals a value. Returns (nil, false) on any miss or
// deserialisation error; a stale or corrupt entry is treated as a miss.
func (c *ViewCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	var v T
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, false
	}
	return &v, true
}

// Set marshals value and stores it under key. Errors are logged rather than
// returned; a cache write miss is non-fatal.
func (c *ViewCache[T]) Set(ctx context.Context, key string, value *T) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("view cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("view cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete removes a key.
func (c *ViewCache[T]) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Warn("view cache delete failed", zap.String("key", key), zap.Error(err))
	}
}
