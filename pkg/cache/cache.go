package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"travelnosql/pkg/logger"
)

// Cache is a small JSON read-through cache on redis. A nil *Cache (or an
// empty address at construction) disables caching entirely, so callers
// never have to branch on configuration.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

// New returns a cache backed by the redis instance at addr, or nil when
// addr is empty.
func New(addr string, ttl time.Duration, log logger.Logger) *Cache {
	if addr == "" {
		return nil
	}
	return &Cache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
		log:    log,
	}
}

// Get unmarshals the cached value for key into dest. It reports false on a
// miss; redis failures are logged and treated as misses.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.log.Warn("cache entry corrupt, ignoring", "key", key, "error", err)
		return false
	}
	return true
}

// Set stores v under key for the configured TTL. Failures are logged and
// swallowed; the cache is best effort.
func (c *Cache) Set(ctx context.Context, key string, v interface{}) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("cache value not serializable", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", "key", key, "error", err)
	}
}

// Close releases the redis connection. Safe on a nil cache.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
