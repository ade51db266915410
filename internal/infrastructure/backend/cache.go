package backend

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ListCache keeps short-lived copies of public collections in Redis.
// A nil *ListCache or nil client disables caching.
type ListCache struct {
	RDB    *redis.Client
	TTL    time.Duration
	Logger *logrus.Logger
}

func NewListCache(rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *ListCache {
	return &ListCache{RDB: rdb, TTL: ttl, Logger: logger}
}

func (c *ListCache) enabled() bool {
	return c != nil && c.RDB != nil && c.TTL > 0
}

func cacheKey(name string) string { return "hobbyhub:list:" + name }

func (c *ListCache) warn(err error, name, msg string) {
	if c.Logger != nil {
		c.Logger.WithError(err).WithField("key", cacheKey(name)).Warn(msg)
	}
}

func loadCached[T any](ctx context.Context, c *ListCache, name string) ([]T, bool) {
	if !c.enabled() {
		return nil, false
	}
	raw, err := c.RDB.Get(ctx, cacheKey(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.warn(err, name, "list cache read failed")
		return nil, false
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		c.warn(err, name, "list cache entry unreadable")
		return nil, false
	}
	return items, true
}

func storeCached[T any](ctx context.Context, c *ListCache, name string, items []T) {
	if !c.enabled() {
		return
	}
	b, err := json.Marshal(items)
	if err == nil {
		err = c.RDB.Set(ctx, cacheKey(name), b, c.TTL).Err()
	}
	if err != nil {
		c.warn(err, name, "list cache write failed")
	}
}

// Invalidate drops a cached collection after a write.
func (c *ListCache) Invalidate(ctx context.Context, name string) {
	if !c.enabled() {
		return
	}
	if err := c.RDB.Del(ctx, cacheKey(name)).Err(); err != nil {
		c.warn(err, name, "list cache invalidate failed")
	}
}
