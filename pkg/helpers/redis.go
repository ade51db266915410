package helpers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ConnectRedis returns a client for the list cache and rate limiter, or nil when
// addr is empty or the server does not answer a ping. Both features run
// without Redis, so an unreachable server only produces a warning.
func ConnectRedis(ctx context.Context, addr, password string, db int, logger *logrus.Logger) *redis.Client {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
		PoolSize:     20,
	})
	c, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(c).Err(); err != nil {
		if logger != nil {
			logger.WithError(err).WithField("addr", addr).Warn("redis unreachable; list cache and rate limits disabled")
		}
		_ = rdb.Close()
		return nil
	}
	return rdb
}
