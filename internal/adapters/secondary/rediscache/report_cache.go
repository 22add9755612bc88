// Package rediscache keeps assembled report payloads warm for a short TTL so
// dashboard refreshes do not recompute the same snapshot.
package rediscache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kronos-hms/os-tracker-backend/internal/core/ports"
)

// ErrCacheMiss is returned when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Config holds the connection settings for the cache.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// ReportCache implements ports.ReportCache on a Redis client.
type ReportCache struct {
	client *redis.Client
}

// Ensure implementation matches the interface.
var _ ports.ReportCache = (*ReportCache)(nil)

// New connects to Redis. An unreachable server is logged, not fatal; the
// report service treats the cache as best effort.
func New(cfg Config, logger *slog.Logger) *ReportCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis, report caching degraded", "error", err)
	} else {
		logger.Info("connected to redis", "addr", cfg.Addr)
	}

	return &ReportCache{client: client}
}

// Get returns the cached payload for key, or ErrCacheMiss.
func (c *ReportCache) Get(ctx context.Context, key string) ([]byte, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	return payload, nil
}

// Set stores payload under key for ttl.
func (c *ReportCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, payload, ttl).Err()
}

// Close releases the client.
func (c *ReportCache) Close() error {
	return c.client.Close()
}
