// internal/widget/cache.go
package widget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"campus-notifier/internal/common/config"
)

// Cache keys written by the app.
const (
	KeyBusRealtime        = "bus_realtime"
	KeyWeeklyFullSchedule = "weekly_full_schedule"
	KeyTodaySchedule      = "today_schedule"
)

// Cache is the key-value store widget blobs are read from. A missing key is
// "", nil.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
}

// RedisCache mirrors the device widget store in Redis for previews.
type RedisCache struct {
	Client *redis.Client
}

func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     4,
	})
	return &RedisCache{Client: rdb}
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{Client: client}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

// Set stores a blob without expiry, matching the device store.
func (c *RedisCache) Set(ctx context.Context, key, value string) error {
	return c.Client.Set(ctx, key, value, 0).Err()
}

func (c *RedisCache) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// MapCache is a fixed in-memory cache.
type MapCache map[string]string

func (m MapCache) Get(_ context.Context, key string) (string, error) {
	return m[key], nil
}
