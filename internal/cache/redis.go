package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cutmatch/cutmatch-api/internal/config"
)

// PostCountTTL bounds how stale a cached post count may get when an
// invalidation is missed.
const PostCountTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// KeyForRateLimit generates the counter key of a client for the window
// starting at windowStart.
func (c *RedisCache) KeyForRateLimit(clientIP string, windowStart time.Time) string {
	return fmt.Sprintf("ratelimit:%s:%d", clientIP, windowStart.Unix())
}

// Hit increments a fixed-window counter and returns the new count.
//
// Behavior:
//   - The first hit of a window sets the key TTL to window.
//   - Later hits only increment; the key expires with the window.
//
// Example:
//
//	n, _ := c.Hit(ctx, c.KeyForRateLimit("10.0.0.1", start), 15*time.Minute)
func (c *RedisCache) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := c.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := c.Client.Expire(ctx, key, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

// KeyForPostCount generates Redis key for a user's post count
func (c *RedisCache) KeyForPostCount(userID string) string {
	return fmt.Sprintf("posts:count:%s", userID)
}

func (c *RedisCache) UpdatePostCount(ctx context.Context, userID string, count int64) error {
	// Always refresh TTL when updating
	return c.Client.Set(ctx, c.KeyForPostCount(userID), count, PostCountTTL).Err()
}

// GetPostCount returns the cached post count. found is false on a cache miss.
func (c *RedisCache) GetPostCount(ctx context.Context, userID string) (count int64, found bool, err error) {
	key := c.KeyForPostCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, PostCountTTL).Err()
	count, err = strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

// InvalidatePostCount drops the cached count after a post is created or deleted.
func (c *RedisCache) InvalidatePostCount(ctx context.Context, userID string) error {
	return c.Del(ctx, c.KeyForPostCount(userID))
}
