package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/copasapp/copas-api/internal/config"
)

// MatchCountTTL is how long cached match totals live without a refresh.
const MatchCountTTL = time.Hour

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

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}

// KeyForMatchCount generates the Redis key for a match total, one key per
// viewed-filter variant (nil means unfiltered).
func (c *RedisCache) KeyForMatchCount(viewed *bool) string {
	if viewed == nil {
		return "matches:count:all"
	}
	return "matches:count:viewed:" + strconv.FormatBool(*viewed)
}

// GetMatchCount returns the cached total for the given filter.
// A cache miss is reported as found=false, not an error.
func (c *RedisCache) GetMatchCount(ctx context.Context, viewed *bool) (int64, bool, error) {
	key := c.KeyForMatchCount(viewed)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, MatchCountTTL).Err()
	return n, true, nil
}

// UpdateMatchCount stores a fresh total with TTL.
func (c *RedisCache) UpdateMatchCount(ctx context.Context, viewed *bool, count int64) error {
	return c.Client.Set(ctx, c.KeyForMatchCount(viewed), count, MatchCountTTL).Err()
}

// InvalidateMatchCounts drops every cached total variant. Called when a
// match is created or its viewed flag changes.
func (c *RedisCache) InvalidateMatchCounts(ctx context.Context) error {
	t, f := true, false
	return c.Del(ctx,
		c.KeyForMatchCount(nil),
		c.KeyForMatchCount(&t),
		c.KeyForMatchCount(&f),
	)
}
