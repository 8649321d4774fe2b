package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements Service using Redis.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

// RedisOption adjusts the connection of NewRedisCache.
type RedisOption func(*redis.Options, *string)

// WithRedisAddr sets the host:port of the Redis server.
func WithRedisAddr(addr string) RedisOption {
	return func(o *redis.Options, _ *string) { o.Addr = addr }
}

func WithRedisPassword(password string) RedisOption {
	return func(o *redis.Options, _ *string) { o.Password = password }
}

func WithRedisDB(db int) RedisOption {
	return func(o *redis.Options, _ *string) { o.DB = db }
}

// WithRedisPrefix namespaces every key written by the cache.
func WithRedisPrefix(prefix string) RedisOption {
	return func(_ *redis.Options, p *string) { *p = prefix }
}

// NewRedisCache connects to Redis and pings it before returning.
func NewRedisCache(opts ...RedisOption) (*RedisCache, error) {
	ro := &redis.Options{Addr: "localhost:6379"}
	prefix := "debrief"
	for _, opt := range opts {
		opt(ro, &prefix)
	}

	client := redis.NewClient(ro)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", ro.Addr, err)
	}
	return NewRedisCacheFromClient(client, prefix), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client redis.UniversalClient, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.wrapKey(key), data, expiration).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, c.wrapKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return decode(data, dest)
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Unlink(ctx, c.wrapKeys(keys...)...).Err()
}

func (c *RedisCache) wrapKey(key string) string {
	return fmt.Sprintf("%s:%s", c.prefix, key)
}

func (c *RedisCache) wrapKeys(keys ...string) []string {
	wrapped := make([]string, len(keys))
	for i, key := range keys {
		wrapped[i] = c.wrapKey(key)
	}
	return wrapped
}
