package cache

import (
	"context"
	"time"
)

// LayeredCache implements two-level cache (L1: Memory, L2: usually Redis).
type LayeredCache struct {
	memCache *MemoryCache
	remote   Service
	l1TTL    time.Duration
	l1Size   int
}

// LayeredOption configures a LayeredCache.
type LayeredOption func(*LayeredCache)

// WithLayeredMemorySize bounds the L1 key count.
func WithLayeredMemorySize(size int) LayeredOption {
	return func(lc *LayeredCache) { lc.l1Size = size }
}

// WithLayeredL1TTL sets how long a value promoted from remote stays in memory.
func WithLayeredL1TTL(ttl time.Duration) LayeredOption {
	return func(lc *LayeredCache) {
		if ttl > 0 {
			lc.l1TTL = ttl
		}
	}
}

// NewLayeredCache puts a memory cache in front of remote.
func NewLayeredCache(remote Service, opts ...LayeredOption) *LayeredCache {
	lc := &LayeredCache{remote: remote, l1Size: defaultMemorySize, l1TTL: 5 * time.Second}
	for _, opt := range opts {
		opt(lc)
	}
	lc.memCache = NewMemoryCache(WithMemoryMaxSize(lc.l1Size))
	return lc
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	// Write-through: remote first, then memory
	if err := lc.remote.Set(ctx, key, value, expiration); err != nil {
		return err
	}
	_ = lc.memCache.Set(ctx, key, value, lc.ttlFor(expiration))
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := lc.memCache.Get(ctx, key, dest); err == nil {
		return nil
	}

	var raw []byte
	if err := lc.remote.Get(ctx, key, &raw); err != nil {
		return err
	}
	_ = lc.memCache.Set(ctx, key, raw, lc.l1TTL)
	return decode(raw, dest)
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.memCache.Delete(ctx, keys...)
	return lc.remote.Delete(ctx, keys...)
}

func (lc *LayeredCache) ttlFor(expiration time.Duration) time.Duration {
	if expiration > 0 && expiration < lc.l1TTL {
		return expiration
	}
	return lc.l1TTL
}

// Close closes both cache layers.
func (lc *LayeredCache) Close() error {
	_ = lc.memCache.Close()
	return lc.remote.Close()
}
