package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryItem stores an encoded value with expiration.
type MemoryItem struct {
	Value    []byte
	ExpireAt time.Time
}

// IsExpired checks if item has expired.
func (m *MemoryItem) IsExpired(now time.Time) bool {
	return now.After(m.ExpireAt)
}

// MemoryCache implements Service using in-memory storage with LRU eviction.
type MemoryCache struct {
	data          map[string]*MemoryItem
	access        map[string]time.Time
	mutex         sync.Mutex
	maxSize       int
	cleanupTicker *time.Ticker
	done          chan struct{}
	closeOnce     sync.Once
	now           func() time.Time
}

const (
	defaultMemorySize = 1000
	cleanupInterval   = time.Minute
)

// MemoryOption configures a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithMemoryMaxSize bounds the number of keys; the least recently used key
// is evicted on insert at capacity.
func WithMemoryMaxSize(size int) MemoryOption {
	return func(mc *MemoryCache) {
		if size > 0 {
			mc.maxSize = size
		}
	}
}

// NewMemoryCache creates an in-memory cache with a background sweep of expired keys.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	mc := &MemoryCache{
		data:    make(map[string]*MemoryItem),
		access:  make(map[string]time.Time),
		maxSize: defaultMemorySize,
		done:    make(chan struct{}),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(mc)
	}
	mc.cleanupTicker = time.NewTicker(cleanupInterval)

	go mc.cleanupExpired()
	return mc
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}

	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	now := mc.now()
	if _, exists := mc.data[key]; !exists && len(mc.data) >= mc.maxSize {
		mc.evictLRU()
	}

	expireAt := now.Add(expiration)
	if expiration <= 0 {
		expireAt = now.Add(7 * 24 * time.Hour) // default 7 days
	}

	mc.data[key] = &MemoryItem{
		Value:    data,
		ExpireAt: expireAt,
	}
	mc.access[key] = now
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	mc.mutex.Lock()
	now := mc.now()
	item, exists := mc.data[key]
	if !exists || item.IsExpired(now) {
		if exists {
			delete(mc.data, key)
			delete(mc.access, key)
		}
		mc.mutex.Unlock()
		return ErrCacheMiss
	}
	mc.access[key] = now
	data := item.Value
	mc.mutex.Unlock()

	return decode(data, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	for _, key := range keys {
		delete(mc.data, key)
		delete(mc.access, key)
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (mc *MemoryCache) Len() int {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()
	return len(mc.data)
}

func (mc *MemoryCache) evictLRU() {
	if len(mc.data) == 0 {
		return
	}

	var oldestKey string
	var oldestTime time.Time

	for key, accessTime := range mc.access {
		if oldestKey == "" || accessTime.Before(oldestTime) {
			oldestTime = accessTime
			oldestKey = key
		}
	}

	if oldestKey != "" {
		delete(mc.data, oldestKey)
		delete(mc.access, oldestKey)
	}
}

func (mc *MemoryCache) cleanupExpired() {
	for {
		select {
		case <-mc.done:
			return
		case <-mc.cleanupTicker.C:
		}

		mc.mutex.Lock()
		now := mc.now()
		for key, item := range mc.data {
			if item.IsExpired(now) {
				delete(mc.data, key)
				delete(mc.access, key)
			}
		}
		mc.mutex.Unlock()
	}
}

// Close stops the cleanup loop.
func (mc *MemoryCache) Close() error {
	mc.closeOnce.Do(func() {
		mc.cleanupTicker.Stop()
		close(mc.done)
	})
	return nil
}
