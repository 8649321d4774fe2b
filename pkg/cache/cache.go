package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service defines cache operations interface. Values are stored as JSON.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// GetOrLoad returns the cached value under key, or calls load and caches its
// result for ttl. Cache errors other than a miss are ignored; load errors are
// returned and nothing is cached.
func GetOrLoad[T any](ctx context.Context, c Service, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var v T
	if err := c.Get(ctx, key, &v); err == nil {
		return v, nil
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	_ = c.Set(ctx, key, v, ttl)
	return v, nil
}

func encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return json.Marshal(value)
	}
}

func decode(data []byte, dest interface{}) error {
	switch d := dest.(type) {
	case *[]byte:
		*d = append((*d)[:0], data...)
		return nil
	case *string:
		*d = string(data)
		return nil
	default:
		return json.Unmarshal(data, dest)
	}
}
