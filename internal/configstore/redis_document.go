package configstore

import (
	"context"
	"errors"

	"DeBrief/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

// RedisDocument keeps the configuration blob under a single Redis key.
type RedisDocument struct {
	client redis.UniversalClient
	key    string
}

func NewRedisDocument(client redis.UniversalClient, key string) *RedisDocument {
	return &RedisDocument{client: client, key: key}
}

func (d *RedisDocument) Name() string { return "redis" }

func (d *RedisDocument) Get(ctx context.Context) ([]byte, error) {
	b, err := d.client.Get(ctx, d.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrDocumentNotFound
	}
	if err != nil {
		return nil, repository.Unavailable("redis", err)
	}
	return b, nil
}

func (d *RedisDocument) Put(ctx context.Context, doc []byte) error {
	if err := d.client.Set(ctx, d.key, doc, 0).Err(); err != nil {
		return repository.Unavailable("redis", err)
	}
	return nil
}
