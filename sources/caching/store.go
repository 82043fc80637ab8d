package caching

import (
	"context"
	"errors"
	"time"

	"fitcoach/sources/platform"

	"github.com/redis/go-redis/v9"
)

// Store is the raw key/value backend of the response cache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (x *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := platform.ContextTimeout(ctx)
	defer cancel()

	value, err := x.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (x *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := platform.ContextTimeout(ctx)
	defer cancel()

	return x.client.Set(ctx, key, value, ttl).Err()
}
