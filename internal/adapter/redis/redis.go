package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/sm8ta/patient_records/internal/core/ports"
)

// RedisAdapter keeps session keys in redis under a common prefix. Keys do
// not expire; the session lives until logout.
type RedisAdapter struct {
	client redis.Cmdable
	prefix string
}

func NewRedisAdapter(client redis.Cmdable, prefix string) ports.KeyValueStore {
	return &RedisAdapter{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *RedisAdapter) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *RedisAdapter) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

var _ ports.KeyValueStore = (*RedisAdapter)(nil)
