package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV adapts a go-redis client to the KV interface.
type RedisKV struct {
	client *redis.Client
}

func NewRedisKV(addr, password string, db int) *RedisKV {
	return &RedisKV{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (r *RedisKV) SetNX(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.SetNX(ctx, key, value, ttl).Err()
}

func (r *RedisKV) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisKV) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisKV) Close() error { return r.client.Close() }
