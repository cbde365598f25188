// Package cache provides the Redis-backed fast cache that sits in front of
// a durable idempotency store. It is purely an accelerator: a miss or a
// transport error always falls through to the durable store, never to a
// fresh attempt at the underlying effect.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the minimal client surface RedisCache depends on.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd
}

// RedisCache stores one string key per (service, idempotency key), scoped by
// a keyPrefix so Inventory and Payment never collide in a shared Redis.
type RedisCache struct {
	client    RedisClient
	keyPrefix string
}

func NewRedisCache(client RedisClient, keyPrefix string) *RedisCache {
	return &RedisCache{client: client, keyPrefix: keyPrefix}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, r.keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.keyPrefix+key, value, ttl).Err()
}
