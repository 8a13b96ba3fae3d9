package cache

import (
	"context"
	"errors"
	"time"

	"meeting-scheduler/internal/infra"
	"meeting-scheduler/internal/usecase/slotlock"

	"github.com/redis/go-redis/v9"
)

// RedisCache backs the slot lock with single-key atomic commands.
type RedisCache struct {
	client redis.Cmdable
}

func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

var _ slotlock.Cache = (*RedisCache)(nil)

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, infra.WrapRepoErr("redis GET "+key, err, infra.KindCacheFailure)
	}
	return val, true, nil
}

func (c *RedisCache) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, infra.WrapRepoErr("redis SETNX "+key, err, infra.KindCacheFailure)
	}
	return ok, nil
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return infra.WrapRepoErr("redis DEL", err, infra.KindCacheFailure)
	}
	return nil
}
