package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCache is the redis-backed storage driver. Keys never expire: a cart
// lives until its session is abandoned.
type RedisCache struct {
	client redis.Cmdable
	closer func() error
}

func NewRedisCache(ctx context.Context, addr, password string, db int) (*RedisCache, error) {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		// plain "host:port"
		opts = &redis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			DialTimeout:  10 * time.Second,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		}
	}
	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client, closer: client.Close}, nil
}

// NewRedisCacheFromClient wraps an existing client, e.g. a cluster or ring client.
func NewRedisCacheFromClient(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) GetItem(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *RedisCache) SetItem(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}
