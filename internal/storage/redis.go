package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/mockhub/mockhub-console/internal/appconfig"
	"github.com/redis/go-redis/v9"
)

// RedisStorage shares a session between machines through redis. Keys are
// namespaced with the configured prefix.
type RedisStorage struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStorage creates and pings a redis client.
func NewRedisStorage(ctx context.Context, cfg appconfig.RedisConfig) (*RedisStorage, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not reach redis: %w", err)
	}
	return &RedisStorage{rdb: rdb, prefix: cfg.Prefix}, nil
}

func (r *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.rdb.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return val, true, nil
}

func (r *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := r.rdb.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (r *RedisStorage) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, r.prefix+k)
	}
	if err := r.rdb.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("failed to remove keys: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	return r.rdb.Close()
}
