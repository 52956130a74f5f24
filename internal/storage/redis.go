package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisKV stores values as plain redis strings under a namespace prefix.
type RedisKV struct {
	client    *redis.Client
	namespace string
}

func NewRedisKV(client *redis.Client, namespace string) *RedisKV {
	return &RedisKV{client: client, namespace: namespace}
}

func (r *RedisKV) formatKey(key string) string {
	if r.namespace == "" {
		return key
	}
	return r.namespace + ":" + key
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	value, err := r.client.Get(ctx, r.formatKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return r.client.Set(ctx, r.formatKey(key), value, 0).Err()
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return r.client.Del(ctx, r.formatKey(key)).Err()
}
