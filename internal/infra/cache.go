package infra

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores opaque JSON payloads for read-mostly lookups (product search).
// Invalidate drops every entry of a namespace at once by bumping its version.
type Cache interface {
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, namespace string) error
}

// NoopCache never hits. Used when Redis is not configured and in tests.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string, string) ([]byte, bool, error) { return nil, false, nil }
func (NoopCache) Set(context.Context, string, string, []byte, time.Duration) error {
	return nil
}
func (NoopCache) Invalidate(context.Context, string) error { return nil }

type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	k, err := c.key(ctx, namespace, key)
	if err != nil {
		return nil, false, err
	}
	val, err := c.rdb.Get(ctx, k).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	k, err := c.key(ctx, namespace, key)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, k, value, ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, namespace string) error {
	return c.rdb.Incr(ctx, versionKey(namespace)).Err()
}

func (c *RedisCache) key(ctx context.Context, namespace, key string) (string, error) {
	v, err := c.rdb.Get(ctx, versionKey(namespace)).Result()
	if err == redis.Nil {
		v = "0"
	} else if err != nil {
		return "", err
	}
	if _, err := strconv.Atoi(v); err != nil {
		v = "0"
	}
	return fmt.Sprintf("cache:%s:v%s:%s", namespace, v, key), nil
}

func versionKey(namespace string) string { return "cache:" + namespace + ":version" }
