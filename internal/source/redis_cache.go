package source

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache keeps fetched bodies in Redis so several marker processes can
// share them. Keys are prefix + sha1(uri).
type RedisCache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a cache on client. A zero ttl stores entries without
// expiry.
func NewRedisCache(client redis.Cmdable, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "imagemarker:fetch:"
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

// Key returns the Redis key used for uri.
func (c *RedisCache) Key(uri string) string {
	sum := sha1.Sum([]byte(uri))
	return c.prefix + hex.EncodeToString(sum[:])
}

// Get returns the cached body for uri.
func (c *RedisCache) Get(ctx context.Context, uri string) ([]byte, bool, error) {
	body, err := c.client.Get(ctx, c.Key(uri)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return body, true, nil
}

// Set stores body for uri with the cache TTL.
func (c *RedisCache) Set(ctx context.Context, uri string, body []byte) error {
	if err := c.client.Set(ctx, c.Key(uri), body, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
