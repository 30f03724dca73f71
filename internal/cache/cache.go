// Package cache keeps JSON snapshots of read-heavy lists in Redis
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrMiss is returned by Get when the key is not cached
var ErrMiss = errors.New("cache miss")

// Options holds Redis connection settings
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient connects to Redis. An empty address yields a nil client and
// the cache then behaves as permanently empty.
func NewClient(ctx context.Context, opts Options) (*redis.Client, error) {
	if opts.Addr == "" {
		return nil, nil
	}

	cli := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return cli, nil
}

// Cache stores JSON values under a common key prefix
type Cache struct {
	client *redis.Client
	prefix string
}

// New creates a cache. A nil client disables caching.
func New(client *redis.Client, prefix string) *Cache {
	return &Cache{client: client, prefix: prefix}
}

// Enabled reports whether values are actually stored
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *Cache) key(k string) string {
	return c.prefix + ":" + k
}

// Get decodes the value stored under key into out
func (c *Cache) Get(ctx context.Context, key string, out any) error {
	if !c.Enabled() {
		return ErrMiss
	}

	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", key, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

// Set stores v under key for ttl
func (c *Cache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete drops the given keys
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if !c.Enabled() || len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("deleting keys: %w", err)
	}
	return nil
}

// Load returns the cached value for key, calling fn and caching its result on a miss.
// Redis failures are not fatal: the value is then loaded directly.
func Load[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var v T
	if err := c.Get(ctx, key, &v); err == nil {
		return v, nil
	}

	v, err := fn(ctx)
	if err != nil {
		return v, err
	}
	_ = c.Set(ctx, key, v, ttl)
	return v, nil
}
