// Package cache provides a small Redis-backed JSON cache for the
// public trip catalog. When no Redis server is reachable the cache is
// disabled and every call degrades to a miss.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/trekkingar/trekkingar-api/internal/config"
)

const keyPrefix = "catalog:"

// NewRedisClient instantiates a Redis client from the configuration.
// The returned client may be nil if a connection cannot be established;
// callers should degrade gracefully.
func NewRedisClient(cfg *config.Config) *redis.Client {
	addr := cfg.RedisAddr
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}

type Catalog struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalog builds the catalog cache. A nil client disables it.
func NewCatalog(client *redis.Client, ttl time.Duration) *Catalog {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Catalog{client: client, ttl: ttl}
}

// Get loads a cached value into dest, reporting whether it was found.
func (c *Catalog) Get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.client == nil {
		return false
	}
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

// Set stores a value under key for the configured TTL. Errors are
// swallowed; the cache is best-effort.
func (c *Catalog) Set(ctx context.Context, key string, value any) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.client.Set(ctx, keyPrefix+key, data, c.ttl)
}

// Invalidate drops cached entries after admin writes to the catalog.
func (c *Catalog) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil {
		return
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = keyPrefix + k
	}
	c.client.Del(ctx, prefixed...)
}
