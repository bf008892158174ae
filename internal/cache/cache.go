// Package cache provides the lookup cache used by upstream API clients.
package cache

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wagiedev/mcp-apps-go/internal/config"
	"github.com/wagiedev/mcp-apps-go/internal/errors"
)

// Cache stores string values with a time-to-live.
// Get returns errors.ErrCacheMiss for absent keys.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Compile-time verification that both implementations satisfy Cache.
var (
	_ Cache = (*Redis)(nil)
	_ Cache = Nop{}
)

// Nop never stores anything; every Get is a miss.
type Nop struct{}

// Get implements Cache.
func (Nop) Get(context.Context, string) (string, error) { return "", errors.ErrCacheMiss }

// Set implements Cache.
func (Nop) Set(context.Context, string, string, time.Duration) error { return nil }

// Redis is a Cache backed by a Redis server.
type Redis struct {
	client     *redis.Client
	defaultTTL time.Duration
	log        *slog.Logger
}

// NewRedis connects to the configured Redis server and verifies it with PING.
func NewRedis(ctx context.Context, cfg config.CacheConfig, log *slog.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	r := &Redis{
		client:     client,
		defaultTTL: cfg.TTL,
		log:        log.With("component", "cache"),
	}

	r.log.Info("Cache connected", "addr", cfg.Addr, "db", cfg.DB)

	return r, nil
}

// Get implements Cache.
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if stderrors.Is(err, redis.Nil) {
		return "", errors.ErrCacheMiss
	}

	if err != nil {
		r.log.Warn("Cache get failed", "key", key, "error", err)
		return "", fmt.Errorf("cache get failed: %w", err)
	}

	return val, nil
}

// Set implements Cache. A zero ttl uses the configured default.
func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl == 0 {
		ttl = r.defaultTTL
	}

	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.log.Warn("Cache set failed", "key", key, "error", err)
		return fmt.Errorf("cache set failed: %w", err)
	}

	return nil
}

// Close releases the Redis connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

// GetJSON reads key from c and decodes it into dest.
func GetJSON(ctx context.Context, c Cache, key string, dest any) error {
	val, err := c.Get(ctx, key)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return nil
}

// SetJSON encodes value and stores it in c under key.
func SetJSON(ctx context.Context, c Cache, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return c.Set(ctx, key, string(data), ttl)
}
