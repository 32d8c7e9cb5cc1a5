// Package cache keeps derived report results in Redis. Keys embed a global
// version; bumping the version invalidates every cached entry at once.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const versionKey = "worktime:cache:version"

// Cache wraps a Redis client. A nil *Cache, or one without a client, calls the
// loader every time.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New builds a cache. A nil logger discards Redis read and write failures.
func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// Connect dials addr and pings it.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	return client, nil
}

// Version returns the current cache version, initialising it when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, versionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey joins parts and appends the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("worktime:%s:v%d", joined, ver), nil
}

// FetchJSON decodes the cached value at key into dest, populating it from
// loader on a miss. Redis failures are logged and the loader's value is used.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	enabled := c != nil && c.client != nil
	if enabled {
		payload, err := c.client.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			if err := json.Unmarshal(payload, dest); err == nil {
				return nil
			}
			c.logger.Warn("cache entry unreadable", slog.String("key", key))
		case !errors.Is(err, redis.Nil):
			c.logger.Warn("cache read failed", slog.String("key", key), slog.Any("error", err))
		}
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if enabled {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("cache write failed", slog.String("key", key), slog.Any("error", err))
		}
	}
	return json.Unmarshal(raw, dest)
}

// Invalidate bumps the version so later lookups miss.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, versionKey).Err()
}
