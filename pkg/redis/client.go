package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/equityrank/pkg/config"
)

// Client wraps go-redis with an enabled flag so callers degrade to no-op
// caching instead of branching on configuration everywhere.
type Client struct {
	rdb     *redis.Client
	enabled bool
}

// New creates a Redis client from config. When Redis is disabled (or
// unreachable at startup) the returned client is a transparent no-op.
func New(cfg *config.Config) *Client {
	if !cfg.Redis.Enabled {
		return &Client{enabled: false}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return &Client{enabled: false}
	}

	return &Client{rdb: rdb, enabled: true}
}

// Enabled reports whether Redis is available.
func (c *Client) Enabled() bool {
	return c.enabled
}

// Redis exposes the underlying go-redis client. Callers must check
// Enabled() first.
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}
