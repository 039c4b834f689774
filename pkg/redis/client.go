package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/scout/pkg/config"
)

// Client wraps the Redis connection shared by the scan-result cache and the
// Naver feed rate limiter.
// ⭐ SSOT: Redis 연결은 여기서만 관리
//
// Redis is optional: with REDIS_ENABLED=false every helper in this package
// becomes a no-op, the scanner keeps only its in-memory caches, and the
// Naver fallback runs without a cross-process request budget.
type Client struct {
	rdb     *redis.Client
	enabled bool
}

// New connects to Redis, or returns a disabled no-op client when Redis is
// turned off in config.
func New(cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return &Client{enabled: false}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// 기동 시 연결 확인 — 스캔 도중이 아니라 여기서 실패해야 한다
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Client{
		rdb:     rdb,
		enabled: true,
	}, nil
}

// Close closes the Redis connection. Safe on a disabled client.
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Enabled reports whether a live connection is behind this client.
func (c *Client) Enabled() bool {
	return c.enabled
}

// Redis exposes the underlying client for the cache and rate-limiter
// helpers in this package.
func (c *Client) Redis() *redis.Client {
	return c.rdb
}
