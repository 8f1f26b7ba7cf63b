package infra

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis when REDIS_ADDR is configured. Returns
// (nil, nil) when the address is empty: the cross-instance settings channel
// is optional and single-instance deployments run without it.
func NewRedisClient(ctx context.Context, cfg *Config) (*goredis.Client, error) {
	if cfg == nil || cfg.RedisAddr == "" {
		return nil, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.RedisAddr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}
