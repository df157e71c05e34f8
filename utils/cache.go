package utils

import (
	"context"
	"fmt"
	"time"

	"smartfix/config"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient connects to the given logical database and pings it.
func NewRedisClient(ctx context.Context, cfg config.Config, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis db %d: %w", db, err)
	}
	return client, nil
}

// NewCacheClient returns the client for general caching (matching results).
func NewCacheClient(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	return NewRedisClient(ctx, cfg, cfg.RedisCacheDB)
}

// NewAuthCacheClient returns the client dedicated to authorization caching.
func NewAuthCacheClient(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	return NewRedisClient(ctx, cfg, cfg.RedisAuthDB)
}
