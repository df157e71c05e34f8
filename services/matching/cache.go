package matching

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"smartfix/models"

	"github.com/go-redis/redis/v8"
)

// Cache stores ranked results for a short time.
type Cache interface {
	Get(ctx context.Context, key string) ([]models.MatchedProvider, bool, error)
	Set(ctx context.Context, key string, providers []models.MatchedProvider, ttl time.Duration) error
}

// RedisCache keeps results as JSON strings in Redis.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]models.MatchedProvider, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var providers []models.MatchedProvider
	if err := json.Unmarshal(raw, &providers); err != nil {
		return nil, false, err
	}
	return providers, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, providers []models.MatchedProvider, ttl time.Duration) error {
	raw, err := json.Marshal(providers)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}
