package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/piresc/ridertrack/internal/pkg/constants"
	"github.com/piresc/ridertrack/internal/pkg/database"
)

// CacheKey returns the last event cache key of a binding
func CacheKey(riderUserID, deviceID string) string {
	return fmt.Sprintf(constants.KeyLastLocationEvent, riderUserID, deviceID)
}

// RedisCache is the Redis backed LastEventCache
type RedisCache struct {
	redisClient *database.RedisClient
}

// NewRedisCache creates a new last event cache
func NewRedisCache(redisClient *database.RedisClient) *RedisCache {
	return &RedisCache{redisClient: redisClient}
}

// Get returns the cached value, nil on a miss
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.redisClient.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached event: %w", err)
	}
	return []byte(val), nil
}

// Put stores value under key for ttl
func (c *RedisCache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.redisClient.Set(ctx, key, value, ttl); err != nil {
		return fmt.Errorf("failed to cache event: %w", err)
	}
	return nil
}
