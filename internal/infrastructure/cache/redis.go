package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ContentDigest/internal/domain"
	"ContentDigest/internal/ports"
)

const keyPrefix = "contentdigest:classification:"

// RedisCache stores classification results keyed by page URL. Repeated runs
// over the same inbox skip the detection fetches entirely.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.ClassificationCache = (*RedisCache)(nil)

// NewRedisCache connects to Redis and verifies it responds.
func NewRedisCache(addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

// Get returns the cached classification or (nil, nil) on a miss.
func (c *RedisCache) Get(ctx context.Context, pageURL string) (*domain.ContentClassification, error) {
	data, err := c.client.Get(ctx, keyPrefix+pageURL).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var classification domain.ContentClassification
	if err := json.Unmarshal(data, &classification); err != nil {
		return nil, fmt.Errorf("decode cached classification: %w", err)
	}
	return &classification, nil
}

// Set stores the classification for the configured TTL.
func (c *RedisCache) Set(ctx context.Context, pageURL string, classification domain.ContentClassification) error {
	data, err := json.Marshal(classification)
	if err != nil {
		return fmt.Errorf("encode classification: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+pageURL, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
