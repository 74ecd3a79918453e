package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs. Revision history changes on every save, so list data is kept
// only briefly; stats tolerate slightly longer staleness.
const (
	TTLRevisionList = 30 * time.Second
	TTLStats        = 1 * time.Minute
	TTLDefault      = 5 * time.Minute
)

// Cache key prefixes
const (
	PrefixRevisions = "revisions:"
	PrefixStats     = "revstats:"
)

// ErrCacheMiss is returned when a key is absent
var ErrCacheMiss = errors.New("cache miss")

// RevisionListKey builds the cache key for an entity's revision list
func RevisionListKey(entityType string, entityID uint64, limit int) string {
	return fmt.Sprintf("%s%s:%d:%d", PrefixRevisions, entityType, entityID, limit)
}

// StatsKey builds the cache key for an entity's revision stats
func StatsKey(entityType string, entityID uint64) string {
	return fmt.Sprintf("%s%s:%d", PrefixStats, entityType, entityID)
}

// Service is a JSON-over-Redis cache
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// InvalidateEntity drops all cached revision data for one entity
	InvalidateEntity(ctx context.Context, entityType string, entityID uint64) error
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a Redis-backed cache service
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = TTLDefault
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) InvalidateEntity(ctx context.Context, entityType string, entityID uint64) error {
	patterns := []string{
		fmt.Sprintf("%s%s:%d:*", PrefixRevisions, entityType, entityID),
		fmt.Sprintf("%s%s:%d", PrefixStats, entityType, entityID),
	}
	for _, pattern := range patterns {
		iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
	}
	return nil
}
