// internal/store/cache.go
package store

import (
	"context"
	"encoding/json"
	"time"

	"assessment-engine/internal/common/logger"
	"assessment-engine/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

// Cache is the denormalized read-through projection of stored results.
// A missing entry is a miss, never an error; cache failures degrade to
// misses so the store remains the source of truth.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCache(client *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, logger: log}
}

func resultKey(userID, testType string) string {
	return "result:" + userID + ":" + testType
}

func userResultsKey(userID string) string {
	return "results:user:" + userID
}

func completionKey(userID string) string {
	return "completion:user:" + userID
}

// Get returns the cached result for (user, test type), or miss.
func (c *Cache) Get(ctx context.Context, userID, testType string) (*StoredResult, bool) {
	val, err := c.client.Get(ctx, resultKey(userID, testType)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache read failed", map[string]interface{}{
				"userId":   userID,
				"testType": testType,
				"error":    err.Error(),
			})
		}
		metrics.CacheMisses.Inc()
		return nil, false
	}

	var sr StoredResult
	if err := json.Unmarshal([]byte(val), &sr); err != nil {
		metrics.CacheMisses.Inc()
		return nil, false
	}
	metrics.CacheHits.Inc()
	return &sr, true
}

// Set repopulates the projection with the configured TTL.
func (c *Cache) Set(ctx context.Context, sr *StoredResult) {
	data, err := json.Marshal(sr)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, resultKey(sr.UserID, sr.TestType), data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{
			"userId":   sr.UserID,
			"testType": sr.TestType,
			"error":    err.Error(),
		})
	}
}

// Invalidate drops the entry for one (user, test type) pair together with
// the per-user aggregate keys that embed it.
func (c *Cache) Invalidate(ctx context.Context, userID, testType string) {
	keys := []string{
		resultKey(userID, testType),
		userResultsKey(userID),
		completionKey(userID),
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", map[string]interface{}{
			"userId":   userID,
			"testType": testType,
			"error":    err.Error(),
		})
	}
}

// InvalidateAll drops every cached result for a user. Used when any result
// changes, to cover aggregate views.
func (c *Cache) InvalidateAll(ctx context.Context, userID string, testTypes []string) {
	keys := []string{userResultsKey(userID), completionKey(userID)}
	for _, tt := range testTypes {
		keys = append(keys, resultKey(userID, tt))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
	}
}
