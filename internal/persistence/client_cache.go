package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/health-info-service/internal/domain"
)

const clientCacheTTL = 60 * time.Second

// ClientCache is a read-through Redis cache for the public client
// projection. All failures degrade to a cache miss.
type ClientCache struct {
	redis *Redis
}

// NewClientCache wraps the shared Redis handle.
func NewClientCache(r *Redis) *ClientCache {
	return &ClientCache{redis: r}
}

// Get returns the cached client, or nil on a miss.
func (c *ClientCache) Get(ctx context.Context, id string) (*domain.ClientWithEnrollments, error) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return nil, nil
	}
	payload, err := c.redis.Client.Get(ctx, clientCacheKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var client domain.ClientWithEnrollments
	if err := json.Unmarshal(payload, &client); err != nil {
		return nil, err
	}
	return &client, nil
}

// Set stores the client projection with a short TTL.
func (c *ClientCache) Set(ctx context.Context, client *domain.ClientWithEnrollments) error {
	if c == nil || c.redis == nil || c.redis.Client == nil || client == nil {
		return nil
	}
	payload, err := json.Marshal(client)
	if err != nil {
		return err
	}
	return c.redis.Client.Set(ctx, clientCacheKey(client.ID), payload, clientCacheTTL).Err()
}

// Invalidate drops the cached entry after a write.
func (c *ClientCache) Invalidate(ctx context.Context, id string) error {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return nil
	}
	return c.redis.Client.Del(ctx, clientCacheKey(id)).Err()
}

func clientCacheKey(id string) string {
	return "client:" + id
}
