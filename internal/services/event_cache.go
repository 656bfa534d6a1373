package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nightmarket/models"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache: miss")

type EventCache interface {
	// Get returns ErrCacheMiss when the event is not cached.
	Get(ctx context.Context, id string) (*models.Event, error)
	Set(ctx context.Context, ev *models.Event) error
	Invalidate(ctx context.Context, id string) error
}

type RedisEventCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisEventCache(client *redis.Client, ttl time.Duration) *RedisEventCache {
	return &RedisEventCache{redis: client, ttl: ttl}
}

func eventCacheKey(id string) string {
	return fmt.Sprintf("event:%s", id)
}

func (c *RedisEventCache) Get(ctx context.Context, id string) (*models.Event, error) {
	data, err := c.redis.Get(ctx, eventCacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var ev models.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode cached event %s: %w", id, err)
	}
	return &ev, nil
}

func (c *RedisEventCache) Set(ctx context.Context, ev *models.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, eventCacheKey(ev.ID), data, c.ttl).Err()
}

func (c *RedisEventCache) Invalidate(ctx context.Context, id string) error {
	return c.redis.Del(ctx, eventCacheKey(id)).Err()
}
