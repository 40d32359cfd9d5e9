package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kattacharan/Task-Automation-Bot/internal/model"
)

type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ FiredCache = (*RedisCache)(nil)

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

type firedValue struct {
	Message string    `json:"message"`
	FireAt  time.Time `json:"fireAt"`
	FiredAt time.Time `json:"firedAt"`
}

func (c *RedisCache) RecordFired(ctx context.Context, r model.Reminder, firedAt time.Time) error {
	key := "fired:" + r.ID
	val := firedValue{
		Message: r.Message,
		FireAt:  r.FireAt.UTC(),
		FiredAt: firedAt.UTC(),
	}

	b, err := json.Marshal(val)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}
