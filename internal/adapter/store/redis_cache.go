package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"starkspan-backend/internal/domain/entity"
)

// RedisCache stores finished quotes keyed by content hash. Entries expire
// after a day so price-list changes propagate without a manual flush.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, ttl: 24 * time.Hour}
}

func (r *RedisCache) Get(ctx context.Context, key string) (*entity.QuoteResult, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // miss
	}
	if err != nil {
		return nil, err
	}
	var res entity.QuoteResult
	if err := json.Unmarshal(val, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *RedisCache) Save(ctx context.Context, key string, res *entity.QuoteResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, r.ttl).Err()
}
