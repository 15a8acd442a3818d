package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"app/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

func NewRedisCartCache(client *redis.Client) *RedisCartCache {
	return &RedisCartCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

type RedisCartCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisCartCache) Get(ctx context.Context, customerID string) (*model.Cart, error) {
	data, err := r.client.Get(ctx, cacheKey(customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart model.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}

	return &cart, nil
}

func (r *RedisCartCache) Set(ctx context.Context, customerID string, cart *model.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	//TTLにジッターを入れて一斉失効を避ける
	ttl := r.baseTTL + time.Duration(rand.Intn(5))*time.Minute

	if err := r.client.Set(ctx, cacheKey(customerID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCartCache) Delete(ctx context.Context, customerID string) error {
	if err := r.client.Del(ctx, cacheKey(customerID)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func cacheKey(customerID string) string {
	return "cart:" + customerID
}
