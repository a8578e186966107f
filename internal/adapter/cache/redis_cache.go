package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"stock-settlement/internal/domain"
	"stock-settlement/internal/port"
)

var _ port.Cache = (*RedisCache)(nil)

const portfolioKey = "portfolio:current"

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr string, password string, db int, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{
		client: rdb,
		ttl:    ttl,
	}
}

func (c *RedisCache) SetPortfolio(ctx context.Context, p *domain.Portfolio) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, portfolioKey, b, c.ttl).Err()
}

func (c *RedisCache) GetPortfolio(ctx context.Context) (*domain.Portfolio, error) {
	b, err := c.client.Get(ctx, portfolioKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p domain.Portfolio
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, portfolioKey).Err()
}
