package in_memory

import (
	"context"
	"sync"

	"stock-settlement/internal/domain"
	"stock-settlement/internal/port"
)

var _ port.Cache = (*Cache)(nil)

type Cache struct {
	mu    sync.Mutex
	store *domain.Portfolio
}

func NewCache() *Cache {
	return &Cache{}
}

func (c *Cache) SetPortfolio(ctx context.Context, p *domain.Portfolio) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = p.DeepCopy()
	return nil
}

func (c *Cache) GetPortfolio(ctx context.Context) (*domain.Portfolio, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		return nil, nil
	}
	return c.store.DeepCopy(), nil
}

func (c *Cache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = nil
	return nil
}
