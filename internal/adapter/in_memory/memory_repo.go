package in_memory

import (
	"context"
	"sync"

	"stock-settlement/internal/domain"
	"stock-settlement/internal/port"
)

var _ port.Repository = (*MemoryRepo)(nil)

type MemoryRepo struct {
	mu        sync.Mutex
	orders    map[string]*domain.Order
	portfolio *domain.Portfolio
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{orders: make(map[string]*domain.Order)}
}

func (r *MemoryRepo) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *MemoryRepo) SaveOrder(ctx context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.orders[o.OrderID] = &cp
	return nil
}

func (r *MemoryRepo) LoadPortfolio(ctx context.Context) (*domain.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.portfolio == nil {
		return nil, nil
	}
	return r.portfolio.DeepCopy(), nil
}

func (r *MemoryRepo) ApplySettlement(ctx context.Context, o *domain.Order, p *domain.Portfolio) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := int64(0)
	if r.portfolio != nil {
		current = r.portfolio.Revision
	}
	if p.Revision != current {
		return port.ErrRevisionConflict
	}

	saved := p.DeepCopy()
	saved.Revision = current + 1
	r.portfolio = saved

	cp := *o
	r.orders[o.OrderID] = &cp
	return nil
}
