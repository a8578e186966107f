package port

import (
	"context"

	"stock-settlement/internal/domain"
)

type Cache interface {
	SetPortfolio(ctx context.Context, p *domain.Portfolio) error
	// GetPortfolio returns nil without error on a cache miss.
	GetPortfolio(ctx context.Context) (*domain.Portfolio, error)
	Invalidate(ctx context.Context) error
}
