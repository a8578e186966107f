package port

import (
	"context"
	"errors"

	"stock-settlement/internal/domain"
)

// ErrRevisionConflict is returned by ApplySettlement when the
// portfolio revision moved between load and save. Callers retry the
// read-compute-write cycle.
var ErrRevisionConflict = errors.New("portfolio revision conflict")

type Repository interface {
	// GetOrder returns nil without error when the order is absent.
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	// SaveOrder upserts by OrderID.
	SaveOrder(ctx context.Context, o *domain.Order) error
	// LoadPortfolio returns nil without error when the singleton
	// aggregate has not been created yet.
	LoadPortfolio(ctx context.Context) (*domain.Portfolio, error)
	// ApplySettlement persists the updated portfolio and the order's
	// terminal status as one atomic unit. The portfolio write is
	// conditional on p.Revision still being current; on a stale
	// revision nothing is written and ErrRevisionConflict is returned.
	ApplySettlement(ctx context.Context, o *domain.Order, p *domain.Portfolio) error
}
