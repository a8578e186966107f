package port

import (
	"context"

	"stock-settlement/internal/domain"
)

type QuoteSource interface {
	Exists(ctx context.Context, symbol string) (bool, error)
	// CurrentPrice returns nil without error for an unknown symbol.
	CurrentPrice(ctx context.Context, symbol string) (*domain.Quote, error)
}
