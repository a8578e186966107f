package in_memory

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"stock-settlement/internal/domain"
	"stock-settlement/internal/port"
)

var _ port.QuoteSource = (*QuoteSource)(nil)

// QuoteSource serves quotes from a static table. Price discovery is
// external; this adapter only answers existence checks and the last
// known price.
type QuoteSource struct {
	mu     sync.Mutex
	quotes map[string]*domain.Quote
}

func NewQuoteSource() *QuoteSource {
	return &QuoteSource{quotes: make(map[string]*domain.Quote)}
}

// SetPrice upserts the quote for a symbol.
func (q *QuoteSource) SetPrice(symbol string, price decimal.Decimal) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.quotes[symbol] = &domain.Quote{
		Symbol:      symbol,
		Price:       price,
		LastUpdated: time.Now(),
	}
}

func (q *QuoteSource) Exists(ctx context.Context, symbol string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.quotes[symbol]
	return ok, nil
}

func (q *QuoteSource) CurrentPrice(ctx context.Context, symbol string) (*domain.Quote, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	quote, ok := q.quotes[symbol]
	if !ok {
		return nil, nil
	}
	cp := *quote
	return &cp, nil
}
