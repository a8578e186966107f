package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-settlement/internal/domain"
)

func acceptedOrder(id string, side domain.Side, symbol string, qty int64) *domain.Order {
	return &domain.Order{
		OrderID:   id,
		Symbol:    symbol,
		Side:      side,
		Quantity:  qty,
		Status:    domain.Accepted,
		CreatedAt: time.Now(),
	}
}

func TestSettleBuyFromEmptyPortfolio(t *testing.T) {
	now := time.Now()
	p := domain.NewPortfolio(now)
	o := acceptedOrder("o1", domain.Buy, "AAPL", 10)

	out := Settle(o, p, now)

	require.NotNil(t, out.Portfolio)
	assert.Equal(t, domain.Executed, out.Order.Status)
	assert.Equal(t, int64(10), out.Portfolio.Holding("AAPL"))
	assert.Equal(t, now, out.Portfolio.LastUpdated)
	assert.NoError(t, out.Reason)
}

func TestSettleBuyAddsToExistingHolding(t *testing.T) {
	now := time.Now()
	p := domain.NewPortfolio(now)
	p.Holdings["AAPL"] = 5

	out := Settle(acceptedOrder("o1", domain.Buy, "AAPL", 7), p, now)

	assert.Equal(t, domain.Executed, out.Order.Status)
	assert.Equal(t, int64(12), out.Portfolio.Holding("AAPL"))
}

func TestSettleSellInsufficientHoldingsRejects(t *testing.T) {
	now := time.Now()
	p := domain.NewPortfolio(now)
	p.Holdings["AAPL"] = 10

	out := Settle(acceptedOrder("o2", domain.Sell, "AAPL", 15), p, now)

	assert.Equal(t, domain.Rejected, out.Order.Status)
	assert.Nil(t, out.Portfolio, "rejection must not produce a ledger write")
	assert.ErrorIs(t, out.Reason, ErrInsufficientHoldings)

	var detail *InsufficientHoldingsError
	require.ErrorAs(t, out.Reason, &detail)
	assert.Equal(t, "AAPL", detail.Symbol)
	assert.Equal(t, int64(15), detail.Requested)
	assert.Equal(t, int64(10), detail.Held)
}

func TestSettleSellExactHoldingDrainsToZero(t *testing.T) {
	now := time.Now()
	p := domain.NewPortfolio(now)
	p.Holdings["AAPL"] = 10

	out := Settle(acceptedOrder("o3", domain.Sell, "AAPL", 10), p, now)

	assert.Equal(t, domain.Executed, out.Order.Status)
	assert.Equal(t, int64(0), out.Portfolio.Holding("AAPL"))
}

func TestSettleSellFromUnknownSymbolRejects(t *testing.T) {
	now := time.Now()
	out := Settle(acceptedOrder("o4", domain.Sell, "TSLA", 1), domain.NewPortfolio(now), now)

	assert.Equal(t, domain.Rejected, out.Order.Status)
	assert.Nil(t, out.Portfolio)
}

func TestSettleDoesNotMutateInputs(t *testing.T) {
	now := time.Now()
	p := domain.NewPortfolio(now)
	p.Holdings["AAPL"] = 3
	o := acceptedOrder("o5", domain.Buy, "AAPL", 2)

	_ = Settle(o, p, now.Add(time.Minute))

	assert.Equal(t, domain.Accepted, o.Status)
	assert.Equal(t, int64(3), p.Holding("AAPL"))
	assert.Equal(t, now, p.LastUpdated)
}
