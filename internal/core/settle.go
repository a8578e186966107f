package core

import (
	"time"

	"stock-settlement/internal/domain"
)

// Outcome is the result of applying one accepted order to the ledger.
// Portfolio is nil when the order was rejected (no ledger write).
type Outcome struct {
	Order     *domain.Order
	Portfolio *domain.Portfolio
	Reason    error
}

// Settle is the single source of truth for the settlement rule, shared
// by the synchronous intake path and the event-driven worker. It is
// pure: inputs are not mutated, the returned records are copies.
//
// BUY always succeeds and adds to the holding. SELL with a holding
// smaller than the requested quantity rejects the order and leaves the
// portfolio untouched; otherwise it subtracts.
func Settle(o *domain.Order, p *domain.Portfolio, now time.Time) Outcome {
	settled := *o
	held := p.Holding(o.Symbol)

	if o.Side == domain.Sell && held < o.Quantity {
		settled.Status = domain.Rejected
		return Outcome{
			Order: &settled,
			Reason: &InsufficientHoldingsError{
				Symbol:    o.Symbol,
				Requested: o.Quantity,
				Held:      held,
			},
		}
	}

	updated := p.DeepCopy()
	if o.Side == domain.Buy {
		updated.Holdings[o.Symbol] = held + o.Quantity
	} else {
		updated.Holdings[o.Symbol] = held - o.Quantity
	}
	updated.LastUpdated = now

	settled.Status = domain.Executed
	return Outcome{Order: &settled, Portfolio: updated}
}
