package core

import (
	"context"
	"errors"
	"time"

	"github.com/yanun0323/logs"

	"stock-settlement/internal/domain"
	"stock-settlement/internal/port"
)

// maxSettleRetries bounds the optimistic-concurrency retry loop. Each
// conflict means another writer made progress, so the bound is only
// reachable under pathological contention on the single aggregate.
const maxSettleRetries = 100

// SettlementEngine runs the settlement rule against the stores as one
// atomic unit of work per order, retrying on revision conflicts.
type SettlementEngine struct {
	repo  port.Repository
	cache port.Cache
	now   func() time.Time
}

func NewSettlementEngine(repo port.Repository, cache port.Cache) *SettlementEngine {
	return &SettlementEngine{repo: repo, cache: cache, now: time.Now}
}

// Apply settles an accepted order and persists the outcome, returning
// the terminal status. A business rejection (insufficient holdings)
// returns domain.Rejected with a nil error; only storage failures
// propagate as errors.
// Settlement failures mark the order REJECTED before the error is
// surfaced, so a redelivered event hits the terminal check instead of
// re-executing a partially applied order.
func (e *SettlementEngine) Apply(ctx context.Context, o *domain.Order) (domain.OrderStatus, error) {
	st, err := e.apply(ctx, o)
	if err != nil {
		e.rejectDefensively(ctx, o)
		return "", err
	}
	return st, nil
}

func (e *SettlementEngine) apply(ctx context.Context, o *domain.Order) (domain.OrderStatus, error) {
	for attempt := 0; attempt < maxSettleRetries; attempt++ {
		p, err := e.repo.LoadPortfolio(ctx)
		if err != nil {
			return "", err
		}
		if p == nil {
			p = domain.NewPortfolio(e.now())
		}

		out := Settle(o, p, e.now())

		if out.Order.Status == domain.Rejected {
			if err := e.repo.SaveOrder(ctx, out.Order); err != nil {
				return "", err
			}
			logs.Warnf("order %s rejected: %v", o.OrderID, out.Reason)
			return domain.Rejected, nil
		}

		err = e.repo.ApplySettlement(ctx, out.Order, out.Portfolio)
		if errors.Is(err, port.ErrRevisionConflict) {
			continue
		}
		if err != nil {
			return "", err
		}
		if e.cache != nil {
			_ = e.cache.SetPortfolio(ctx, out.Portfolio)
		}
		return domain.Executed, nil
	}
	return "", errors.New("settlement gave up after repeated portfolio revision conflicts")
}

func (e *SettlementEngine) rejectDefensively(ctx context.Context, o *domain.Order) {
	rejected := *o
	rejected.Status = domain.Rejected
	if err := e.repo.SaveOrder(ctx, &rejected); err != nil {
		logs.Errorf("failed to mark order %s rejected: %v", o.OrderID, err)
	}
}
