package core

import (
	"context"
	"time"

	"github.com/yanun0323/logs"

	"stock-settlement/internal/domain"
	"stock-settlement/internal/port"
)

type PlaceOrderCommand struct {
	OrderID  string
	Symbol   string
	Side     domain.Side
	Quantity int64
}

type PlaceOrderResult struct {
	OrderID string
	Status  domain.OrderStatus
}

// Executor finalizes an accepted order: either inline settlement or a
// publish to the event log for out-of-band settlement. Both paths feed
// the same settlement rule.
type Executor interface {
	Execute(ctx context.Context, o *domain.Order) (domain.OrderStatus, error)
}

// SyncExecutor settles the order before the intake call returns.
type SyncExecutor struct {
	engine *SettlementEngine
}

func NewSyncExecutor(engine *SettlementEngine) *SyncExecutor {
	return &SyncExecutor{engine: engine}
}

func (x *SyncExecutor) Execute(ctx context.Context, o *domain.Order) (domain.OrderStatus, error) {
	return x.engine.Apply(ctx, o)
}

// AsyncExecutor emits an OrderPlaced event keyed by order id and
// returns ACCEPTED without waiting for settlement.
type AsyncExecutor struct {
	publisher port.EventPublisher
}

func NewAsyncExecutor(publisher port.EventPublisher) *AsyncExecutor {
	return &AsyncExecutor{publisher: publisher}
}

func (x *AsyncExecutor) Execute(ctx context.Context, o *domain.Order) (domain.OrderStatus, error) {
	ev := domain.OrderPlacedEvent{
		OrderID:   o.OrderID,
		Symbol:    o.Symbol,
		Side:      o.Side,
		Quantity:  o.Quantity,
		CreatedAt: o.CreatedAt,
	}
	if err := x.publisher.PublishOrderPlaced(ctx, ev); err != nil {
		return "", err
	}
	logs.Infof("published OrderPlaced event for order %s", o.OrderID)
	return domain.Accepted, nil
}

// Intake accepts place-order commands, validates them and hands the
// accepted order to the configured executor.
type Intake struct {
	repo   port.Repository
	quotes port.QuoteSource
	cache  port.Cache
	exec   Executor
	now    func() time.Time
}

func NewIntake(repo port.Repository, quotes port.QuoteSource, cache port.Cache, exec Executor) *Intake {
	return &Intake{repo: repo, quotes: quotes, cache: cache, exec: exec, now: time.Now}
}

func (s *Intake) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (*PlaceOrderResult, error) {
	if cmd.OrderID == "" {
		return nil, ErrOrderIDRequired
	}
	if cmd.Symbol == "" {
		return nil, ErrSymbolRequired
	}
	if cmd.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if !cmd.Side.Valid() {
		return nil, ErrInvalidSide
	}

	known, err := s.quotes.Exists(ctx, cmd.Symbol)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, ErrStockNotFound
	}

	existing, err := s.repo.GetOrder(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrOrderExists
	}

	o := &domain.Order{
		OrderID:   cmd.OrderID,
		Symbol:    cmd.Symbol,
		Side:      cmd.Side,
		Quantity:  cmd.Quantity,
		Status:    domain.Accepted,
		CreatedAt: s.now(),
	}
	if err := s.repo.SaveOrder(ctx, o); err != nil {
		return nil, err
	}
	logs.Infof("accepted order %s (%s %d %s)", o.OrderID, o.Side, o.Quantity, o.Symbol)

	st, err := s.exec.Execute(ctx, o)
	if err != nil {
		return nil, err
	}
	return &PlaceOrderResult{OrderID: o.OrderID, Status: st}, nil
}

// GetOrder reads a single order for the query surface.
func (s *Intake) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, ErrOrderIDRequired
	}
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// GetPortfolio reads the ledger aggregate, preferring the cache. An
// uncreated portfolio reads as empty.
func (s *Intake) GetPortfolio(ctx context.Context) (*domain.Portfolio, error) {
	if s.cache != nil {
		if p, err := s.cache.GetPortfolio(ctx); err == nil && p != nil {
			return p, nil
		}
	}
	p, err := s.repo.LoadPortfolio(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = domain.NewPortfolio(s.now())
	}
	return p, nil
}
