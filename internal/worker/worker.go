package worker

import (
	"context"

	"github.com/yanun0323/logs"

	"stock-settlement/internal/core"
	"stock-settlement/internal/domain"
	"stock-settlement/internal/port"
)

// Worker consumes OrderPlaced events and drives accepted orders to a
// terminal state. It never shares in-process state with intake; the
// stores and the event log are the only coordination points.
type Worker struct {
	repo     port.Repository
	engine   *core.SettlementEngine
	consumer port.EventConsumer
}

func New(repo port.Repository, engine *core.SettlementEngine, consumer port.EventConsumer) *Worker {
	return &Worker{repo: repo, engine: engine, consumer: consumer}
}

// Run blocks consuming events until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	return w.consumer.Consume(ctx, w.Handle)
}

// Handle processes one delivery. A nil return acknowledges the event;
// an error leaves it for the log runtime's redelivery policy.
func (w *Worker) Handle(ctx context.Context, ev domain.OrderPlacedEvent) error {
	logs.Infof("received OrderPlaced event for order %s", ev.OrderID)

	o, err := w.repo.GetOrder(ctx, ev.OrderID)
	if err != nil {
		return err
	}
	if o == nil {
		// An event without an order record is an upstream bug;
		// retrying cannot make the order appear.
		logs.Errorf("order %s not found for placed event, dropping", ev.OrderID)
		return nil
	}
	if o.Status.Terminal() {
		logs.Warnf("order %s already %s, skipping duplicate delivery", o.OrderID, o.Status)
		return nil
	}

	st, err := w.engine.Apply(ctx, o)
	if err != nil {
		logs.Errorf("settlement of order %s failed: %v", o.OrderID, err)
		return err
	}

	logs.Infof("order %s settled: %s", o.OrderID, st)
	return nil
}
