package in_memory

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/yanun0323/logs"

	"stock-settlement/internal/domain"
	"stock-settlement/internal/port"
)

var (
	_ port.EventPublisher = (*EventLog)(nil)
	_ port.EventConsumer  = (*EventLog)(nil)
)

// EventLog is an in-process at-least-once event channel for tests and
// single-node deployments. Events are hash-partitioned by key so
// deliveries for the same order stay ordered; a failed delivery is
// retried in place, blocking its partition like a real log consumer
// stuck on an offset.
type EventLog struct {
	partitions []chan domain.OrderPlacedEvent

	// MaxAttempts caps in-place redeliveries of one event before it is
	// dropped. Zero means the default of 3.
	MaxAttempts int
	// RetryDelay is the pause between redeliveries of a failed event.
	RetryDelay time.Duration
}

func NewEventLog(partitions int) *EventLog {
	if partitions <= 0 {
		partitions = 1
	}
	chans := make([]chan domain.OrderPlacedEvent, partitions)
	for i := range chans {
		chans[i] = make(chan domain.OrderPlacedEvent, 1024)
	}
	return &EventLog{partitions: chans}
}

func partitionFor(key string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32()) % n
}

func (l *EventLog) PublishOrderPlaced(ctx context.Context, ev domain.OrderPlacedEvent) error {
	p := partitionFor(ev.PartitionKey(), len(l.partitions))
	select {
	case l.partitions[p] <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *EventLog) Consume(ctx context.Context, h port.EventHandler) error {
	var wg sync.WaitGroup
	for _, ch := range l.partitions {
		wg.Add(1)
		go func(ch chan domain.OrderPlacedEvent) {
			defer wg.Done()
			l.consumePartition(ctx, ch, h)
		}(ch)
	}
	wg.Wait()
	return ctx.Err()
}

func (l *EventLog) consumePartition(ctx context.Context, ch chan domain.OrderPlacedEvent, h port.EventHandler) {
	maxAttempts := l.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-ch:
			for attempt := 1; ; attempt++ {
				if err := h(ctx, ev); err == nil {
					break
				} else if attempt >= maxAttempts {
					logs.Errorf("dropping event for order %s after %d attempts: %v",
						ev.OrderID, attempt, err)
					break
				}
				select {
				case <-ctx.Done():
					return
				case <-time.After(l.RetryDelay):
				}
			}
		}
	}
}
