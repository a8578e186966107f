package port

import (
	"context"

	"stock-settlement/internal/domain"
)

// EventHandler processes one delivery. Returning nil acknowledges the
// event; returning an error leaves it pending for redelivery.
type EventHandler func(ctx context.Context, ev domain.OrderPlacedEvent) error

type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, ev domain.OrderPlacedEvent) error
}

type EventConsumer interface {
	// Consume delivers events to h until ctx is cancelled. Events
	// sharing a partition key arrive in emission order; ordering
	// across keys is not guaranteed.
	Consume(ctx context.Context, h EventHandler) error
}
