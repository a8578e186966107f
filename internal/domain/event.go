package domain

import "time"

// OrderPlacedEvent is the denormalized snapshot of an order emitted at
// placement time. It carries everything settlement needs, though the
// worker still re-reads the order store for the current status.
type OrderPlacedEvent struct {
	OrderID   string    `json:"order_id"`
	Symbol    string    `json:"symbol"`
	Side      Side      `json:"side"`
	Quantity  int64     `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// PartitionKey routes all events for the same order to the same
// partition, preserving per-order delivery ordering.
func (e OrderPlacedEvent) PartitionKey() string {
	return e.OrderID
}
