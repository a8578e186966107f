package domain

import "time"

type Side string
type OrderStatus string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"

	Accepted OrderStatus = "ACCEPTED"
	Executed OrderStatus = "EXECUTED"
	Rejected OrderStatus = "REJECTED"
)

func (s Side) Valid() bool {
	return s == Buy || s == Sell
}

// Terminal reports whether no further status transitions are allowed.
func (st OrderStatus) Terminal() bool {
	return st == Executed || st == Rejected
}

// Order is keyed by the client-supplied OrderID, which doubles as the
// idempotency key for the whole settlement pipeline.
type Order struct {
	OrderID   string
	Symbol    string
	Side      Side
	Quantity  int64
	Status    OrderStatus
	CreatedAt time.Time
}
