package core

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Validation and lookup failures carry a gRPC status code so every
// transport maps them the same way.
var (
	ErrOrderIDRequired = status.Error(codes.InvalidArgument, "order_id cannot be blank")
	ErrSymbolRequired  = status.Error(codes.InvalidArgument, "symbol cannot be blank")
	ErrInvalidQuantity = status.Error(codes.InvalidArgument, "quantity must be positive")
	ErrInvalidSide     = status.Error(codes.InvalidArgument, "side must be BUY or SELL")
	ErrStockNotFound   = status.Error(codes.NotFound, "stock not found")
	ErrOrderNotFound   = status.Error(codes.NotFound, "order not found")
	ErrOrderExists     = status.Error(codes.AlreadyExists, "order with this order_id already exists")
)

// ErrInsufficientHoldings marks a SELL rejected for lack of shares.
// It is a business outcome, not a processing failure: settlement
// never surfaces it to the event-log runtime.
var ErrInsufficientHoldings = errors.New("insufficient holdings")

type InsufficientHoldingsError struct {
	Symbol    string
	Requested int64
	Held      int64
}

func (e *InsufficientHoldingsError) Error() string {
	return fmt.Sprintf("insufficient holdings: symbol=%s requested=%d held=%d",
		e.Symbol, e.Requested, e.Held)
}

func (e *InsufficientHoldingsError) Is(target error) bool {
	return target == ErrInsufficientHoldings
}
