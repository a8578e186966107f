package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the read-model view of a tradable instrument.
type Quote struct {
	Symbol      string
	Price       decimal.Decimal
	LastUpdated time.Time
}
