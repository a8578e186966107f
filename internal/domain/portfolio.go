package domain

import "time"

// Portfolio is the single ledger aggregate shared by all symbols.
// Revision is bumped by the store on every successful save and is the
// optimistic-concurrency token for read-modify-write cycles.
type Portfolio struct {
	Holdings    map[string]int64
	LastUpdated time.Time
	Revision    int64
}

func NewPortfolio(now time.Time) *Portfolio {
	return &Portfolio{
		Holdings:    make(map[string]int64),
		LastUpdated: now,
	}
}

// Holding returns the quantity held for symbol, zero if absent.
func (p *Portfolio) Holding(symbol string) int64 {
	return p.Holdings[symbol]
}

func (p *Portfolio) DeepCopy() *Portfolio {
	cp := *p
	cp.Holdings = make(map[string]int64, len(p.Holdings))
	for sym, qty := range p.Holdings {
		cp.Holdings[sym] = qty
	}
	return &cp
}
