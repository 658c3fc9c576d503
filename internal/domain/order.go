package domain

import "market_go/pkg/quant"

// Side is the side of the book an order belongs to.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Order types.
const (
	TypeLimit  = "LIMIT"
	TypeMarket = "MARKET"
)

// Time is the two-level simulation timestamp: the day, and the intra-day
// tick (one per participant query). Ticks reset at the start of each day.
type Time struct {
	Day  int `json:"day"`
	Tick int `json:"tick"`
}

// Order represents a trading order. Qty is the remaining quantity and is
// mutated in place by the matching engine as partial fills occur; once it
// reaches zero the order leaves the book. The engine is the sole mutator.
type Order struct {
	ID         string           `json:"id"`
	Owner      string           `json:"owner"`
	Side       Side             `json:"side"`
	Type       string           `json:"type"`  // "LIMIT", "MARKET"
	PriceCents quant.PriceCents `json:"price"` // 0 for MARKET
	Qty        quant.Qty        `json:"qty"`
	Placed     Time             `json:"placed"`
}

// IsMarket reports whether the order executes immediately against resting
// liquidity instead of joining the book.
func (o *Order) IsMarket() bool {
	return o.Type == TypeMarket
}
