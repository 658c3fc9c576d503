package domain

import "market_go/pkg/quant"

// Trade is one fill against a resting order, as recorded in the ledger.
// Maker fields describe the resting order that provided the liquidity;
// the aggressing market order is not recorded separately.
type Trade struct {
	Maker      string           `json:"maker"` // owner of the resting order
	PriceCents quant.PriceCents `json:"price"`
	Qty        quant.Qty        `json:"qty"`
	Placed     Time             `json:"placed"` // when the resting order was placed
	MakerSide  Side             `json:"maker_side"`
}

// ParticipantStatus tracks whether a participant currently has a live
// resting order. Standing is a non-owning reference into the book, kept
// so a participant can cancel without searching; callers must not mutate
// the order through it.
type ParticipantStatus struct {
	HasStanding bool
	Standing    *Order
}

// DayStats summarizes one simulated day of trading.
type DayStats struct {
	Day        int              `json:"day"`
	Trades     int              `json:"trades"`
	Volume     int64            `json:"volume"` // shares
	CloseCents quant.PriceCents `json:"close"`
	VWAPCents  quant.PriceCents `json:"vwap"` // 0 when no trades
}
