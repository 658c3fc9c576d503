package trader

import (
	"market_go/internal/domain"
	"market_go/pkg/quant"
)

// Market is the read-only view of the book a trader gets when queried.
// *engine.Book satisfies it.
type Market interface {
	LastTradePrice() quant.PriceCents
	BestBid() (quant.PriceCents, bool)
	BestAsk() (quant.PriceCents, bool)
	Fundamental() float64
	CloseHistory() []quant.PriceCents
	ParticipantStatus(id string) (domain.ParticipantStatus, bool)
	Now() domain.Time
}

// Decision is what a trader wants done this tick. Cancel, when set, is
// withdrawn before Submit is placed. Both nil means no-op.
type Decision struct {
	Cancel *domain.Order
	Submit *domain.Order
}

// Trader produces an order intent (or a no-op) from the current book
// state. Implementations differ only in how they value the instrument.
type Trader interface {
	ID() string
	Quote(m Market) Decision
}
