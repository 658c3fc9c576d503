// Package engine implements the central limit order book: order submission,
// price-time priority matching, cancellation, and the per-day transaction
// ledger. The engine is single-threaded by contract; the driver serializes
// every call (see internal/sim).
package engine

import (
	"fmt"

	"market_go/internal/domain"
	"market_go/internal/event"
	"market_go/pkg/quant"
)

// Book owns the order book state for one instrument: both sides, the
// engine clock, the last-trade price, the fundamental price process, the
// close-price history, the transaction ledger, and the participant
// registry. All mutation goes through Submit, Cancel, and the clock
// advance methods.
type Book struct {
	bids *bookSide
	asks *bookSide

	clock       Clock
	lastCents   quant.PriceCents
	fundamental float64 // stored for collaborators, never interpreted

	closeHist []quant.PriceCents
	ledger    map[int][]domain.Trade
	registry  map[string]*domain.ParticipantStatus

	sink event.Sink
	seq  uint64
}

// NewBook creates a book with the given starting price. histSeed copies of
// the start price pre-fill the close history so trend-following
// collaborators have a lookback window before the first real close.
func NewBook(startCents quant.PriceCents, histSeed int) *Book {
	hist := make([]quant.PriceCents, histSeed)
	for i := range hist {
		hist[i] = startCents
	}
	b := &Book{
		bids:        newBookSide(domain.Buy),
		asks:        newBookSide(domain.Sell),
		lastCents:   startCents,
		fundamental: startCents.Dollars(),
		closeHist:   hist,
		ledger:      make(map[int][]domain.Trade),
		registry:    make(map[string]*domain.ParticipantStatus),
	}
	b.ledger[0] = []domain.Trade{}
	return b
}

// SetSink installs the event sink. Pass nil to detach.
func (b *Book) SetSink(s event.Sink) { b.sink = s }

func (b *Book) emit(ev event.Event) {
	if b.sink != nil {
		b.sink(ev)
	}
}

// RegisterParticipant creates a registry entry for a trader. Safe to call
// once per participant at construction; re-registering keeps the existing
// entry. Owners that never register (the synthetic seed-liquidity owner)
// are simply not tracked.
func (b *Book) RegisterParticipant(id string) {
	if _, ok := b.registry[id]; !ok {
		b.registry[id] = &domain.ParticipantStatus{}
	}
}

// Submit is the only mutation entrypoint for new interest. Market orders
// execute immediately against the best opposing liquidity; limit orders
// join the book as resting liquidity. No crossing check is applied to
// limit orders: a buy priced through the best ask rests anyway. That is
// deliberate — in this model agents' limit orders never execute on
// arrival.
func (b *Book) Submit(o *domain.Order) error {
	if o == nil {
		return fmt.Errorf("submit: nil order: %w", ErrInvalidOrder)
	}
	if o.Qty <= 0 {
		return fmt.Errorf("submit %s: quantity %d: %w", o.ID, o.Qty, ErrInvalidOrder)
	}
	if o.IsMarket() {
		return b.marketOrder(o)
	}
	if o.PriceCents <= 0 {
		return fmt.Errorf("submit %s: limit price %s: %w", o.ID, o.PriceCents, ErrInvalidOrder)
	}
	b.limitOrder(o)
	return nil
}

// limitOrder appends the order to the FIFO queue at its price and records
// it as the owner's standing order.
func (b *Book) limitOrder(o *domain.Order) {
	b.sideFor(o.Side).insert(o)
	if st, ok := b.registry[o.Owner]; ok {
		st.HasStanding = true
		st.Standing = o
	}
}

// Cancel removes a previously submitted, still-resting limit order. The
// side recorded on the order is tried first; if the order is not found
// there it falls back to scanning the other side, because caller-side
// bookkeeping of the side is allowed to be imprecise. Exactly one resting
// order is removed on success.
func (b *Book) Cancel(o *domain.Order) error {
	if o == nil || o.IsMarket() {
		return fmt.Errorf("cancel: not a resting order: %w", ErrInvalidOrder)
	}
	primary := b.sideFor(o.Side)
	fallback := b.sideFor(o.Side.Opposite())
	if !primary.remove(o.PriceCents, o.ID) && !fallback.remove(o.PriceCents, o.ID) {
		return fmt.Errorf("cancel %s at %s: %w", o.ID, o.PriceCents, ErrOrderNotFound)
	}
	if st, ok := b.registry[o.Owner]; ok && st.Standing != nil && st.Standing.ID == o.ID {
		st.HasStanding = false
		st.Standing = nil
	}
	return nil
}

func (b *Book) sideFor(s domain.Side) *bookSide {
	if s == domain.Buy {
		return b.bids
	}
	return b.asks
}

// AdvanceTick moves the intra-day clock forward by one participant query.
func (b *Book) AdvanceTick() int {
	return b.clock.AdvanceTick()
}

// AdvanceDay closes the current day and opens the next: the last trade
// price is appended to the close history, a day-close event is emitted,
// and an empty ledger page is created for the new day.
func (b *Book) AdvanceDay() int {
	closing := b.clock.Day()
	b.closeHist = append(b.closeHist, b.lastCents)
	b.emit(event.DayCloseEvent{
		BaseEvent:  event.BaseEvent{Seq: b.nextSeq(), Time: b.clock.Now()},
		Day:        closing,
		CloseCents: b.lastCents,
		Trades:     len(b.ledger[closing]),
	})
	day := b.clock.AdvanceDay()
	b.ledger[day] = []domain.Trade{}
	return day
}

// Now returns the current engine time.
func (b *Book) Now() domain.Time { return b.clock.Now() }

// Day returns the current day.
func (b *Book) Day() int { return b.clock.Day() }

// BestBid returns the highest resting bid price.
func (b *Book) BestBid() (quant.PriceCents, bool) { return b.bids.best() }

// BestAsk returns the lowest resting ask price.
func (b *Book) BestAsk() (quant.PriceCents, bool) { return b.asks.best() }

// LastTradePrice returns the price of the most recent execution, or the
// configured starting price before any trade.
func (b *Book) LastTradePrice() quant.PriceCents { return b.lastCents }

// Fundamental returns the current fundamental ("true") price. The engine
// stores this value for collaborators and never interprets it.
func (b *Book) Fundamental() float64 { return b.fundamental }

// SetFundamental replaces the fundamental price. Called once per day by
// the driver when the fundamental process has non-zero volatility.
func (b *Book) SetFundamental(v float64) { b.fundamental = v }

// LedgerForDay returns a copy of the trades executed on the given day.
func (b *Book) LedgerForDay(day int) []domain.Trade {
	trades := b.ledger[day]
	out := make([]domain.Trade, len(trades))
	copy(out, trades)
	return out
}

// CloseHistory returns a copy of the end-of-day price series, including
// the seeded pre-history.
func (b *Book) CloseHistory() []quant.PriceCents {
	out := make([]quant.PriceCents, len(b.closeHist))
	copy(out, b.closeHist)
	return out
}

// ParticipantStatus reports whether the participant has a live resting
// order. ok is false for unregistered owners.
func (b *Book) ParticipantStatus(id string) (domain.ParticipantStatus, bool) {
	st, ok := b.registry[id]
	if !ok {
		return domain.ParticipantStatus{}, false
	}
	return *st, true
}

// RestingQty returns the total resting quantity on one side. Depth probe
// for tests and the feed; the matching loop does not use it.
func (b *Book) RestingQty(s domain.Side) quant.Qty {
	return b.sideFor(s).restingQty()
}

func (b *Book) nextSeq() uint64 {
	b.seq++
	return b.seq
}
