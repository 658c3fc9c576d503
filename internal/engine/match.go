package engine

import (
	"fmt"

	"market_go/internal/domain"
	"market_go/internal/event"
)

// marketOrder executes an incoming market order against the opposing side
// of the book, walking price levels best-first and orders oldest-first
// within a level. A single market order may consume several resting
// orders across several prices, producing one ledger entry per fill.
//
// Each iteration is committed as it happens: the trade is appended to the
// day's ledger, the resting order's quantity is decremented in place, and
// the last-trade price moves. If the opposing side empties while quantity
// remains, the walk stops with ErrEmptyBookSide and the fills already
// executed stay committed.
func (b *Book) marketOrder(o *domain.Order) error {
	opposing := b.sideFor(o.Side.Opposite())
	remaining := o.Qty

	for remaining > 0 {
		price, ok := opposing.best()
		if !ok {
			return fmt.Errorf("market %s %s: %d of %d shares unfilled: %w",
				o.Side, o.ID, remaining, o.Qty, ErrEmptyBookSide)
		}
		lvl := opposing.levels[price]
		head := lvl.head()

		fill := head.Qty
		if remaining < fill {
			fill = remaining
		}

		trade := domain.Trade{
			Maker:      head.Owner,
			PriceCents: price,
			Qty:        fill,
			Placed:     head.Placed,
			MakerSide:  head.Side,
		}
		day := b.clock.Day()
		b.ledger[day] = append(b.ledger[day], trade)

		head.Qty -= fill
		b.lastCents = price

		if head.Qty == 0 {
			lvl.popHead()
			if st, ok := b.registry[head.Owner]; ok {
				st.HasStanding = false
				st.Standing = nil
			}
		} else if st, ok := b.registry[head.Owner]; ok {
			// Partially filled: the standing order reference now points
			// at the reduced remainder.
			st.HasStanding = true
			st.Standing = head
		}

		if lvl.empty() {
			opposing.dropLevel(price)
		}

		remaining -= fill

		b.emit(event.TradeEvent{
			BaseEvent: event.BaseEvent{Seq: b.nextSeq(), Time: b.clock.Now()},
			Trade:     trade,
		})
	}
	return nil
}
