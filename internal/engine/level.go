package engine

import (
	"market_go/internal/domain"
	"market_go/pkg/quant"
)

// priceLevel is the FIFO queue of resting orders at one price. Index 0 is
// the oldest order and fills first (time priority). A level is never left
// empty inside a bookSide: the caller removes the price key the moment the
// last order leaves.
type priceLevel struct {
	price  quant.PriceCents
	orders []*domain.Order
}

func newPriceLevel(price quant.PriceCents) *priceLevel {
	return &priceLevel{price: price}
}

func (l *priceLevel) empty() bool {
	return len(l.orders) == 0
}

func (l *priceLevel) size() int {
	return len(l.orders)
}

// head returns the oldest resting order. Callers check empty() first.
func (l *priceLevel) head() *domain.Order {
	return l.orders[0]
}

// append adds an order at the back of the queue (lowest time priority).
func (l *priceLevel) append(o *domain.Order) {
	l.orders = append(l.orders, o)
}

// popHead removes the oldest order after it has been fully filled.
func (l *priceLevel) popHead() {
	l.orders[0] = nil // release the reference
	l.orders = l.orders[1:]
}

// remove deletes the order with the given ID, preserving FIFO order of the
// rest. Returns false if no order at this level carries that ID.
func (l *priceLevel) remove(id string) bool {
	for i, o := range l.orders {
		if o.ID == id {
			copy(l.orders[i:], l.orders[i+1:])
			l.orders[len(l.orders)-1] = nil
			l.orders = l.orders[:len(l.orders)-1]
			return true
		}
	}
	return false
}
