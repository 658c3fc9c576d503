package engine

import (
	"sort"

	"market_go/internal/domain"
	"market_go/pkg/quant"
)

// bookSide holds all price levels on one side of the book: a price-keyed
// map of FIFO queues plus a sorted slice of the live prices. The slice
// stays ascending on both sides; best() reads the appropriate end. An
// empty level is removed together with its price key immediately, so
// every key in levels maps to a non-empty queue.
type bookSide struct {
	side   domain.Side
	levels map[quant.PriceCents]*priceLevel
	prices []quant.PriceCents // ascending
}

func newBookSide(side domain.Side) *bookSide {
	return &bookSide{
		side:   side,
		levels: make(map[quant.PriceCents]*priceLevel),
	}
}

func (bs *bookSide) empty() bool {
	return len(bs.prices) == 0
}

// best returns the most aggressive price on this side: the highest bid or
// the lowest ask. ok is false when the side is empty.
func (bs *bookSide) best() (quant.PriceCents, bool) {
	if len(bs.prices) == 0 {
		return 0, false
	}
	if bs.side == domain.Buy {
		return bs.prices[len(bs.prices)-1], true
	}
	return bs.prices[0], true
}

// insert appends the order to the FIFO queue at its price, creating the
// price level if it does not exist yet.
func (bs *bookSide) insert(o *domain.Order) {
	lvl, ok := bs.levels[o.PriceCents]
	if !ok {
		lvl = newPriceLevel(o.PriceCents)
		bs.levels[o.PriceCents] = lvl
		i := sort.Search(len(bs.prices), func(i int) bool {
			return bs.prices[i] >= o.PriceCents
		})
		bs.prices = append(bs.prices, 0)
		copy(bs.prices[i+1:], bs.prices[i:])
		bs.prices[i] = o.PriceCents
	}
	lvl.append(o)
}

// remove deletes the identified order from its price level, pruning the
// level if it empties. Returns false when the price key is absent or the
// order is not queued there.
func (bs *bookSide) remove(price quant.PriceCents, id string) bool {
	lvl, ok := bs.levels[price]
	if !ok {
		return false
	}
	if !lvl.remove(id) {
		return false
	}
	if lvl.empty() {
		bs.dropLevel(price)
	}
	return true
}

// dropLevel removes an exhausted price key from the side.
func (bs *bookSide) dropLevel(price quant.PriceCents) {
	delete(bs.levels, price)
	i := sort.Search(len(bs.prices), func(i int) bool {
		return bs.prices[i] >= price
	})
	if i < len(bs.prices) && bs.prices[i] == price {
		bs.prices = append(bs.prices[:i], bs.prices[i+1:]...)
	}
}

// restingQty sums the remaining quantity across all levels. Used by
// invariant checks and depth queries, not by the matching loop.
func (bs *bookSide) restingQty() quant.Qty {
	var total quant.Qty
	for _, lvl := range bs.levels {
		for _, o := range lvl.orders {
			total += o.Qty
		}
	}
	return total
}
