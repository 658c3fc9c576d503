package engine

import (
	"sort"

	"market_go/internal/domain"
	"market_go/pkg/quant"
)

// Snapshot is a point-in-time capture of the book: clock, prices, close
// history, every resting order in price-then-queue order, and the set of
// registered participants. The ledger is not captured; it is rebuilt from
// the trade store when needed.
type Snapshot struct {
	Day          int                `json:"day"`
	Tick         int                `json:"tick"`
	Seq          uint64             `json:"seq"`
	LastCents    quant.PriceCents   `json:"last"`
	Fundamental  float64            `json:"fundamental"`
	CloseHist    []quant.PriceCents `json:"close_hist"`
	Bids         []domain.Order     `json:"bids"`
	Asks         []domain.Order     `json:"asks"`
	Participants []string           `json:"participants"`
}

// Snapshot captures the current book state. Orders are copied by value;
// mutating the snapshot does not touch the live book.
func (b *Book) Snapshot() *Snapshot {
	snap := &Snapshot{
		Day:         b.clock.Day(),
		Tick:        b.clock.Tick(),
		Seq:         b.seq,
		LastCents:   b.lastCents,
		Fundamental: b.fundamental,
		CloseHist:   b.CloseHistory(),
		Bids:        flattenSide(b.bids),
		Asks:        flattenSide(b.asks),
	}
	for id := range b.registry {
		snap.Participants = append(snap.Participants, id)
	}
	sort.Strings(snap.Participants)
	return snap
}

// flattenSide lists resting orders ascending by price, FIFO within each
// level, so re-inserting them in order reproduces the queues exactly.
func flattenSide(bs *bookSide) []domain.Order {
	var out []domain.Order
	for _, price := range bs.prices {
		for _, o := range bs.levels[price].orders {
			out = append(out, *o)
		}
	}
	return out
}

// FromSnapshot rebuilds a book from a capture. The current day's ledger
// page starts empty; historical trades live in the trade store.
func FromSnapshot(snap *Snapshot) *Book {
	b := &Book{
		bids:        newBookSide(domain.Buy),
		asks:        newBookSide(domain.Sell),
		lastCents:   snap.LastCents,
		fundamental: snap.Fundamental,
		closeHist:   append([]quant.PriceCents(nil), snap.CloseHist...),
		ledger:      make(map[int][]domain.Trade),
		registry:    make(map[string]*domain.ParticipantStatus),
		seq:         snap.Seq,
	}
	b.clock.day = snap.Day
	b.clock.tick = snap.Tick
	b.ledger[snap.Day] = []domain.Trade{}
	for _, id := range snap.Participants {
		b.RegisterParticipant(id)
	}
	restoreSide(b, b.bids, snap.Bids)
	restoreSide(b, b.asks, snap.Asks)
	return b
}

func restoreSide(b *Book, bs *bookSide, orders []domain.Order) {
	for i := range orders {
		o := orders[i] // fresh copy owned by the restored book
		bs.insert(&o)
		if st, ok := b.registry[o.Owner]; ok {
			st.HasStanding = true
			st.Standing = &o
		}
	}
}
