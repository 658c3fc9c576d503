package trader

import (
	"math/rand"
	"testing"

	"market_go/internal/domain"
	"market_go/pkg/quant"
)

// fakeMarket is a hand-rolled Market for driving agents in isolation.
type fakeMarket struct {
	last        quant.PriceCents
	bid, ask    quant.PriceCents
	hasBid      bool
	hasAsk      bool
	fundamental float64
	hist        []quant.PriceCents
	status      map[string]domain.ParticipantStatus
	now         domain.Time
}

func (f *fakeMarket) LastTradePrice() quant.PriceCents { return f.last }
func (f *fakeMarket) BestBid() (quant.PriceCents, bool) {
	return f.bid, f.hasBid
}
func (f *fakeMarket) BestAsk() (quant.PriceCents, bool) {
	return f.ask, f.hasAsk
}
func (f *fakeMarket) Fundamental() float64             { return f.fundamental }
func (f *fakeMarket) CloseHistory() []quant.PriceCents { return f.hist }
func (f *fakeMarket) ParticipantStatus(id string) (domain.ParticipantStatus, bool) {
	st, ok := f.status[id]
	return st, ok
}
func (f *fakeMarket) Now() domain.Time { return f.now }

// aggressive returns params that guarantee participation with a market
// order and a deterministic size.
func aggressive() Params {
	return Params{
		Phi:   1000, // always participate
		Rho:   1e-6, // always at the touch: market order
		Mu:    100,
		Sigma: 0,
		Delta: 0,
	}
}

func TestFundamentalist_SellsOverpricedMarket(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := NewFundamentalist("f1", aggressive(), rng, 100)

	m := &fakeMarket{last: 11000, fundamental: 100} // trading at 110, worth 100

	d := a.Quote(m)
	if d.Submit == nil {
		t.Fatal("expected an order")
	}
	if d.Submit.Side != domain.Sell {
		t.Errorf("side = %s, want SELL when price exceeds value", d.Submit.Side)
	}
	if !d.Submit.IsMarket() {
		t.Errorf("type = %s, want MARKET with near-zero patience", d.Submit.Type)
	}
	if d.Submit.Qty != 100 {
		t.Errorf("qty = %d, want 100 with zero size noise", d.Submit.Qty)
	}
	if d.Submit.Owner != "f1" || d.Submit.ID == "" {
		t.Errorf("order identity incomplete: %+v", d.Submit)
	}
}

func TestFundamentalist_BuysUnderpricedMarket(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := NewFundamentalist("f1", aggressive(), rng, 100)

	m := &fakeMarket{last: 9000, fundamental: 100} // trading at 90, worth 100

	d := a.Quote(m)
	if d.Submit == nil || d.Submit.Side != domain.Buy {
		t.Fatalf("decision = %+v, want a BUY", d.Submit)
	}
}

func TestAgent_NeverParticipatesWithZeroAggression(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := aggressive()
	p.Phi = 0
	a := NewFundamentalist("f1", p, rng, 100)

	m := &fakeMarket{last: 11000, fundamental: 100}
	for i := 0; i < 50; i++ {
		if d := a.Quote(m); d.Submit != nil {
			t.Fatal("phi=0 must never submit")
		}
	}
}

func TestAgent_CancelsOnSignFlip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := aggressive()
	p.Phi = 0 // isolate the cancel path from new submissions
	a := NewFundamentalist("f1", p, rng, 100)

	standing := &domain.Order{ID: "old", Owner: "f1", Side: domain.Sell,
		Type: domain.TypeLimit, PriceCents: 11000, Qty: 10}
	m := &fakeMarket{
		last:        11000,
		fundamental: 100,
		status: map[string]domain.ParticipantStatus{
			"f1": {HasStanding: true, Standing: standing},
		},
	}

	// First query: market overpriced, diff > 0, same sign as the initial
	// epsilon. No flip, nothing cancelled.
	if d := a.Quote(m); d.Cancel != nil {
		t.Fatal("no sign flip on the first query")
	}

	// Market now looks underpriced: diff flips negative, the stale sell
	// order must be withdrawn.
	m.last = 9000
	d := a.Quote(m)
	if d.Cancel == nil || d.Cancel.ID != "old" {
		t.Fatalf("decision = %+v, want cancel of the standing order", d)
	}
}

func TestAgent_ReplacesStandingOrderWhenSubmitting(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := NewFundamentalist("f1", aggressive(), rng, 100)

	standing := &domain.Order{ID: "old", Owner: "f1", Side: domain.Sell,
		Type: domain.TypeLimit, PriceCents: 12000, Qty: 10}
	m := &fakeMarket{
		last:        11000,
		fundamental: 100,
		status: map[string]domain.ParticipantStatus{
			"f1": {HasStanding: true, Standing: standing},
		},
	}

	d := a.Quote(m)
	if d.Submit == nil {
		t.Fatal("expected a new order")
	}
	if d.Cancel == nil || d.Cancel.ID != "old" {
		t.Error("the stale standing order must be withdrawn before resubmitting")
	}
}

func TestChartist_SmoothsTowardLastPrice(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := aggressive()
	p.Beta = 0.5
	a := NewChartist("c1", p, rng, 100)

	// prev val 100, last 110, beta 0.5 => val 105 < 110: overpriced, sell.
	m := &fakeMarket{last: 11000}
	d := a.Quote(m)
	if d.Submit == nil || d.Submit.Side != domain.Sell {
		t.Fatalf("decision = %+v, want SELL from smoothed valuation 105", d.Submit)
	}
	if a.val != 105 {
		t.Errorf("val = %f, want 105", a.val)
	}
}

func TestTrender_FollowsRisingTrend(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := aggressive()
	p.Horizon = 5
	a := NewTrender("t1", p, rng, 100)

	// Closes rising one dollar a day; the projection at twice the horizon
	// sits far above the last trade, so the trender buys.
	hist := []quant.PriceCents{10000, 10100, 10200, 10300, 10400}
	m := &fakeMarket{last: 10400, hist: hist}

	d := a.Quote(m)
	if d.Submit == nil || d.Submit.Side != domain.Buy {
		t.Fatalf("decision = %+v, want BUY on a rising trend", d.Submit)
	}
}

func TestTrender_ShortHistoryIsNoOp(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := aggressive()
	p.Horizon = 10
	a := NewTrender("t1", p, rng, 100)

	m := &fakeMarket{last: 10000, hist: []quant.PriceCents{10000}}
	// Valuation falls back to the prior belief (100 = last): diff is 0,
	// participation probability 0.
	if d := a.Quote(m); d.Submit != nil {
		t.Fatalf("decision = %+v, want no-op with insufficient history", d.Submit)
	}
}

func TestAgent_LimitOrderRestsAwayFromTouch(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p := aggressive()
	p.Rho = 1e6 // extreme patience: never a market order in practice
	a := NewFundamentalist("f1", p, rng, 100)

	m := &fakeMarket{
		last:        11000,
		fundamental: 100,
		bid:         10900,
		hasBid:      true,
		ask:         11100,
		hasAsk:      true,
	}

	sawLimit := false
	for i := 0; i < 20 && !sawLimit; i++ {
		d := a.Quote(m)
		if d.Submit == nil || d.Submit.IsMarket() {
			continue
		}
		sawLimit = true
		// Selling: the quote must rest at or above the best bid grid.
		if d.Submit.Side != domain.Sell {
			t.Errorf("side = %s, want SELL", d.Submit.Side)
		}
		if d.Submit.PriceCents <= m.bid {
			t.Errorf("limit price %s not above best bid %s", d.Submit.PriceCents, m.bid)
		}
		if off := d.Submit.PriceCents - m.bid; off%quant.TickCents != 0 {
			t.Errorf("offset %d not on the tick grid", off)
		}
	}
	if !sawLimit {
		t.Fatal("patient agent produced no limit order in 20 queries")
	}
}
