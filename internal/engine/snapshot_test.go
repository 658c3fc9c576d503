package engine

import (
	"testing"

	"market_go/internal/domain"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	b := newTestBook()
	b.RegisterParticipant("X")
	b.AdvanceTick()

	mustSubmit(t, b, limit("s1", "seed", domain.Sell, 10100, 10, domain.Time{Day: 0, Tick: 0}))
	mustSubmit(t, b, limit("s2", "X", domain.Sell, 10100, 5, domain.Time{Day: 0, Tick: 1}))
	mustSubmit(t, b, limit("b1", "seed", domain.Buy, 9900, 10, domain.Time{Day: 0, Tick: 0}))
	mustSubmit(t, b, market("m1", "Y", domain.Buy, 4, domain.Time{Day: 0, Tick: 1}))

	restored := FromSnapshot(b.Snapshot())

	if restored.LastTradePrice() != b.LastTradePrice() {
		t.Errorf("last price = %s, want %s", restored.LastTradePrice(), b.LastTradePrice())
	}
	if restored.Day() != b.Day() || restored.Now() != b.Now() {
		t.Errorf("clock = %+v, want %+v", restored.Now(), b.Now())
	}
	if got, want := restored.RestingQty(domain.Sell), b.RestingQty(domain.Sell); got != want {
		t.Errorf("ask depth = %d, want %d", got, want)
	}
	if got, want := restored.RestingQty(domain.Buy), b.RestingQty(domain.Buy); got != want {
		t.Errorf("bid depth = %d, want %d", got, want)
	}
	if len(restored.CloseHistory()) != len(b.CloseHistory()) {
		t.Error("close history length mismatch")
	}

	st, ok := restored.ParticipantStatus("X")
	if !ok || !st.HasStanding || st.Standing == nil || st.Standing.ID != "s2" {
		t.Errorf("restored status for X = %+v, want standing s2", st)
	}

	// FIFO order survives: the partially filled head fills before s2.
	mustSubmit(t, restored, market("m2", "Y", domain.Buy, 6, domain.Time{Day: 0, Tick: 2}))
	trades := restored.LedgerForDay(0)
	if len(trades) != 1 || trades[0].Maker != "seed" || trades[0].Qty != 6 {
		t.Fatalf("trades after restore = %+v, want single fill of 6 against seed", trades)
	}
}
