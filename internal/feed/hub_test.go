package feed

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"market_go/internal/domain"
	"market_go/internal/event"
	"market_go/pkg/quant"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub("127.0.0.1:0")
	if err := h.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(h.Stop)
	return h
}

func dial(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+h.Addr()+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// Registration happens in the server's handler goroutine.
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func TestHub_BroadcastsTradeFrames(t *testing.T) {
	h := startHub(t)
	conn := dial(t, h)

	sink := h.Sink()
	sink(event.TradeEvent{
		BaseEvent: event.BaseEvent{Seq: 7, Time: domain.Time{Day: 2, Tick: 3}},
		Trade: domain.Trade{
			Maker:      "fundamentalist-001",
			PriceCents: quant.PriceCents(10050),
			Qty:        quant.Qty(25),
			MakerSide:  domain.Sell,
		},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var frame struct {
		Type  string `json:"type"`
		Event struct {
			Seq   uint64 `json:"seq"`
			Trade struct {
				Maker      string `json:"maker"`
				PriceCents int64  `json:"price"`
				Qty        int64  `json:"qty"`
			} `json:"trade"`
		} `json:"event"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if frame.Type != "trade" {
		t.Errorf("type = %q, want trade", frame.Type)
	}
	if frame.Event.Seq != 7 {
		t.Errorf("seq = %d, want 7", frame.Event.Seq)
	}
	if frame.Event.Trade.Maker != "fundamentalist-001" || frame.Event.Trade.PriceCents != 10050 || frame.Event.Trade.Qty != 25 {
		t.Errorf("unexpected trade payload: %+v", frame.Event.Trade)
	}
}

func TestHub_DayCloseFrame(t *testing.T) {
	h := startHub(t)
	conn := dial(t, h)

	h.Sink()(event.DayCloseEvent{
		BaseEvent:  event.BaseEvent{Seq: 9, Time: domain.Time{Day: 4}},
		Day:        4,
		CloseCents: quant.PriceCents(9980),
		Trades:     12,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var frame struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if frame.Type != "day_close" {
		t.Errorf("type = %q, want day_close", frame.Type)
	}
}

type fixedQuoter struct {
	bid, ask quant.PriceCents
}

func (q fixedQuoter) BestBid() (quant.PriceCents, bool) { return q.bid, q.bid != 0 }
func (q fixedQuoter) BestAsk() (quant.PriceCents, bool) { return q.ask, q.ask != 0 }

func TestHub_QuoteFollowsTrade(t *testing.T) {
	h := startHub(t)
	h.AttachQuotes(fixedQuoter{bid: 9990, ask: 10010})
	conn := dial(t, h)

	h.Sink()(event.TradeEvent{
		BaseEvent: event.BaseEvent{Seq: 1, Time: domain.Time{Day: 0, Tick: 1}},
		Trade:     domain.Trade{Maker: "seed", PriceCents: 10000, Qty: 1, MakerSide: domain.Sell},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil { // trade frame
		t.Fatalf("read trade: %v", err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read quote: %v", err)
	}
	var q struct {
		Type string `json:"type"`
		Bid  int64  `json:"bid"`
		Ask  int64  `json:"ask"`
	}
	if err := json.Unmarshal(data, &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if q.Type != "quote" || q.Bid != 9990 || q.Ask != 10010 {
		t.Errorf("quote frame = %+v", q)
	}
}

func TestHub_DroppedSubscriberRemoved(t *testing.T) {
	h := startHub(t)
	conn := dial(t, h)
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber not removed, count = %d", h.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
