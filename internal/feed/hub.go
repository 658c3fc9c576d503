// Package feed exposes the running simulation as a live market-data
// stream: a websocket endpoint that broadcasts every fill and day close
// as a JSON frame. Recorders and UIs subscribe; the simulation does not
// wait for them.
package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"market_go/internal/event"
	"market_go/pkg/quant"
)

const writeTimeout = 5 * time.Second

// Frame is the wire format: the event kind as a string plus the event
// payload itself.
type Frame struct {
	Type  string      `json:"type"` // "trade" or "day_close"
	Event event.Event `json:"event"`
}

// QuoteFrame carries the top of book after a fill. Prices are cents;
// a zero side means that side of the book is empty.
type QuoteFrame struct {
	Type string `json:"type"` // "quote"
	Bid  int64  `json:"bid"`
	Ask  int64  `json:"ask"`
}

// Quoter is the read-only top-of-book view the hub samples after each
// trade. *engine.Book satisfies it.
type Quoter interface {
	BestBid() (quant.PriceCents, bool)
	BestAsk() (quant.PriceCents, bool)
}

// Hub accepts websocket subscribers on /ws and fans engine events out to
// them. Slow or broken subscribers are dropped, never waited on beyond
// the write timeout.
type Hub struct {
	upgrader websocket.Upgrader
	srv      *http.Server
	ln       net.Listener

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}

	quoter Quoter
}

// NewHub creates a hub that will listen on addr (e.g. "localhost:8787").
func NewHub(addr string) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWS)
	h.srv = &http.Server{Addr: addr, Handler: mux}
	return h
}

// Start binds the listener and serves in the background.
func (h *Hub) Start() error {
	ln, err := net.Listen("tcp", h.srv.Addr)
	if err != nil {
		return err
	}
	h.ln = ln
	go func() {
		if err := h.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("Feed server failed", slog.Any("error", err))
		}
	}()
	slog.Info("Feed listening", slog.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address. Valid after Start.
func (h *Hub) Addr() string {
	return h.ln.Addr().String()
}

// Stop shuts the server down and closes every subscriber.
func (h *Hub) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = h.srv.Shutdown(ctx)

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.Close()
	}
	h.conns = make(map[*websocket.Conn]struct{})
}

// AttachQuotes makes the hub publish a top-of-book frame after every
// trade frame, sampled from q. Call before the run starts.
func (h *Hub) AttachQuotes(q Quoter) { h.quoter = q }

// Sink adapts the hub to the engine's event sink.
func (h *Hub) Sink() event.Sink {
	return func(ev event.Event) {
		frame := Frame{Event: ev}
		switch ev.GetType() {
		case event.EvTrade:
			frame.Type = "trade"
		case event.EvDayClose:
			frame.Type = "day_close"
		default:
			return
		}
		data, err := json.Marshal(frame)
		if err != nil {
			slog.Warn("Failed to marshal feed frame", slog.Any("error", err))
			return
		}
		h.broadcast(data)

		if frame.Type == "trade" && h.quoter != nil {
			h.broadcastQuote()
		}
	}
}

func (h *Hub) broadcastQuote() {
	q := QuoteFrame{Type: "quote"}
	if bid, ok := h.quoter.BestBid(); ok {
		q.Bid = int64(bid)
	}
	if ask, ok := h.quoter.BestAsk(); ok {
		q.Ask = int64(ask)
	}
	data, err := json.Marshal(q)
	if err != nil {
		return
	}
	h.broadcast(data)
}

// ClientCount returns the number of live subscribers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", slog.Any("error", err))
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
	slog.Info("Feed subscriber connected", slog.String("remote", conn.RemoteAddr().String()))

	// Reader loop: subscribers send nothing, but reading is how the
	// peer's close frame is noticed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(conn)
				return
			}
		}
	}()
}

func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn]; ok {
		conn.Close()
		delete(h.conns, conn)
	}
}
