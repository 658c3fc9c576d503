// Package backtest rebuilds a completed simulation from its persisted
// event stream. The rebuilt ledgers and day statistics must match what
// the live run produced; anything else means the stored stream is not
// the whole truth.
package backtest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"market_go/internal/domain"
	"market_go/internal/event"
	"market_go/internal/storage"
	"market_go/pkg/quant"
	"market_go/pkg/safe"
)

// Replayer reads the trade event log back from SQLite and folds it into
// per-day ledgers.
type Replayer struct {
	store *storage.TradeStore
}

// NewReplayer opens the trade database at dbPath.
func NewReplayer(dbPath string) (*Replayer, error) {
	store, err := storage.NewTradeStore(dbPath)
	if err != nil {
		return nil, err
	}
	return &Replayer{store: store}, nil
}

// Close releases the underlying store.
func (r *Replayer) Close() error {
	return r.store.Close()
}

// Metadata reads one run-metadata key stored alongside the trades.
func (r *Replayer) Metadata(ctx context.Context, key string) (string, error) {
	return r.store.GetMetadata(ctx, key)
}

// Result is the state reconstructed from the event stream.
type Result struct {
	Ledger map[int][]domain.Trade   // per-day fills, in execution order
	Closes map[int]quant.PriceCents // per-day closing price
	Stats  []domain.DayStats        // ascending by day
}

// Rebuild loads every event from seq 1 and folds it into a Result.
// Events arrive in sequence order, which is execution order.
func (r *Replayer) Rebuild(ctx context.Context) (*Result, error) {
	events, err := r.store.LoadEvents(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	res := &Result{
		Ledger: make(map[int][]domain.Trade),
		Closes: make(map[int]quant.PriceCents),
	}

	var lastSeq uint64
	for _, ev := range events {
		seq := ev.GetSeq()
		if seq <= lastSeq {
			return nil, fmt.Errorf("event stream out of order: seq %d after %d", seq, lastSeq)
		}
		lastSeq = seq

		switch e := ev.(type) {
		case event.TradeEvent:
			day := e.GetTime().Day
			res.Ledger[day] = append(res.Ledger[day], e.Trade)
		case event.DayCloseEvent:
			res.Closes[e.Day] = e.CloseCents
		default:
			slog.Warn("Unknown event type in log", slog.Any("type", ev.GetType()))
		}
	}

	res.Stats = buildStats(res)
	return res, nil
}

func buildStats(res *Result) []domain.DayStats {
	days := make([]int, 0, len(res.Closes))
	for day := range res.Closes {
		days = append(days, day)
	}
	sort.Ints(days)

	stats := make([]domain.DayStats, 0, len(days))
	for _, day := range days {
		trades := res.Ledger[day]
		var volume, notional int64
		for _, tr := range trades {
			volume = safe.Add(volume, int64(tr.Qty))
			notional = safe.Add(notional, safe.Mul(int64(tr.PriceCents), int64(tr.Qty)))
		}
		var vwap quant.PriceCents
		if volume > 0 {
			vwap = quant.PriceCents(safe.Div(notional, volume))
		}
		stats = append(stats, domain.DayStats{
			Day:        day,
			Trades:     len(trades),
			Volume:     volume,
			CloseCents: res.Closes[day],
			VWAPCents:  vwap,
		})
	}
	return stats
}
