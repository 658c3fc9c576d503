// Package sim drives the simulation: it owns the day loop, the per-day
// randomized query order, the fundamental price process, and the seed
// liquidity. The engine stays single-threaded — every Submit and Cancel
// happens sequentially on the driver's goroutine, and determinism follows
// from consuming one RNG in a fixed order: the day's permutation first,
// then each trader's decision draws in permutation order.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"market_go/internal/domain"
	"market_go/internal/engine"
	"market_go/internal/trader"
	"market_go/pkg/quant"
	"market_go/pkg/safe"
)

// SeedOwner marks the synthetic initial-liquidity orders. It is never
// registered with the book, so fills against it touch no registry entry.
const SeedOwner = "seed"

// Driver runs trading days against one book.
type Driver struct {
	book    *engine.Book
	traders []trader.Trader
	rng     *rand.Rand
	vol     float64 // stddev of the daily fundamental increment; 0 = constant
}

// NewDriver wires a driver to its book and population. Each driver must
// own a fully independent book/trader/rng triple: parallel Monte Carlo
// replications share nothing.
func NewDriver(book *engine.Book, traders []trader.Trader, rng *rand.Rand, vol float64) *Driver {
	for _, t := range traders {
		book.RegisterParticipant(t.ID())
	}
	return &Driver{book: book, traders: traders, rng: rng, vol: vol}
}

// SeedLiquidity rests seed-owner limit orders on both sides of the last
// trade price: `levels` prices per side, `spacing` apart, `qty` shares
// each. Gives opening market orders a counterparty.
func (d *Driver) SeedLiquidity(levels int, qty quant.Qty, spacing quant.PriceCents) error {
	mid := d.book.LastTradePrice()
	for i := 1; i <= levels; i++ {
		step := quant.PriceCents(i) * spacing
		ask := &domain.Order{
			ID:         fmt.Sprintf("seed-ask-%d", i),
			Owner:      SeedOwner,
			Side:       domain.Sell,
			Type:       domain.TypeLimit,
			PriceCents: mid + step,
			Qty:        qty,
			Placed:     d.book.Now(),
		}
		if err := d.book.Submit(ask); err != nil {
			return fmt.Errorf("seed ask level %d: %w", i, err)
		}
		bid := &domain.Order{
			ID:         fmt.Sprintf("seed-bid-%d", i),
			Owner:      SeedOwner,
			Side:       domain.Buy,
			Type:       domain.TypeLimit,
			PriceCents: mid - step,
			Qty:        qty,
			Placed:     d.book.Now(),
		}
		if err := d.book.Submit(bid); err != nil {
			return fmt.Errorf("seed bid level %d: %w", i, err)
		}
	}
	return nil
}

// Run simulates the given number of days and returns per-day statistics.
func (d *Driver) Run(ctx context.Context, days int) ([]domain.DayStats, error) {
	stats := make([]domain.DayStats, 0, days)
	for i := 0; i < days; i++ {
		st, err := d.RunDay(ctx)
		if err != nil {
			return stats, err
		}
		stats = append(stats, st)
		slog.Info("Day complete",
			slog.Int("day", st.Day),
			slog.Int("trades", st.Trades),
			slog.Int64("volume", st.Volume),
			slog.String("close", st.CloseCents.String()))
	}
	return stats, nil
}

// RunDay perturbs the fundamental, queries every trader once in a fresh
// random permutation, then closes the day.
func (d *Driver) RunDay(ctx context.Context) (domain.DayStats, error) {
	if d.vol > 0 {
		d.book.SetFundamental(d.book.Fundamental() + d.rng.NormFloat64()*d.vol)
	}

	perm := d.rng.Perm(len(d.traders))
	for _, idx := range perm {
		if err := ctx.Err(); err != nil {
			return domain.DayStats{}, err
		}
		d.book.AdvanceTick()
		d.apply(d.traders[idx].Quote(d.book))
	}

	stats := d.dayStats()
	d.book.AdvanceDay()
	return stats, nil
}

// apply executes one trader decision. Order-level failures are the
// trader's problem, not the run's: a vanished cancellation target or a
// dried-up book side is logged and the day goes on.
func (d *Driver) apply(dec trader.Decision) {
	if dec.Cancel != nil {
		if err := d.book.Cancel(dec.Cancel); err != nil {
			slog.Warn("Cancel rejected",
				slog.String("owner", dec.Cancel.Owner),
				slog.Any("error", err))
		}
	}
	if dec.Submit != nil {
		if err := d.book.Submit(dec.Submit); err != nil {
			switch {
			case errors.Is(err, engine.ErrEmptyBookSide):
				slog.Warn("Market order ran out of liquidity",
					slog.String("owner", dec.Submit.Owner),
					slog.Any("error", err))
			case errors.Is(err, engine.ErrInvalidOrder):
				slog.Warn("Order rejected",
					slog.String("owner", dec.Submit.Owner),
					slog.Any("error", err))
			default:
				slog.Error("Submit failed",
					slog.String("owner", dec.Submit.Owner),
					slog.Any("error", err))
			}
		}
	}
}

// dayStats summarizes the current (still open) day from its ledger page.
func (d *Driver) dayStats() domain.DayStats {
	day := d.book.Day()
	trades := d.book.LedgerForDay(day)

	var volume, notional int64
	for _, tr := range trades {
		volume = safe.Add(volume, int64(tr.Qty))
		notional = safe.Add(notional, safe.Mul(int64(tr.PriceCents), int64(tr.Qty)))
	}
	st := domain.DayStats{
		Day:        day,
		Trades:     len(trades),
		Volume:     volume,
		CloseCents: d.book.LastTradePrice(),
	}
	if volume > 0 {
		st.VWAPCents = quant.PriceCents(safe.Div(notional, volume))
	}
	return st
}
