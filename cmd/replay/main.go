// Replays a persisted simulation from its trade database and prints the
// rebuilt per-day statistics. Running this after a live session is the
// cheapest audit of the event log: the numbers must match the session's.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"market_go/backtest"
	"market_go/internal/infra"
)

func main() {
	defer infra.Recover()

	dbPath := flag.String("db", "", "path to trades.db (default: workspace data dir)")
	flag.Parse()

	path := *dbPath
	if path == "" {
		path = filepath.Join(infra.GetWorkspaceDir(), "data", "trades.db")
	}
	if _, err := os.Stat(path); err != nil {
		slog.Error("❌ Trade database not found", slog.String("path", path))
		os.Exit(1)
	}

	if err := run(path); err != nil {
		slog.Error("❌ Replay failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(path string) error {
	r, err := backtest.NewReplayer(path)
	if err != nil {
		return err
	}
	defer r.Close()

	ctx := context.Background()
	res, err := r.Rebuild(ctx)
	if err != nil {
		return err
	}

	printMetadata(ctx, r)

	fmt.Println()
	fmt.Println("  DAY   TRADES   VOLUME       CLOSE        VWAP")
	fmt.Println("  ---   ------   ------       -----        ----")
	var totalTrades int
	var totalVolume int64
	for _, s := range res.Stats {
		closePx := decimal.New(int64(s.CloseCents), -2)
		vwap := decimal.New(int64(s.VWAPCents), -2)
		fmt.Printf("  %3d   %6d   %6d   %9s   %9s\n",
			s.Day, s.Trades, s.Volume, closePx.StringFixed(2), vwap.StringFixed(2))
		totalTrades += s.Trades
		totalVolume += s.Volume
	}
	fmt.Println()
	fmt.Printf("  %d days, %d trades, %d shares\n\n", len(res.Stats), totalTrades, totalVolume)
	return nil
}

func printMetadata(ctx context.Context, r *backtest.Replayer) {
	for _, key := range []string{"run:seed", "run:start_price", "run:days"} {
		if val, err := r.Metadata(ctx, key); err == nil && val != "" {
			fmt.Printf("  %-16s %s\n", key, val)
		}
	}
}
