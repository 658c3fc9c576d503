package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"market_go/internal/app"
	"market_go/internal/domain"
	"market_go/internal/engine"
	"market_go/internal/infra"
	"market_go/internal/sim"
	"market_go/pkg/quant"
)

func main() {
	defer infra.Recover()

	configPath := flag.String("config", "", "path to sim.yaml (default: auto-resolve)")
	flag.Parse()

	// 1. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Close()
	cfg := bootstrap.Config

	// 2. Seed the single RNG stream. Everything random flows from here.
	seed := cfg.Sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	infra.PrintBanner(cfg, seed)

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, bootstrap, rng, seed); err != nil {
		slog.Error("❌ Simulation failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, bootstrap *app.Bootstrap, rng *rand.Rand, seed int64) error {
	cfg := bootstrap.Config

	startCents, err := cfg.StartPriceCents()
	if err != nil {
		return err
	}

	if err := bootstrap.RecordRunMetadata(ctx, seed); err != nil {
		return fmt.Errorf("failed to record run metadata: %w", err)
	}

	// 4. Book, population, driver
	book := engine.NewBook(startCents, cfg.Sim.CloseHistorySeed)
	if bootstrap.Feed != nil {
		bootstrap.Feed.AttachQuotes(book)
	}
	if sink := bootstrap.Sink(); sink != nil {
		book.SetSink(sink)
	}

	traders, err := sim.BuildPopulation(cfg.Traders, rng, startCents.Dollars())
	if err != nil {
		return fmt.Errorf("failed to build population: %w", err)
	}
	slog.Info("✅ Population built", slog.Int("traders", len(traders)))

	driver := sim.NewDriver(book, traders, rng, cfg.Sim.FundamentalVol)

	sl := cfg.Sim.SeedLiquidity
	if sl.Levels > 0 {
		spacing := quant.PriceCents(sl.SpacingCents)
		if spacing <= 0 {
			spacing = quant.TickCents
		}
		if err := driver.SeedLiquidity(sl.Levels, quant.Qty(sl.Qty), spacing); err != nil {
			return fmt.Errorf("failed to seed liquidity: %w", err)
		}
		slog.Info("✅ Book seeded", slog.Int("levels", sl.Levels), slog.Int64("qty", sl.Qty))
	}

	// 5. Run the session
	slog.Info("▶️  Running", slog.Int("days", cfg.Sim.Days))
	stats, err := driver.Run(ctx, cfg.Sim.Days)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			return err
		}
		slog.Warn("⏹️  Interrupted, reporting completed days",
			slog.Int("completed", len(stats)))
	}

	printSummary(stats)

	// 6. Persist the final book state for later inspection.
	if bootstrap.Snapshots != nil {
		snap := book.Snapshot()
		if err := bootstrap.Snapshots.Save(snap); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		keep := cfg.Storage.SnapshotKeep
		if keep > 0 {
			if err := bootstrap.Snapshots.Cleanup(keep); err != nil {
				slog.Warn("Snapshot cleanup failed", slog.Any("error", err))
			}
		}
		slog.Info("✅ Snapshot saved", slog.Int("day", snap.Day))
	}

	return nil
}

func printSummary(stats []domain.DayStats) {
	fmt.Println()
	fmt.Println("  DAY   TRADES   VOLUME       CLOSE        VWAP")
	fmt.Println("  ---   ------   ------       -----        ----")
	for _, s := range stats {
		closePx := decimal.New(int64(s.CloseCents), -2)
		vwap := decimal.New(int64(s.VWAPCents), -2)
		fmt.Printf("  %3d   %6d   %6d   %9s   %9s\n",
			s.Day, s.Trades, s.Volume, closePx.StringFixed(2), vwap.StringFixed(2))
	}
	fmt.Println()
}
