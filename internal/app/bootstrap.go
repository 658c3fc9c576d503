package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"market_go/internal/event"
	"market_go/internal/feed"
	"market_go/internal/infra"
	"market_go/internal/storage"
)

// Bootstrap orchestrates the application startup sequence: config,
// logger, data directories, trade store, optional feed. Close releases
// everything it opened.
type Bootstrap struct {
	Config    *infra.Config
	Store     *storage.TradeStore
	Snapshots *storage.SnapshotManager
	Feed      *feed.Hub

	unlock func()
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization.
func (b *Bootstrap) Initialize(configPath string) error {
	if configPath == "" {
		configPath = infra.ResolveConfigPath()
	}
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)
	slog.Info("🚀 Bootstrapping market simulator", slog.String("config", configPath))

	if cfg.Storage.Enabled {
		dataDir := cfg.Storage.Dir
		if dataDir == "" {
			dataDir = filepath.Join(infra.GetWorkspaceDir(), "data")
		}
		if err := infra.EnsureDir(dataDir); err != nil {
			return fmt.Errorf("failed to create data dir: %w", err)
		}

		// The trade store is single-writer; block a second process on
		// the same data directory.
		unlock, err := infra.CreateLockFile(dataDir)
		if err != nil {
			return err
		}
		b.unlock = unlock

		dbPath := filepath.Join(dataDir, "trades.db")
		store, err := storage.NewTradeStore(dbPath)
		if err != nil {
			return err
		}
		b.Store = store
		b.Snapshots = storage.NewSnapshotManager(filepath.Join(dataDir, "snapshots"))
		slog.Info("✅ TradeStore initialized (WAL-mode)", slog.String("path", dbPath))
	}

	if cfg.Feed.Enabled {
		hub := feed.NewHub(cfg.Feed.Addr)
		if err := hub.Start(); err != nil {
			return fmt.Errorf("failed to start feed: %w", err)
		}
		b.Feed = hub
		slog.Info("✅ Feed ready", slog.String("addr", hub.Addr()))
	}

	return nil
}

// RecordRunMetadata stores the parameters needed to reproduce this run
// alongside its trades.
func (b *Bootstrap) RecordRunMetadata(ctx context.Context, seed int64) error {
	if b.Store == nil {
		return nil
	}
	if err := b.Store.UpsertMetadata(ctx, "run:seed", strconv.FormatInt(seed, 10)); err != nil {
		return err
	}
	if err := b.Store.UpsertMetadata(ctx, "run:start_price", b.Config.Sim.StartPrice); err != nil {
		return err
	}
	return b.Store.UpsertMetadata(ctx, "run:days", strconv.Itoa(b.Config.Sim.Days))
}

// Sink builds the engine event sink from the configured outputs. A
// persistence failure is fatal: a gap in the stored stream would make
// the whole run unreplayable.
func (b *Bootstrap) Sink() event.Sink {
	var sinks []event.Sink
	if b.Store != nil {
		store := b.Store
		sinks = append(sinks, func(ev event.Event) {
			if err := store.SaveEvent(context.Background(), ev); err != nil {
				panic(fmt.Sprintf("PERSISTENCE_FAILURE: %v", err))
			}
		})
	}
	if b.Feed != nil {
		sinks = append(sinks, b.Feed.Sink())
	}
	switch len(sinks) {
	case 0:
		return nil
	case 1:
		return sinks[0]
	default:
		return func(ev event.Event) {
			for _, s := range sinks {
				s(ev)
			}
		}
	}
}

// Close shuts down everything Initialize opened, in reverse order.
func (b *Bootstrap) Close() {
	if b.Feed != nil {
		b.Feed.Stop()
	}
	if b.Store != nil {
		if err := b.Store.Close(); err != nil {
			slog.Warn("Failed to close trade store", slog.Any("error", err))
		}
	}
	if b.unlock != nil {
		b.unlock()
	}
}
