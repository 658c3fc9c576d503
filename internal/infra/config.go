package infra

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"market_go/internal/sim"
	"market_go/pkg/quant"
)

// Config holds every knob of a simulation run. Loaded from YAML, then
// selectively overridden by MARKET_* environment variables so a batch
// runner can sweep seeds without rewriting config files.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Sim struct {
		Days int `yaml:"days"`
		// Seed 0 means derive from the wall clock.
		Seed int64 `yaml:"seed"`
		// StartPrice is a decimal string, e.g. "100.00".
		StartPrice       string  `yaml:"start_price"`
		FundamentalVol   float64 `yaml:"fundamental_vol"`
		CloseHistorySeed int     `yaml:"close_history_seed"`

		SeedLiquidity struct {
			Levels       int   `yaml:"levels"`
			Qty          int64 `yaml:"qty"`
			SpacingCents int64 `yaml:"spacing_cents"`
		} `yaml:"seed_liquidity"`
	} `yaml:"sim"`

	Traders []sim.CohortSpec `yaml:"traders"`

	Feed struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"feed"`

	Storage struct {
		Enabled      bool   `yaml:"enabled"`
		Dir          string `yaml:"dir"` // empty means workspace default
		SnapshotKeep int    `yaml:"snapshot_keep"`
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the config file, applies environment
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Sim.Days <= 0 {
		return fmt.Errorf("sim.days must be positive, got %d", c.Sim.Days)
	}
	if _, err := c.StartPriceCents(); err != nil {
		return err
	}
	if c.Sim.FundamentalVol < 0 {
		return fmt.Errorf("sim.fundamental_vol must not be negative")
	}
	if c.Sim.CloseHistorySeed <= 0 {
		return fmt.Errorf("sim.close_history_seed must be positive")
	}
	if len(c.Traders) == 0 {
		return fmt.Errorf("at least one trader cohort is required")
	}
	for i, cohort := range c.Traders {
		if cohort.Count <= 0 {
			return fmt.Errorf("traders[%d]: count must be positive", i)
		}
		switch cohort.Kind {
		case "fundamentalist", "chartist", "trender":
		default:
			return fmt.Errorf("traders[%d]: unknown kind %q", i, cohort.Kind)
		}
	}
	if c.Feed.Enabled && c.Feed.Addr == "" {
		return fmt.Errorf("feed.addr is required when the feed is enabled")
	}
	if c.Storage.SnapshotKeep < 0 {
		return fmt.Errorf("storage.snapshot_keep must not be negative")
	}
	return nil
}

// StartPriceCents parses the configured start price. Decimal parsing
// happens here at the boundary; everything past it is int64 cents.
func (c *Config) StartPriceCents() (quant.PriceCents, error) {
	d, err := decimal.NewFromString(c.Sim.StartPrice)
	if err != nil {
		return 0, fmt.Errorf("invalid sim.start_price %q: %w", c.Sim.StartPrice, err)
	}
	cents := d.Mul(decimal.NewFromInt(quant.PriceScale)).Round(0).IntPart()
	if cents <= 0 {
		return 0, fmt.Errorf("sim.start_price must be positive, got %q", c.Sim.StartPrice)
	}
	return quant.PriceCents(cents), nil
}

// overrideWithEnv applies MARKET_* environment variables on top of the
// file. Environment wins so sweeps can vary one knob per run.
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("MARKET_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Sim.Seed = seed
		}
	}
	if v := os.Getenv("MARKET_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.Sim.Days = days
		}
	}
	if v := os.Getenv("MARKET_DATA_DIR"); v != "" {
		cfg.Storage.Dir = v
	}
	if v := os.Getenv("MARKET_FEED_ADDR"); v != "" {
		cfg.Feed.Addr = v
	}
	if v := os.Getenv("MARKET_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
