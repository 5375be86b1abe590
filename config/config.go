// Package config aggregates every subsystem's configuration into one file
// that fully determines a run. Loading validates everything up front so a
// bad knob fails before the first bar, never mid-run.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/veloxfx/fxlab/costs"
	"github.com/veloxfx/fxlab/engine"
	"github.com/veloxfx/fxlab/indicators"
	"github.com/veloxfx/fxlab/micro"
	"github.com/veloxfx/fxlab/psychology"
	"github.com/veloxfx/fxlab/regime"
	"github.com/veloxfx/fxlab/risk"
	"github.com/veloxfx/fxlab/robust"
	"github.com/veloxfx/fxlab/session"
	"github.com/veloxfx/fxlab/strategy"
)

// Config is the complete run configuration.
type Config struct {
	Symbol string `json:"symbol" yaml:"symbol"`

	Engine     engine.Config      `json:"engine" yaml:"engine"`
	Session    session.Config     `json:"session" yaml:"session"`
	Regime     regime.Config      `json:"regime" yaml:"regime"`
	Strategy   strategy.Config    `json:"strategy" yaml:"strategy"`
	Psychology psychology.Config  `json:"psychology" yaml:"psychology"`
	Costs      costs.Config       `json:"costs" yaml:"costs"`
	Micro      micro.Config       `json:"micro" yaml:"micro"`
	Risk       risk.Config        `json:"risk" yaml:"risk"`
	Periods    indicators.Periods `json:"periods" yaml:"periods"`

	WalkForward robust.WalkForwardConfig `json:"walk_forward" yaml:"walk_forward"`
	MonteCarlo  robust.MonteCarloConfig  `json:"monte_carlo" yaml:"monte_carlo"`

	Journal JournalConfig `json:"journal" yaml:"journal"`
	Store   StoreConfig   `json:"store" yaml:"store"`
}

// JournalConfig selects where run output lands.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite", or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// StoreConfig points at the ClickHouse bar store. Empty DSN means bars come
// from CSV files instead.
type StoreConfig struct {
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
}

// LoadFromFile reads YAML or JSON by content and validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths, JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks every subsystem section.
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}

	for _, v := range []interface{ Validate() error }{
		c.Engine, c.Session, c.Regime, c.Strategy, c.Psychology,
		c.Costs, c.Micro, c.Risk, c.WalkForward, c.MonteCarlo,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}

	switch c.Journal.Type {
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "none", "":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite', or 'none'")
	}

	return nil
}

// EngineOptions assembles the engine wiring from this config.
func (c *Config) EngineOptions() engine.Options {
	return engine.Options{
		Engine:     c.Engine,
		Session:    c.Session,
		Regime:     c.Regime,
		Strategy:   c.Strategy,
		Psychology: c.Psychology,
		Costs:      c.Costs,
		Micro:      c.Micro,
		Risk:       c.Risk,
		Periods:    c.Periods,
	}
}

// Default returns a configuration with every subsystem at its defaults.
func Default() *Config {
	return &Config{
		Symbol:      "EURUSD",
		Engine:      engine.Default(),
		Session:     session.Default(),
		Regime:      regime.Default(),
		Strategy:    strategy.Default(),
		Psychology:  psychology.Default(),
		Costs:       costs.Default(),
		Micro:       micro.Default(),
		Risk:        risk.Default(),
		Periods:     indicators.DefaultPeriods(),
		WalkForward: robust.DefaultWalkForward(),
		MonteCarlo:  robust.DefaultMonteCarlo(),
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
		},
	}
}
