package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/veloxfx/fxlab/config"
	"github.com/veloxfx/fxlab/engine"
	"github.com/veloxfx/fxlab/journal"
	"github.com/veloxfx/fxlab/market"
	"github.com/veloxfx/fxlab/store"
)

func loadConfig() (*config.Config, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(cfgPath)
}

// loadSeries reads bars from a CSV file when barsPath is set, otherwise from
// the ClickHouse store over [from, to).
func loadSeries(ctx context.Context, cfg *config.Config, barsPath, fromStr, toStr string) (*market.Series, error) {
	if barsPath != "" {
		return market.LoadCSV(barsPath, cfg.Symbol)
	}

	if cfg.Store.DSN == "" {
		return nil, fmt.Errorf("no bar source: pass --bars or set store.dsn in the config")
	}

	from, to, err := parseRange(fromStr, toStr)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Store.DSN)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	return st.LoadBars(ctx, cfg.Symbol, from, to)
}

func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("--from and --to are required when loading from the store")
	}
	from, err := parseDay(fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad --from: %w", err)
	}
	to, err := parseDay(toStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad --to: %w", err)
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to must be after --from")
	}
	return from, to, nil
}

// parseDay accepts either a date or a full RFC3339 timestamp.
func parseDay(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// openJournal returns the configured journal, or nil when journaling is off.
func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	}
	return nil, nil
}

func persistResult(cfg *config.Config, runID string, res *engine.Result) error {
	j, err := openJournal(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	if j == nil {
		return nil
	}
	defer j.Close()

	return journal.Record(j, runID, res)
}
