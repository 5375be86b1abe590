package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veloxfx/fxlab/market"
	"github.com/veloxfx/fxlab/store"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load bar CSV files into the ClickHouse store",
	Long: `Ingest validates bar CSV files and batch-inserts them into ClickHouse.
Re-ingesting the same span is safe: rows deduplicate on (symbol, time).

Example:
  fxlab ingest -c fxlab.yaml data/eurusd_jan.csv data/eurusd_feb.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Store.DSN == "" {
		return fmt.Errorf("store.dsn is not configured")
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.Store.DSN)
	if err != nil {
		return err
	}
	defer st.Close()

	total := 0
	for _, path := range args {
		series, err := market.LoadCSV(path, cfg.Symbol)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := st.SaveBars(ctx, series); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		total += len(series.Bars)
		log.Info().Str("file", path).Int("bars", len(series.Bars)).Msg("ingested")
	}

	fmt.Printf("ingested %d bars for %s\n", total, cfg.Symbol)
	return nil
}
