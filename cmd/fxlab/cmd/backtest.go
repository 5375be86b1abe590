package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veloxfx/fxlab/engine"
	"github.com/veloxfx/fxlab/pkg/id"
	"github.com/veloxfx/fxlab/report"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a single backtest over historical bars",
	Long: `Backtest replays a bar series through the full veto pipeline and
prints the performance summary. Trades and the equity curve are journaled
per the config.

Example:
  fxlab backtest --bars data/eurusd_m2.csv
  fxlab backtest -c fxlab.yaml --from 2025-01-01 --to 2025-06-01`,
	RunE: runBacktest,
}

var (
	btBarsPath string
	btFrom     string
	btTo       string
	btSeed     int64
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btBarsPath, "bars", "b", "", "path to bar CSV (time,open,high,low,close,volume,spread)")
	backtestCmd.Flags().StringVar(&btFrom, "from", "", "start date (store source only)")
	backtestCmd.Flags().StringVar(&btTo, "to", "", "end date, exclusive (store source only)")
	backtestCmd.Flags().Int64Var(&btSeed, "seed", -1, "override run seed (-1 keeps the config value)")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if btSeed >= 0 {
		cfg.Engine.Seed = btSeed
	}

	ctx := context.Background()
	series, err := loadSeries(ctx, cfg, btBarsPath, btFrom, btTo)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}

	opts := cfg.EngineOptions()
	opts.Logger = log
	eng, err := engine.New(opts)
	if err != nil {
		return err
	}

	log.Info().
		Str("symbol", cfg.Symbol).
		Int("bars", len(series.Bars)).
		Int64("seed", cfg.Engine.Seed).
		Msg("starting backtest")

	res, err := eng.Run(ctx, series)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	runID := id.NewGenerator(cfg.Engine.Seed).At(series.Bars[0].Time)
	if err := persistResult(cfg, runID, res); err != nil {
		return err
	}

	fmt.Printf("run %s\n%s", runID, report.Compute(res))
	return nil
}
