package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veloxfx/fxlab/engine"
	"github.com/veloxfx/fxlab/robust"
)

var montecarloCmd = &cobra.Command{
	Use:   "montecarlo",
	Short: "Resample the trade sequence to estimate outcome distributions",
	Long: `Montecarlo runs a backtest, then bootstraps its per-trade returns
thousands of times to estimate how much of the result is luck of ordering.
The same seed always produces the same distribution.`,
	RunE: runMontecarlo,
}

var (
	mcBarsPath   string
	mcFrom       string
	mcTo         string
	mcIterations int
	mcSeed       int64
)

func init() {
	rootCmd.AddCommand(montecarloCmd)

	montecarloCmd.Flags().StringVarP(&mcBarsPath, "bars", "b", "", "path to bar CSV")
	montecarloCmd.Flags().StringVar(&mcFrom, "from", "", "start date (store source only)")
	montecarloCmd.Flags().StringVar(&mcTo, "to", "", "end date, exclusive (store source only)")
	montecarloCmd.Flags().IntVarP(&mcIterations, "iterations", "n", 0, "override iteration count (0 keeps the config value)")
	montecarloCmd.Flags().Int64Var(&mcSeed, "seed", -1, "override resampling seed (-1 keeps the config value)")
}

func runMontecarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if mcIterations > 0 {
		cfg.MonteCarlo.Iterations = mcIterations
	}
	if mcSeed >= 0 {
		cfg.MonteCarlo.Seed = mcSeed
	}

	ctx := context.Background()
	series, err := loadSeries(ctx, cfg, mcBarsPath, mcFrom, mcTo)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}

	opts := cfg.EngineOptions()
	opts.Logger = log
	eng, err := engine.New(opts)
	if err != nil {
		return err
	}

	res, err := eng.Run(ctx, series)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	mc, err := robust.MonteCarlo(cfg.MonteCarlo, res)
	if err != nil {
		return fmt.Errorf("monte carlo: %w", err)
	}

	fmt.Printf("monte carlo: %d iterations over %d trades\n", mc.Iterations, mc.Trades)
	fmt.Printf("final balance  p5 / p50 / p95:  %.2f / %.2f / %.2f\n",
		mc.FinalBalance[5], mc.FinalBalance[50], mc.FinalBalance[95])
	fmt.Printf("max drawdown   p5 / p50 / p95:  %.2f%% / %.2f%% / %.2f%%\n",
		mc.MaxDrawdown[5]*100, mc.MaxDrawdown[50]*100, mc.MaxDrawdown[95]*100)
	fmt.Printf("p(end below start): %.2f%%\n", mc.RuinProbability*100)
	return nil
}
