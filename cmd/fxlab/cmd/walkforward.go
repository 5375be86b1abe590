package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veloxfx/fxlab/engine"
	"github.com/veloxfx/fxlab/robust"
)

var walkforwardCmd = &cobra.Command{
	Use:   "walkforward",
	Short: "Evaluate the configuration over rolling out-of-sample windows",
	Long: `Walkforward slices the series into rolling train/test windows and runs
the engine on each, reporting per-window and aggregate out-of-sample
results. A strategy that only profits in one window is curve-fit.`,
	RunE: runWalkforward,
}

var (
	wfBarsPath string
	wfFrom     string
	wfTo       string
)

func init() {
	rootCmd.AddCommand(walkforwardCmd)

	walkforwardCmd.Flags().StringVarP(&wfBarsPath, "bars", "b", "", "path to bar CSV")
	walkforwardCmd.Flags().StringVar(&wfFrom, "from", "", "start date (store source only)")
	walkforwardCmd.Flags().StringVar(&wfTo, "to", "", "end date, exclusive (store source only)")
}

func runWalkforward(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	series, err := loadSeries(ctx, cfg, wfBarsPath, wfFrom, wfTo)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}

	opts := cfg.EngineOptions()
	opts.Logger = log
	eng, err := engine.New(opts)
	if err != nil {
		return err
	}

	windows, err := robust.WalkForward(ctx, cfg.WalkForward, eng, series, log)
	if err != nil {
		return fmt.Errorf("walk-forward: %w", err)
	}

	fmt.Printf("%-4s %-12s %-12s %8s %10s %10s\n", "win", "test from", "test to", "trades", "return", "maxdd")
	for _, w := range windows {
		if w.Err != nil {
			fmt.Printf("%-4d %-12s %-12s   failed: %v\n",
				w.Index, w.TestFrom.Format("2006-01-02"), w.TestTo.Format("2006-01-02"), w.Err)
			continue
		}
		fmt.Printf("%-4d %-12s %-12s %8d %9.2f%% %9.2f%%\n",
			w.Index,
			w.TestFrom.Format("2006-01-02"),
			w.TestTo.Format("2006-01-02"),
			w.Summary.TotalTrades,
			w.Summary.TotalReturn*100,
			w.Summary.MaxDrawdown*100,
		)
	}

	profitable, failed := robust.Profitable(windows)
	fmt.Printf("\n%d/%d windows profitable, %d failed\n", profitable, len(windows)-failed, failed)
	return nil
}
