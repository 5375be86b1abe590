package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veloxfx/fxlab/calibrate"
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Estimate spread and slippage costs from recorded bars",
	Long: `Calibrate measures the spread distribution of a bar series and derives
a slippage proxy from bar-to-bar mid changes. Feed the printed numbers back
into the costs section of the config, or use them to sanity-check the
fixed constants.`,
	RunE: runCalibrate,
}

var (
	calBarsPath string
	calFrom     string
	calTo       string
	calLookback int
)

func init() {
	rootCmd.AddCommand(calibrateCmd)

	calibrateCmd.Flags().StringVarP(&calBarsPath, "bars", "b", "", "path to bar CSV")
	calibrateCmd.Flags().StringVar(&calFrom, "from", "", "start date (store source only)")
	calibrateCmd.Flags().StringVar(&calTo, "to", "", "end date, exclusive (store source only)")
	calibrateCmd.Flags().IntVar(&calLookback, "lookback", 0, "trailing bars to measure (0 = all)")
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	series, err := loadSeries(ctx, cfg, calBarsPath, calFrom, calTo)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}

	stats, err := calibrate.FromSeries(series, calLookback)
	if err != nil {
		return err
	}

	fmt.Println(stats)
	fmt.Printf("\nsuggested config:\n")
	fmt.Printf("costs:\n")
	fmt.Printf("  spread_pips: %.2f\n", stats.SpreadMedian)
	fmt.Printf("  slippage_pips: %.2f\n", stats.SlippagePips)
	fmt.Printf("  median_spread_pips: %.2f\n", stats.SpreadMedian)
	return nil
}
