package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	verbose bool

	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fxlab",
	Short: "A deterministic FX backtesting and robustness research tool",
	Long: `fxlab replays historical FX bars through a veto-pipeline trading
simulator and stress-tests the results.

It provides tools for:
  - Bar-by-bar backtests with regime, session, and behavioral filters
  - Realistic execution costs: spread, slippage, commission, swap
  - Walk-forward evaluation over rolling out-of-sample windows
  - Monte Carlo resampling of trade sequences
  - Cost calibration from recorded spread data
  - Bar storage in ClickHouse and CSV`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Missing .env is fine; environment wins over file values.
		_ = godotenv.Load()

		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to YAML/JSON config (defaults used if empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log per-bar veto and position diagnostics")
}
