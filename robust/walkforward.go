// Package robust stress-tests a configuration: walk-forward runs it over
// rolling out-of-sample windows, Monte Carlo resamples its trade sequence.
// Neither changes the engine; both call it.
package robust

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/veloxfx/fxlab/engine"
	"github.com/veloxfx/fxlab/market"
	"github.com/veloxfx/fxlab/report"
)

// WalkForwardConfig shapes the rolling window schedule.
type WalkForwardConfig struct {
	TrainDays int `yaml:"train_days" json:"train_days"`
	TestDays  int `yaml:"test_days" json:"test_days"`
	StepDays  int `yaml:"step_days" json:"step_days"`
}

func DefaultWalkForward() WalkForwardConfig {
	return WalkForwardConfig{TrainDays: 20, TestDays: 5, StepDays: 5}
}

func (c WalkForwardConfig) Validate() error {
	if c.TrainDays <= 0 || c.TestDays <= 0 || c.StepDays <= 0 {
		return fmt.Errorf("robust: walk-forward windows must be positive")
	}
	return nil
}

// Window is one out-of-sample evaluation. Err is set when the window run
// failed; a failed window never aborts its siblings.
type Window struct {
	Index     int            `json:"index"`
	TrainFrom time.Time      `json:"train_from"`
	TestFrom  time.Time      `json:"test_from"`
	TestTo    time.Time      `json:"test_to"`
	Summary   report.Summary `json:"summary"`
	Err       error          `json:"-"`
}

// WalkForward runs the engine over each test window. The train span is
// prepended to every window so the warmup indicators see real history; the
// summary covers only out-of-sample trades. Windows run concurrently.
func WalkForward(ctx context.Context, cfg WalkForwardConfig, eng *engine.Engine, series *market.Series, log zerolog.Logger) ([]Window, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if series == nil || len(series.Bars) == 0 {
		return nil, engine.ErrNoSeries
	}

	train := time.Duration(cfg.TrainDays) * 24 * time.Hour
	test := time.Duration(cfg.TestDays) * 24 * time.Hour
	step := time.Duration(cfg.StepDays) * 24 * time.Hour

	start := series.Bars[0].Time
	end := series.Bars[len(series.Bars)-1].Time

	var windows []Window
	for idx, t0 := 0, start; t0.Add(train + test).Before(end) || t0.Add(train+test).Equal(end); idx, t0 = idx+1, t0.Add(step) {
		windows = append(windows, Window{
			Index:     idx,
			TrainFrom: t0,
			TestFrom:  t0.Add(train),
			TestTo:    t0.Add(train + test),
		})
	}
	if len(windows) == 0 {
		return nil, fmt.Errorf("robust: series span too short for %d+%d day windows", cfg.TrainDays, cfg.TestDays)
	}

	var wg sync.WaitGroup
	for i := range windows {
		wg.Add(1)
		go func(w *Window) {
			defer wg.Done()
			runWindow(ctx, eng, series, w, log)
		}(&windows[i])
	}
	wg.Wait()

	return windows, nil
}

func runWindow(ctx context.Context, eng *engine.Engine, series *market.Series, w *Window, log zerolog.Logger) {
	slice := series.Slice(w.TrainFrom, w.TestTo)
	res, err := eng.Run(ctx, slice)
	if err != nil {
		w.Err = fmt.Errorf("window %d: %w", w.Index, err)
		log.Warn().Int("window", w.Index).Err(err).Msg("walk-forward window failed")
		return
	}

	// Strip in-sample trades so the summary is purely out-of-sample.
	oos := &engine.Result{
		Symbol:         res.Symbol,
		InitialBalance: res.InitialBalance,
		FinalBalance:   res.InitialBalance,
		Vetoes:         res.Vetoes,
	}
	for _, t := range res.Trades {
		if !t.OpenTime.Before(w.TestFrom) {
			oos.Trades = append(oos.Trades, t)
			oos.FinalBalance += t.NetPnL
		}
	}
	for _, p := range res.Equity {
		if !p.Time.Before(w.TestFrom) {
			oos.Equity = append(oos.Equity, p)
		}
	}

	w.Summary = report.Compute(oos)
	log.Info().
		Int("window", w.Index).
		Time("test_from", w.TestFrom).
		Int("trades", w.Summary.TotalTrades).
		Float64("return", w.Summary.TotalReturn).
		Msg("walk-forward window done")
}

// Profitable counts windows with positive net profit, ignoring failures.
func Profitable(windows []Window) (profitable, failed int) {
	for _, w := range windows {
		switch {
		case w.Err != nil:
			failed++
		case w.Summary.NetProfit > 0:
			profitable++
		}
	}
	return profitable, failed
}
