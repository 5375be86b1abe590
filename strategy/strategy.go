// Package strategy generates directional entry signals when the market
// regime permits. The strategy proposes; risk, psychology, and costs decide
// whether anything actually happens.
package strategy

import (
	"fmt"
	"math"

	"github.com/veloxfx/fxlab/indicators"
	"github.com/veloxfx/fxlab/market"
	"github.com/veloxfx/fxlab/regime"
)

const (
	NameTrendFollowing = "trend_following"
	NameMeanReversion  = "mean_reversion"
)

// Config holds the signal-generation parameters.
type Config struct {
	ATRStopMultiplier float64 `yaml:"atr_stop_multiplier" json:"atr_stop_multiplier"`
	TargetRMultiple   float64 `yaml:"target_r_multiple" json:"target_r_multiple"`
	RRMin             float64 `yaml:"rr_min" json:"rr_min"`
	// ExtendedMultiplier does double duty: it vetoes extended decision
	// candles (range > atr*mult) and widens stops under the extreme
	// volatility class to reduce premature stop-outs.
	ExtendedMultiplier float64 `yaml:"extended_multiplier" json:"extended_multiplier"`
	ZScoreEntry        float64 `yaml:"zscore_entry" json:"zscore_entry"`
	MeanReversionOnly  bool    `yaml:"mean_reversion_only" json:"mean_reversion_only"`
}

func Default() Config {
	return Config{
		ATRStopMultiplier:  1.5,
		TargetRMultiple:    2.0,
		RRMin:              2.0,
		ExtendedMultiplier: 1.5,
		ZScoreEntry:        2.0,
	}
}

func (c Config) Validate() error {
	if c.ATRStopMultiplier <= 0 {
		return fmt.Errorf("strategy: atr_stop_multiplier must be positive")
	}
	if c.TargetRMultiple <= 0 {
		return fmt.Errorf("strategy: target_r_multiple must be positive")
	}
	if c.RRMin <= 0 {
		return fmt.Errorf("strategy: rr_min must be positive")
	}
	if c.ExtendedMultiplier <= 0 {
		return fmt.Errorf("strategy: extended_multiplier must be positive")
	}
	if c.ZScoreEntry <= 0 {
		return fmt.Errorf("strategy: zscore_entry must be positive")
	}
	return nil
}

// Signal is a fully priced entry proposal for one bar. Produced fresh each
// bar and never persisted.
type Signal struct {
	Side     market.Side
	Strategy string

	Entry          float64
	Stop           float64
	Target         float64
	StopDistance   float64
	TargetDistance float64

	// RiskMultiplier folds the regime multiplier and HTF alignment into a
	// single scale the sizer applies to the per-trade risk budget.
	RiskMultiplier float64
}

// Evaluate produces at most one signal for the decision bar. Trend-following
// takes priority over mean-reversion unless MeanReversionOnly disables it.
// A nil return is a veto, not an error.
func Evaluate(cfg Config, bar market.Bar, snap indicators.Snapshot, st regime.State) *Signal {
	if !st.TradeAllowed {
		return nil
	}
	if snap.ATR <= 0 || !isFinite(snap.ATR) {
		return nil
	}

	var sig *Signal
	if !cfg.MeanReversionOnly && st.Bias == regime.BiasTrend {
		sig = trendFollowing(cfg, bar, snap, st)
	} else if st.Bias == regime.BiasMeanReversion || cfg.MeanReversionOnly {
		sig = meanReversion(cfg, bar, snap, st)
	}
	if sig == nil {
		return nil
	}

	// Avoid chasing: skip signals off an extended decision candle.
	if bar.Range() > snap.ATR*cfg.ExtendedMultiplier {
		return nil
	}

	// Reward:risk below the floor suppresses the signal outright; it is
	// never resized to fit.
	if sig.StopDistance <= 0 || sig.TargetDistance/sig.StopDistance < cfg.RRMin {
		return nil
	}

	return sig
}

// trendFollowing trades pullbacks to the fast EMA in the direction of the
// fast/slow EMA relationship, scaled by higher-timeframe alignment.
func trendFollowing(cfg Config, bar market.Bar, snap indicators.Snapshot, st regime.State) *Signal {
	var side market.Side
	switch {
	case snap.EMAFast > snap.EMASlow:
		// Uptrend: wait for a dip through the fast EMA that closes back above.
		if bar.Low <= snap.EMAFast && bar.Close > snap.EMAFast {
			side = market.Long
		}
	case snap.EMAFast < snap.EMASlow:
		if bar.High >= snap.EMAFast && bar.Close < snap.EMAFast {
			side = market.Short
		}
	}
	if side == 0 {
		return nil
	}

	aligned := (side == market.Long && st.HTF == regime.HTFUp) ||
		(side == market.Short && st.HTF == regime.HTFDown)

	htfMult := 0.0
	switch {
	case aligned:
		htfMult = 1.0
	case st.HTF == regime.HTFFlat:
		htfMult = 0.5
	}

	mult := st.RiskMultiplier * htfMult
	if mult <= 0 {
		// Counter-trend against the higher timeframe: no trade.
		return nil
	}

	sig := price(cfg, side, NameTrendFollowing, bar, snap, st)
	sig.RiskMultiplier = mult
	return sig
}

// meanReversion fades z-score extremes of the close.
func meanReversion(cfg Config, bar market.Bar, snap indicators.Snapshot, st regime.State) *Signal {
	var side market.Side
	switch {
	case snap.ZScore > cfg.ZScoreEntry:
		side = market.Short
	case snap.ZScore < -cfg.ZScoreEntry:
		side = market.Long
	default:
		return nil
	}

	sig := price(cfg, side, NameMeanReversion, bar, snap, st)
	sig.RiskMultiplier = st.RiskMultiplier
	return sig
}

// price turns a direction into explicit stop/target levels so the execution
// layer has zero ambiguity.
func price(cfg Config, side market.Side, name string, bar market.Bar, snap indicators.Snapshot, st regime.State) *Signal {
	stopDist := snap.ATR * cfg.ATRStopMultiplier
	if st.Volatility == regime.VolExtreme {
		// Wider stops under extreme volatility to survive spike noise.
		stopDist *= cfg.ExtendedMultiplier
	}
	targetDist := stopDist * cfg.TargetRMultiple

	entry := bar.Close
	sig := &Signal{
		Side:           side,
		Strategy:       name,
		Entry:          entry,
		StopDistance:   stopDist,
		TargetDistance: targetDist,
	}
	if side == market.Long {
		sig.Stop = entry - stopDist
		sig.Target = entry + targetDist
	} else {
		sig.Stop = entry + stopDist
		sig.Target = entry - targetDist
	}
	return sig
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
