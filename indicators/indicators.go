// Package indicators computes the technical measures consumed by the regime
// and strategy layers. All functions are pure over a trailing bar window; a
// window too short for the requested period yields 0, which callers treat
// as "not ready" (the engine never trades inside its warmup window anyway).
package indicators

import (
	"math"

	"github.com/veloxfx/fxlab/market"
)

// Periods fixes every lookback used by a run. Immutable once the run starts.
type Periods struct {
	ATR       int `yaml:"atr" json:"atr"`
	EMAFast   int `yaml:"ema_fast" json:"ema_fast"`
	EMASlow   int `yaml:"ema_slow" json:"ema_slow"`
	ADX       int `yaml:"adx" json:"adx"`
	ZScore    int `yaml:"zscore" json:"zscore"`
	ATRZScore int `yaml:"atr_zscore" json:"atr_zscore"`
}

// DefaultPeriods mirrors the production parameter set.
func DefaultPeriods() Periods {
	return Periods{
		ATR:       14,
		EMAFast:   20,
		EMASlow:   50,
		ADX:       14,
		ZScore:    20,
		ATRZScore: 20,
	}
}

// trueRange is the classic Wilder true range against the previous close.
func trueRange(cur, prev market.Bar) float64 {
	hl := cur.High - cur.Low
	hc := math.Abs(cur.High - prev.Close)
	lc := math.Abs(cur.Low - prev.Close)
	return math.Max(hl, math.Max(hc, lc))
}

// ATR returns the simple moving average of the true range over the last
// period bars.
func ATR(bars []market.Bar, period int) float64 {
	if period <= 0 || len(bars) < period+1 {
		return 0
	}
	sum := 0.0
	for i := len(bars) - period; i < len(bars); i++ {
		sum += trueRange(bars[i], bars[i-1])
	}
	return sum / float64(period)
}

// EMA returns the exponential moving average of closes, seeded from the
// first close in the window.
func EMA(bars []market.Bar, period int) float64 {
	if period <= 0 || len(bars) < period {
		return 0
	}
	alpha := 2.0 / float64(period+1)
	ema := bars[0].Close
	for _, b := range bars[1:] {
		ema = b.Close*alpha + ema*(1-alpha)
	}
	return ema
}

// ADX returns a single-pass directional index over the last period bars.
// This is the simplified DX-style measure, not the doubly smoothed Wilder
// ADX; it reacts faster, which is what the trend gate wants on short bars.
func ADX(bars []market.Bar, period int) float64 {
	if period <= 0 || len(bars) < period*2 {
		return 0
	}

	var trSum, plusSum, minusSum float64
	for i := len(bars) - period; i < len(bars); i++ {
		up := bars[i].High - bars[i-1].High
		down := bars[i-1].Low - bars[i].Low
		if up > down && up > 0 {
			plusSum += up
		}
		if down > up && down > 0 {
			minusSum += down
		}
		trSum += trueRange(bars[i], bars[i-1])
	}
	if trSum == 0 {
		return 0
	}

	plusDI := 100 * plusSum / trSum
	minusDI := 100 * minusSum / trSum
	den := plusDI + minusDI
	if den == 0 {
		return 0
	}
	return 100 * math.Abs(plusDI-minusDI) / den
}

// ZScore returns the z-score of the last value against the trailing window
// (population standard deviation). A zero-variance window yields 0.
func ZScore(vals []float64, period int) float64 {
	if period <= 0 || len(vals) < period {
		return 0
	}
	window := vals[len(vals)-period:]
	mean := 0.0
	for _, v := range window {
		mean += v
	}
	mean /= float64(period)

	variance := 0.0
	for _, v := range window {
		d := v - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(period))
	if std == 0 {
		return 0
	}
	return (vals[len(vals)-1] - mean) / std
}

func closes(bars []market.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
