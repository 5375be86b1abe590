package indicators

import (
	"math"

	"github.com/veloxfx/fxlab/market"
)

// Snapshot is the indicator-enriched view of the last closed bar in a
// window. It is recomputed from scratch every bar; nothing persists.
type Snapshot struct {
	ATR       float64
	EMAFast   float64
	EMASlow   float64
	ADX       float64
	ZScore    float64
	ATRZScore float64
}

// atrZScoreSamples is how many trailing ATR values feed the ATR z-score.
const atrZScoreSamples = 20

// Compute derives a Snapshot from the trailing window. The window must end
// at the last closed bar; the caller is responsible for excluding the
// in-progress bar (no look-ahead).
func Compute(bars []market.Bar, p Periods) Snapshot {
	cls := closes(bars)

	snap := Snapshot{
		ATR:     ATR(bars, p.ATR),
		EMAFast: EMA(bars, p.EMAFast),
		EMASlow: EMA(bars, p.EMASlow),
		ADX:     ADX(bars, p.ADX),
		ZScore:  ZScore(cls, p.ZScore),
	}

	// Volatility axis: z-score of the trailing ATR series against itself.
	if n := len(bars); n > atrZScoreSamples {
		atrSeries := make([]float64, 0, atrZScoreSamples)
		for i := n - atrZScoreSamples; i < n; i++ {
			atrSeries = append(atrSeries, ATR(bars[:i+1], p.ATR))
		}
		snap.ATRZScore = ZScore(atrSeries, p.ATRZScore)
	}

	return snap
}

// Finite reports whether every indicator value is a usable number. A false
// result means the bar must be skipped, not traded.
func (s Snapshot) Finite() bool {
	for _, v := range []float64{s.ATR, s.EMAFast, s.EMASlow, s.ADX, s.ZScore, s.ATRZScore} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
