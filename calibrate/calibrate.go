// Package calibrate estimates execution costs from recorded bars instead of
// guessed constants: spread statistics straight from the data, slippage
// from a bar-to-bar mid change proxy.
package calibrate

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/veloxfx/fxlab/market"
	"github.com/veloxfx/fxlab/micro"
	"github.com/veloxfx/fxlab/regime"
)

// Stats holds the calibrated cost estimates, all in pips.
type Stats struct {
	Symbol string `json:"symbol"`
	Bars   int    `json:"bars"`

	SpreadMedian float64 `json:"spread_median"`
	SpreadMean   float64 `json:"spread_mean"`
	SpreadP90    float64 `json:"spread_p90"`

	// SlippagePips is half the 90th percentile absolute bar-to-bar mid
	// change: a conservative stand-in for fill drift without tick data.
	SlippagePips float64 `json:"slippage_pips"`
}

// FromSeries computes cost statistics over the trailing lookback bars.
// A zero lookback uses the whole series.
func FromSeries(series *market.Series, lookback int) (Stats, error) {
	if series == nil || len(series.Bars) < 2 {
		return Stats{}, fmt.Errorf("calibrate: need at least 2 bars")
	}

	bars := series.Bars
	if lookback > 0 && lookback < len(bars) {
		bars = bars[len(bars)-lookback:]
	}

	spreads := make([]float64, 0, len(bars))
	moves := make([]float64, 0, len(bars)-1)
	for i, b := range bars {
		if b.Spread > 0 {
			spreads = append(spreads, market.PriceToPips(b.Spread))
		}
		if i > 0 {
			moves = append(moves, market.PriceToPips(math.Abs(b.Close-bars[i-1].Close)))
		}
	}
	if len(spreads) == 0 {
		return Stats{}, fmt.Errorf("calibrate: series %s carries no spread data", series.Symbol)
	}

	sort.Float64s(spreads)
	sort.Float64s(moves)

	var sum float64
	for _, s := range spreads {
		sum += s
	}

	return Stats{
		Symbol:       series.Symbol,
		Bars:         len(bars),
		SpreadMedian: quantile(spreads, 0.50),
		SpreadMean:   sum / float64(len(spreads)),
		SpreadP90:    quantile(spreads, 0.90),
		SlippagePips: 0.5 * quantile(moves, 0.90),
	}, nil
}

// Provider quotes the calibrated constants through the microstructure
// multiplier table, drop-in compatible with the fixed provider.
type Provider struct {
	stats Stats
	ms    micro.Config
}

func NewProvider(stats Stats, ms micro.Config) *Provider {
	return &Provider{stats: stats, ms: ms}
}

func (p *Provider) Quote(ts time.Time, vol regime.Volatility) (float64, float64) {
	m := p.ms.Multiplier(ts, vol)
	return market.PipsToPrice(p.stats.SpreadMedian) * m, p.stats.SlippagePips * m
}

// quantile reads q in [0,1] from an already sorted slice, nearest-rank.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(q * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func (s Stats) String() string {
	return fmt.Sprintf(
		"%s: %d bars, spread median/mean/p90 = %.2f/%.2f/%.2f pips, slippage proxy = %.2f pips",
		s.Symbol, s.Bars, s.SpreadMedian, s.SpreadMean, s.SpreadP90, s.SlippagePips,
	)
}
