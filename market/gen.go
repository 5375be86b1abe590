package market

import (
	"math/rand"
	"time"
)

// GenSpec controls the synthetic series generator used by tests and the
// demo path. Drift is the per-bar close change in price units; Noise is the
// stddev of the gaussian perturbation (0 for a perfectly flat series).
type GenSpec struct {
	Start    time.Time
	Interval time.Duration
	Bars     int
	Price    float64
	Drift    float64
	Noise    float64
	Spread   float64
	Seed     int64
}

// GenSeries produces a deterministic synthetic bar series. The same spec
// always yields the same bars.
func GenSeries(symbol string, spec GenSpec) *Series {
	rng := rand.New(rand.NewSource(spec.Seed))
	if spec.Interval == 0 {
		spec.Interval = 2 * time.Minute
	}

	bars := make([]Bar, 0, spec.Bars)
	price := spec.Price
	for i := 0; i < spec.Bars; i++ {
		open := price
		close := open + spec.Drift
		if spec.Noise > 0 {
			close += rng.NormFloat64() * spec.Noise
		}
		high := open
		if close > high {
			high = close
		}
		low := open
		if close < low {
			low = close
		}
		if spec.Noise > 0 {
			high += spec.Noise / 2
			low -= spec.Noise / 2
		}
		bars = append(bars, Bar{
			Time:   spec.Start.Add(time.Duration(i) * spec.Interval).UTC(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: 100,
			Spread: spec.Spread,
		})
		price = close
	}

	// Generated bars are well-formed by construction.
	return &Series{Symbol: symbol, Bars: bars}
}
