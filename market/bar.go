package market

import "time"

// Bar is one OHLC observation over a fixed interval. Spread is the observed
// spread in price units at bar time (0 when the source does not provide it).
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Spread float64
}

// Range returns the high-low extent of the bar in price units.
func (b Bar) Range() float64 {
	return b.High - b.Low
}

// Mid returns the midpoint of the bar's range.
func (b Bar) Mid() float64 {
	return (b.High + b.Low) / 2
}

// Side: +1 long, -1 short
type Side int8

const (
	Long  Side = +1
	Short Side = -1
)

func (s Side) String() string {
	switch s {
	case Long:
		return "BUY"
	case Short:
		return "SELL"
	}
	return "NONE"
}
