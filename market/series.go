package market

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Input validation failures are fatal: a backtest must never silently skip
// or reorder data.
var (
	ErrNonMonotonic = errors.New("market: non-monotonic bar timestamps")
	ErrMalformedBar = errors.New("market: malformed bar")
)

// Series is an ordered, validated bar sequence with strictly increasing
// timestamps. Gaps are tolerated; ordering violations are not.
type Series struct {
	Symbol string
	Bars   []Bar
}

// NewSeries validates bars and returns a Series. Any malformed field or
// ordering violation aborts with an error identifying the offending bar.
func NewSeries(symbol string, bars []Bar) (*Series, error) {
	var prev time.Time
	for i, b := range bars {
		if err := validateBar(b); err != nil {
			return nil, fmt.Errorf("bar %d at %s: %w", i, b.Time.UTC().Format(time.RFC3339), err)
		}
		if i > 0 && !b.Time.After(prev) {
			return nil, fmt.Errorf("bar %d at %s (prev %s): %w",
				i, b.Time.UTC().Format(time.RFC3339), prev.UTC().Format(time.RFC3339), ErrNonMonotonic)
		}
		prev = b.Time
	}
	return &Series{Symbol: symbol, Bars: bars}, nil
}

func validateBar(b Bar) error {
	if b.Time.IsZero() {
		return fmt.Errorf("%w: zero timestamp", ErrMalformedBar)
	}
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close} {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-positive or non-finite price", ErrMalformedBar)
		}
	}
	if b.High < b.Low {
		return fmt.Errorf("%w: high below low", ErrMalformedBar)
	}
	return nil
}

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.Bars) }

// Slice returns the sub-series with bar times in [from, to). Bars are
// shared, not copied.
func (s *Series) Slice(from, to time.Time) *Series {
	lo := 0
	for lo < len(s.Bars) && s.Bars[lo].Time.Before(from) {
		lo++
	}
	hi := lo
	for hi < len(s.Bars) && s.Bars[hi].Time.Before(to) {
		hi++
	}
	return &Series{Symbol: s.Symbol, Bars: s.Bars[lo:hi]}
}

// Feed yields bars one at a time. Implementations must be deterministic and
// return ok=false at end of data.
type Feed interface {
	Next() (b Bar, ok bool, err error)
	Close() error
}

// SliceFeed adapts a Series into a pull-style Feed.
type SliceFeed struct {
	bars []Bar
	idx  int
}

func NewSliceFeed(s *Series) *SliceFeed {
	return &SliceFeed{bars: s.Bars}
}

func (f *SliceFeed) Next() (Bar, bool, error) {
	if f.idx >= len(f.bars) {
		return Bar{}, false, nil
	}
	b := f.bars[f.idx]
	f.idx++
	return b, true, nil
}

func (f *SliceFeed) Close() error { return nil }
