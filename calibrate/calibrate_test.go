package calibrate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veloxfx/fxlab/market"
	"github.com/veloxfx/fxlab/micro"
	"github.com/veloxfx/fxlab/regime"
)

// spreadSeries alternates the close by one pip and carries a constant
// 1.2 pip spread.
func spreadSeries(n int) *market.Series {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	bars := make([]market.Bar, n)
	for i := range bars {
		close := 1.1000
		if i%2 == 1 {
			close = 1.1001
		}
		bars[i] = market.Bar{
			Time:   start.Add(time.Duration(i) * time.Minute),
			Open:   1.1000,
			High:   1.1002,
			Low:    1.0999,
			Close:  close,
			Spread: 0.00012,
		}
	}
	s, err := market.NewSeries("EURUSD", bars)
	if err != nil {
		panic(err)
	}
	return s
}

func TestFromSeries(t *testing.T) {
	stats, err := FromSeries(spreadSeries(100), 0)
	require.NoError(t, err)

	assert.Equal(t, 100, stats.Bars)
	assert.InDelta(t, 1.2, stats.SpreadMedian, 1e-9)
	assert.InDelta(t, 1.2, stats.SpreadMean, 1e-9)
	assert.InDelta(t, 1.2, stats.SpreadP90, 1e-9)
	// Every bar-to-bar mid change is one pip, so the proxy is half a pip.
	assert.InDelta(t, 0.5, stats.SlippagePips, 1e-9)
}

func TestFromSeriesLookback(t *testing.T) {
	stats, err := FromSeries(spreadSeries(100), 20)
	require.NoError(t, err)
	assert.Equal(t, 20, stats.Bars)
}

func TestFromSeriesErrors(t *testing.T) {
	t.Run("too short", func(t *testing.T) {
		_, err := FromSeries(nil, 0)
		assert.Error(t, err)
	})

	t.Run("no spread data", func(t *testing.T) {
		s := market.GenSeries("EURUSD", market.GenSpec{
			Start: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
			Bars:  50,
			Price: 1.0850,
		})
		_, err := FromSeries(s, 0)
		assert.Error(t, err)
	})
}

func TestProviderQuotesCalibratedConstants(t *testing.T) {
	stats, err := FromSeries(spreadSeries(100), 0)
	require.NoError(t, err)

	ms := micro.Default()
	ms.Enabled = false
	p := NewProvider(stats, ms)

	ts := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	spread, slip := p.Quote(ts, regime.VolNormal)
	assert.InDelta(t, market.PipsToPrice(1.2), spread, 1e-12)
	assert.InDelta(t, 0.5, slip, 1e-9)
}
