package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veloxfx/fxlab/market"
)

func flatBars(n int, price, rng float64) []market.Bar {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	bars := make([]market.Bar, n)
	for i := range bars {
		bars[i] = market.Bar{
			Time:  start.Add(time.Duration(i) * time.Minute),
			Open:  price,
			High:  price + rng/2,
			Low:   price - rng/2,
			Close: price,
		}
	}
	return bars
}

func risingBars(n int, startPrice, step float64) []market.Bar {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	bars := make([]market.Bar, n)
	price := startPrice
	for i := range bars {
		bars[i] = market.Bar{
			Time:  start.Add(time.Duration(i) * time.Minute),
			Open:  price,
			High:  price + step,
			Low:   price - step/4,
			Close: price + step,
		}
		price += step
	}
	return bars
}

func TestATR(t *testing.T) {
	t.Run("constant range", func(t *testing.T) {
		bars := flatBars(30, 1.1000, 0.0010)
		assert.InDelta(t, 0.0010, ATR(bars, 14), 1e-12)
	})

	t.Run("not ready", func(t *testing.T) {
		assert.Zero(t, ATR(flatBars(14, 1.1, 0.001), 14))
		assert.Zero(t, ATR(nil, 14))
	})
}

func TestEMA(t *testing.T) {
	t.Run("constant closes converge to price", func(t *testing.T) {
		bars := flatBars(60, 1.2345, 0.0010)
		assert.InDelta(t, 1.2345, EMA(bars, 20), 1e-9)
	})

	t.Run("uptrend lags below close", func(t *testing.T) {
		bars := risingBars(100, 1.1000, 0.0002)
		ema := EMA(bars, 20)
		last := bars[len(bars)-1].Close
		assert.Less(t, ema, last)
		assert.Greater(t, ema, last-0.0025)
	})

	t.Run("not ready", func(t *testing.T) {
		assert.Zero(t, EMA(flatBars(10, 1.1, 0.001), 20))
	})
}

func TestADX(t *testing.T) {
	t.Run("steady trend saturates", func(t *testing.T) {
		bars := risingBars(50, 1.1000, 0.0002)
		assert.InDelta(t, 100.0, ADX(bars, 14), 1e-9)
	})

	t.Run("flat market is directionless", func(t *testing.T) {
		bars := flatBars(50, 1.1000, 0.0010)
		assert.Zero(t, ADX(bars, 14))
	})

	t.Run("not ready", func(t *testing.T) {
		assert.Zero(t, ADX(risingBars(20, 1.1, 0.0002), 14))
	})
}

func TestZScore(t *testing.T) {
	t.Run("known distribution", func(t *testing.T) {
		vals := []float64{1, 1, 1, 2}
		assert.InDelta(t, math.Sqrt(3), ZScore(vals, 4), 1e-9)
	})

	t.Run("zero variance", func(t *testing.T) {
		assert.Zero(t, ZScore([]float64{5, 5, 5, 5}, 4))
	})

	t.Run("not ready", func(t *testing.T) {
		assert.Zero(t, ZScore([]float64{1, 2}, 4))
	})
}

func TestComputeSnapshot(t *testing.T) {
	bars := risingBars(120, 1.1000, 0.0002)
	snap := Compute(bars, DefaultPeriods())

	require.True(t, snap.Finite())
	assert.Greater(t, snap.ATR, 0.0)
	assert.Greater(t, snap.EMAFast, snap.EMASlow, "fast EMA leads in an uptrend")
	assert.InDelta(t, 100.0, snap.ADX, 1e-9)
	assert.Greater(t, snap.ZScore, 0.0, "last close above trailing mean in an uptrend")
}

func TestSnapshotFinite(t *testing.T) {
	snap := Snapshot{ATR: 1, EMAFast: 1, EMASlow: 1, ADX: 1, ZScore: 1, ATRZScore: 1}
	assert.True(t, snap.Finite())

	snap.ZScore = math.NaN()
	assert.False(t, snap.Finite())

	snap.ZScore = math.Inf(1)
	assert.False(t, snap.Finite())
}
