package strategy

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veloxfx/fxlab/indicators"
	"github.com/veloxfx/fxlab/market"
	"github.com/veloxfx/fxlab/regime"
)

func trendState() regime.State {
	return regime.State{
		Volatility:     regime.VolNormal,
		Structure:      regime.StructTrend,
		TradeAllowed:   true,
		RiskMultiplier: 1.0,
		Bias:           regime.BiasTrend,
		HTF:            regime.HTFUp,
	}
}

func meanRevState() regime.State {
	return regime.State{
		Volatility:     regime.VolNormal,
		Structure:      regime.StructRange,
		TradeAllowed:   true,
		RiskMultiplier: 1.0,
		Bias:           regime.BiasMeanReversion,
	}
}

// pullbackBar dips through the fast EMA and closes back above it.
func pullbackBar() (market.Bar, indicators.Snapshot) {
	bar := market.Bar{
		Time:  time.Date(2025, 1, 6, 14, 0, 0, 0, time.UTC),
		Open:  1.1010,
		High:  1.1015,
		Low:   1.0995,
		Close: 1.1012,
	}
	snap := indicators.Snapshot{
		ATR:     0.0020,
		EMAFast: 1.1000,
		EMASlow: 1.0980,
	}
	return bar, snap
}

func TestTrendFollowingLong(t *testing.T) {
	bar, snap := pullbackBar()
	sig := Evaluate(Default(), bar, snap, trendState())

	require.NotNil(t, sig)
	assert.Equal(t, market.Long, sig.Side)
	assert.Equal(t, NameTrendFollowing, sig.Strategy)
	assert.InDelta(t, bar.Close, sig.Entry, 1e-9)
	assert.InDelta(t, 0.0030, sig.StopDistance, 1e-9) // 1.5 x ATR
	assert.InDelta(t, 0.0060, sig.TargetDistance, 1e-9)
	assert.InDelta(t, bar.Close-0.0030, sig.Stop, 1e-9)
	assert.InDelta(t, bar.Close+0.0060, sig.Target, 1e-9)
	assert.InDelta(t, 1.0, sig.RiskMultiplier, 1e-9)
}

func TestTrendFollowingShort(t *testing.T) {
	bar := market.Bar{
		Time:  time.Date(2025, 1, 6, 14, 0, 0, 0, time.UTC),
		Open:  1.0990,
		High:  1.1005,
		Low:   1.0985,
		Close: 1.0988,
	}
	snap := indicators.Snapshot{
		ATR:     0.0020,
		EMAFast: 1.1000,
		EMASlow: 1.1020,
	}
	st := trendState()
	st.HTF = regime.HTFDown

	sig := Evaluate(Default(), bar, snap, st)
	require.NotNil(t, sig)
	assert.Equal(t, market.Short, sig.Side)
}

func TestTrendHTFAlignment(t *testing.T) {
	bar, snap := pullbackBar()

	t.Run("counter-trend suppressed", func(t *testing.T) {
		st := trendState()
		st.HTF = regime.HTFDown
		assert.Nil(t, Evaluate(Default(), bar, snap, st))
	})

	t.Run("flat HTF halves risk", func(t *testing.T) {
		st := trendState()
		st.HTF = regime.HTFFlat
		sig := Evaluate(Default(), bar, snap, st)
		require.NotNil(t, sig)
		assert.InDelta(t, 0.5, sig.RiskMultiplier, 1e-9)
	})

	t.Run("regime multiplier compounds", func(t *testing.T) {
		st := trendState()
		st.RiskMultiplier = 0.7
		st.HTF = regime.HTFFlat
		sig := Evaluate(Default(), bar, snap, st)
		require.NotNil(t, sig)
		assert.InDelta(t, 0.35, sig.RiskMultiplier, 1e-9)
	})
}

func TestMeanReversion(t *testing.T) {
	bar := market.Bar{
		Time:  time.Date(2025, 1, 6, 14, 0, 0, 0, time.UTC),
		Open:  1.1000,
		High:  1.1008,
		Low:   1.0998,
		Close: 1.1006,
	}

	t.Run("fade rich prices short", func(t *testing.T) {
		snap := indicators.Snapshot{ATR: 0.0020, ZScore: 2.5}
		sig := Evaluate(Default(), bar, snap, meanRevState())
		require.NotNil(t, sig)
		assert.Equal(t, market.Short, sig.Side)
		assert.Equal(t, NameMeanReversion, sig.Strategy)
	})

	t.Run("fade cheap prices long", func(t *testing.T) {
		snap := indicators.Snapshot{ATR: 0.0020, ZScore: -2.5}
		sig := Evaluate(Default(), bar, snap, meanRevState())
		require.NotNil(t, sig)
		assert.Equal(t, market.Long, sig.Side)
	})

	t.Run("inside band no signal", func(t *testing.T) {
		snap := indicators.Snapshot{ATR: 0.0020, ZScore: 1.0}
		assert.Nil(t, Evaluate(Default(), bar, snap, meanRevState()))
	})
}

func TestVetoes(t *testing.T) {
	bar, snap := pullbackBar()

	t.Run("regime veto wins", func(t *testing.T) {
		st := trendState()
		st.TradeAllowed = false
		assert.Nil(t, Evaluate(Default(), bar, snap, st))
	})

	t.Run("zero ATR", func(t *testing.T) {
		s := snap
		s.ATR = 0
		assert.Nil(t, Evaluate(Default(), bar, s, trendState()))
	})

	t.Run("non-finite ATR", func(t *testing.T) {
		s := snap
		s.ATR = math.NaN()
		assert.Nil(t, Evaluate(Default(), bar, s, trendState()))
	})

	t.Run("extended candle", func(t *testing.T) {
		b := bar
		b.High = b.Close + 0.0040 // range blows past 1.5 x ATR
		assert.Nil(t, Evaluate(Default(), b, snap, trendState()))
	})

	t.Run("reward risk floor", func(t *testing.T) {
		cfg := Default()
		cfg.TargetRMultiple = 1.0 // below the 2.0 RR minimum
		cfg.RRMin = 2.0
		assert.Nil(t, Evaluate(cfg, bar, snap, trendState()))
	})
}

func TestExtremeVolatilityWidensStops(t *testing.T) {
	bar, snap := pullbackBar()
	st := trendState()
	st.Volatility = regime.VolExtreme

	cfg := Default()
	cfg.ExtendedMultiplier = 20 // keep the extended-candle veto out of the way

	sig := Evaluate(cfg, bar, snap, st)
	require.NotNil(t, sig)
	assert.InDelta(t, 0.0020*1.5*20, sig.StopDistance, 1e-9)
}

func TestMeanReversionOnly(t *testing.T) {
	cfg := Default()
	cfg.MeanReversionOnly = true

	bar, snap := pullbackBar()
	snap.ZScore = -2.5

	sig := Evaluate(cfg, bar, snap, trendState())
	require.NotNil(t, sig)
	assert.Equal(t, NameMeanReversion, sig.Strategy)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	cfg := Default()
	cfg.RRMin = 0
	assert.Error(t, cfg.Validate())
}
