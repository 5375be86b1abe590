// Package regime classifies market conditions to filter and shape trading
// opportunities. Classification is a pure function of the trailing window's
// indicator snapshot: no hysteresis, so the class can flip every bar. That
// is intentional (it reflects instantaneous state) but it does mean rapid
// regime switching during low-liquidity periods.
package regime

import (
	"fmt"

	"github.com/veloxfx/fxlab/indicators"
)

// Volatility classes partition the ATR z-score axis.
type Volatility int8

const (
	VolCompression Volatility = iota
	VolNormal
	VolExpansion
	VolExtreme
)

func (v Volatility) String() string {
	switch v {
	case VolCompression:
		return "compression"
	case VolNormal:
		return "normal"
	case VolExpansion:
		return "expansion"
	case VolExtreme:
		return "extreme_expansion"
	}
	return "unknown"
}

// Structure classes partition the trend-strength axis.
type Structure int8

const (
	StructRange Structure = iota
	StructTrend
)

func (s Structure) String() string {
	if s == StructTrend {
		return "trend"
	}
	return "range"
}

// Bias tells the signal generator which sub-strategy the regime permits.
type Bias int8

const (
	BiasNone Bias = iota
	BiasTrend
	BiasMeanReversion
)

func (b Bias) String() string {
	switch b {
	case BiasTrend:
		return "trend"
	case BiasMeanReversion:
		return "mean_reversion"
	}
	return "none"
}

// HTFTrend is the higher-timeframe trend proxy.
type HTFTrend int8

const (
	HTFFlat HTFTrend = iota
	HTFUp
	HTFDown
)

func (h HTFTrend) String() string {
	switch h {
	case HTFUp:
		return "up"
	case HTFDown:
		return "down"
	}
	return "flat"
}

// Config holds the fixed classification cut-points.
type Config struct {
	VolZCompression   float64 `yaml:"vol_z_compression" json:"vol_z_compression"`
	VolZExpansion     float64 `yaml:"vol_z_expansion" json:"vol_z_expansion"`
	VolZExtreme       float64 `yaml:"vol_z_extreme" json:"vol_z_extreme"`
	ADXTrendThreshold float64 `yaml:"adx_trend_threshold" json:"adx_trend_threshold"`
}

// Default returns the production cut-points.
func Default() Config {
	return Config{
		VolZCompression:   -1.0,
		VolZExpansion:     1.0,
		VolZExtreme:       2.0,
		ADXTrendThreshold: 25,
	}
}

// Validate rejects contradictory cut-points at load time.
func (c Config) Validate() error {
	if c.VolZCompression >= c.VolZExpansion {
		return fmt.Errorf("regime: vol_z_compression (%v) must be below vol_z_expansion (%v)",
			c.VolZCompression, c.VolZExpansion)
	}
	if c.VolZExpansion >= c.VolZExtreme {
		return fmt.Errorf("regime: vol_z_expansion (%v) must be below vol_z_extreme (%v)",
			c.VolZExpansion, c.VolZExtreme)
	}
	if c.ADXTrendThreshold <= 0 {
		return fmt.Errorf("regime: adx_trend_threshold must be positive")
	}
	return nil
}

// State is the full classified regime for one bar.
type State struct {
	Volatility     Volatility
	Structure      Structure
	TradeAllowed   bool
	VetoReason     string
	RiskMultiplier float64
	Bias           Bias
	HTF            HTFTrend
}

// Label renders the compact vol_struct_htf tag used in diagnostics.
func (s State) Label() string {
	return fmt.Sprintf("%s_%s_%s", s.Volatility, s.Structure, s.HTF)
}

// Classify derives the regime state for the bar whose indicator snapshot
// and close are given.
func Classify(cfg Config, snap indicators.Snapshot, close float64) State {
	vol := classifyVolatility(cfg, snap.ATRZScore)
	structure := classifyStructure(cfg, snap.ADX)

	st := State{
		Volatility: vol,
		Structure:  structure,
		HTF:        classifyHTF(snap.EMASlow, close),
	}

	switch {
	// Dead / deep compression: edges generally fail.
	case vol == VolCompression || snap.ATRZScore < -2.0:
		st.VetoReason = "compression/dead market (no edge)"

	// High-volatility range: whipsaw / spike zone.
	case (vol == VolExpansion || vol == VolExtreme) && structure == StructRange:
		st.VetoReason = "high-volatility range (whipsaw risk)"

	case vol == VolExpansion && structure == StructTrend:
		st.TradeAllowed = true
		st.RiskMultiplier = 0.7
		st.Bias = BiasTrend

	case vol == VolExtreme && structure == StructTrend:
		st.TradeAllowed = true
		st.RiskMultiplier = 0.5
		st.Bias = BiasTrend

	case structure == StructTrend:
		st.TradeAllowed = true
		st.RiskMultiplier = 1.0
		st.Bias = BiasTrend

	default:
		st.TradeAllowed = true
		st.RiskMultiplier = 1.0
		st.Bias = BiasMeanReversion
	}

	return st
}

func classifyVolatility(cfg Config, zscore float64) Volatility {
	switch {
	case zscore < cfg.VolZCompression:
		return VolCompression
	case zscore > cfg.VolZExtreme:
		return VolExtreme
	case zscore > cfg.VolZExpansion:
		return VolExpansion
	default:
		return VolNormal
	}
}

func classifyStructure(cfg Config, adx float64) Structure {
	if adx > cfg.ADXTrendThreshold {
		return StructTrend
	}
	return StructRange
}

// classifyHTF approximates the higher-timeframe trend using the slow EMA as
// a stand-in for the bigger picture, with a ~0.1% indecision band.
func classifyHTF(emaSlow, close float64) HTFTrend {
	if emaSlow == 0 || close == 0 {
		return HTFFlat
	}
	band := emaSlow * 0.001
	switch {
	case close > emaSlow+band:
		return HTFUp
	case close < emaSlow-band:
		return HTFDown
	default:
		return HTFFlat
	}
}
