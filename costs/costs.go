// Package costs models every execution friction the simulator charges:
// spread, slippage, commission, and rollover swap. The quote source is an
// injectable Provider so calibration can substitute measured distributions
// for the fixed constants without touching any other component.
package costs

import (
	"fmt"
	"math"
	"time"

	"github.com/veloxfx/fxlab/market"
	"github.com/veloxfx/fxlab/micro"
	"github.com/veloxfx/fxlab/regime"
)

// Config holds the fixed cost constants and veto thresholds.
type Config struct {
	SpreadPips       float64 `yaml:"spread_pips" json:"spread_pips"`
	SlippagePips     float64 `yaml:"slippage_pips" json:"slippage_pips"`
	CommissionPerLot float64 `yaml:"commission_per_lot" json:"commission_per_lot"`

	// Swap per lot per rollover crossing, in account currency. Negative is
	// a cost, positive a credit.
	SwapLongPerLot  float64 `yaml:"swap_long_per_lot" json:"swap_long_per_lot"`
	SwapShortPerLot float64 `yaml:"swap_short_per_lot" json:"swap_short_per_lot"`

	// Spread filter: veto entries when the effective spread exceeds
	// MedianSpreadPips * MaxSpreadMultiplier.
	MedianSpreadPips    float64 `yaml:"median_spread_pips" json:"median_spread_pips"`
	MaxSpreadMultiplier float64 `yaml:"max_spread_multiplier" json:"max_spread_multiplier"`

	// Friction cap: veto entries when spread + expected slippage exceed
	// this many pips (edge protection).
	MaxFrictionPips float64 `yaml:"max_friction_pips" json:"max_friction_pips"`

	// Daily rollover boundary and the no-entry window around it.
	RolloverHourUTC    int `yaml:"rollover_hour_utc" json:"rollover_hour_utc"`
	BlockMinutesBefore int `yaml:"block_minutes_before" json:"block_minutes_before"`
	BlockMinutesAfter  int `yaml:"block_minutes_after" json:"block_minutes_after"`
}

func Default() Config {
	return Config{
		SpreadPips:          1.5,
		SlippagePips:        2.0,
		CommissionPerLot:    0.0,
		MedianSpreadPips:    1.5,
		MaxSpreadMultiplier: 2.0,
		MaxFrictionPips:     8.0,
		RolloverHourUTC:     22,
		BlockMinutesBefore:  1,
		BlockMinutesAfter:   5,
	}
}

func (c Config) Validate() error {
	if c.SpreadPips < 0 || c.SlippagePips < 0 {
		return fmt.Errorf("costs: spread/slippage pips must be >= 0")
	}
	if c.CommissionPerLot < 0 {
		return fmt.Errorf("costs: commission_per_lot must be >= 0")
	}
	if c.MedianSpreadPips <= 0 || c.MaxSpreadMultiplier <= 0 {
		return fmt.Errorf("costs: spread filter thresholds must be positive")
	}
	if c.MaxFrictionPips <= 0 {
		return fmt.Errorf("costs: max_friction_pips must be positive")
	}
	if c.RolloverHourUTC < 0 || c.RolloverHourUTC > 23 {
		return fmt.Errorf("costs: rollover_hour_utc %d out of range [0,23]", c.RolloverHourUTC)
	}
	if c.BlockMinutesBefore < 0 || c.BlockMinutesAfter < 0 {
		return fmt.Errorf("costs: rollover block minutes must be >= 0")
	}
	return nil
}

// Provider supplies the effective spread (price units) and slippage (pips)
// for a candidate fill. This is the seam calibration plugs into.
type Provider interface {
	Quote(ts time.Time, vol regime.Volatility) (spreadPrice, slippagePips float64)
}

// FixedProvider applies the microstructure multiplier table to the
// configured base constants.
type FixedProvider struct {
	SpreadPips   float64
	SlippagePips float64
	Micro        micro.Config
}

func (p FixedProvider) Quote(ts time.Time, vol regime.Volatility) (float64, float64) {
	m := p.Micro.Multiplier(ts, vol)
	return market.PipsToPrice(p.SpreadPips) * m, p.SlippagePips * m
}

// Model is the cost engine used per run.
type Model struct {
	cfg      Config
	provider Provider
}

// NewModel builds a Model. A nil provider falls back to the fixed-constant
// provider with the given microstructure table.
func NewModel(cfg Config, ms micro.Config, provider Provider) *Model {
	if provider == nil {
		provider = FixedProvider{SpreadPips: cfg.SpreadPips, SlippagePips: cfg.SlippagePips, Micro: ms}
	}
	return &Model{cfg: cfg, provider: provider}
}

// Quote returns the effective spread (price units) and slippage (price
// units) for a fill at ts under the given volatility class.
func (m *Model) Quote(ts time.Time, vol regime.Volatility) (spreadPrice, slipPrice float64) {
	spread, slipPips := m.provider.Quote(ts, vol)
	return spread, market.PipsToPrice(slipPips)
}

// EntryAcceptable runs the friction vetoes for a candidate entry. The
// returned reason is empty when acceptable.
func (m *Model) EntryAcceptable(ts time.Time, spreadPrice, slipPrice float64) (bool, string) {
	if !isFinite(spreadPrice) || !isFinite(slipPrice) {
		return false, "non-finite cost quote"
	}

	maxSpread := market.PipsToPrice(m.cfg.MedianSpreadPips) * m.cfg.MaxSpreadMultiplier
	if spreadPrice > maxSpread {
		return false, fmt.Sprintf("spread too wide: %.5f > %.5f", spreadPrice, maxSpread)
	}

	if m.InRolloverWindow(ts) {
		return false, "inside rollover window"
	}

	frictionPips := market.PriceToPips(spreadPrice) + market.PriceToPips(slipPrice)
	if frictionPips > m.cfg.MaxFrictionPips {
		return false, fmt.Sprintf("total friction %.1f pips exceeds edge cap %.1f", frictionPips, m.cfg.MaxFrictionPips)
	}

	return true, ""
}

// EntryFill prices an entry at mid, half-spread plus slippage against the
// trader.
func (m *Model) EntryFill(side market.Side, mid, spreadPrice, slipPrice float64) float64 {
	adj := spreadPrice/2 + slipPrice
	if side == market.Long {
		return mid + adj
	}
	return mid - adj
}

// ExitFill prices an exit at the trigger level, half-spread plus slippage
// against the trader (longs exit lower, shorts higher).
func (m *Model) ExitFill(side market.Side, level, spreadPrice, slipPrice float64) float64 {
	adj := spreadPrice/2 + slipPrice
	if side == market.Long {
		return level - adj
	}
	return level + adj
}

// CommissionRoundTurn is the commission for entering and exiting lots.
func (m *Model) CommissionRoundTurn(lots float64) float64 {
	return m.cfg.CommissionPerLot * lots * 2
}

// SwapCharge is the signed account-currency swap for one rollover crossing.
func (m *Model) SwapCharge(side market.Side, lots float64) float64 {
	if side == market.Long {
		return m.cfg.SwapLongPerLot * lots
	}
	return m.cfg.SwapShortPerLot * lots
}

// RolloverCrossings counts how many daily rollover boundaries lie in
// (from, to]. A position held across exactly one boundary accrues exactly
// one swap charge, never a fraction.
func (m *Model) RolloverCrossings(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	from, to = from.UTC(), to.UTC()

	boundary := time.Date(from.Year(), from.Month(), from.Day(), m.cfg.RolloverHourUTC, 0, 0, 0, time.UTC)
	if !boundary.After(from) {
		boundary = boundary.Add(24 * time.Hour)
	}

	n := 0
	for !boundary.After(to) {
		n++
		boundary = boundary.Add(24 * time.Hour)
	}
	return n
}

// InRolloverWindow reports whether ts falls inside the no-entry window
// around the daily rollover.
func (m *Model) InRolloverWindow(ts time.Time) bool {
	utc := ts.UTC()
	minute := utc.Hour()*60 + utc.Minute()
	boundary := m.cfg.RolloverHourUTC * 60

	start := boundary - m.cfg.BlockMinutesBefore
	end := boundary + m.cfg.BlockMinutesAfter

	// The window never spans midnight with sane rollover hours, but keep
	// the wrap handling anyway.
	if start < 0 {
		return minute >= start+24*60 || minute <= end
	}
	return minute >= start && minute <= end
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
