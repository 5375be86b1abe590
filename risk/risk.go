// Package risk converts a risk budget into a position size and enforces the
// leverage ceiling. Sizing can shrink a trade; it never widens one, and a
// size below the broker minimum is a veto, not a rounding up.
package risk

import (
	"fmt"
	"math"

	"github.com/veloxfx/fxlab/market"
)

// Config holds the account risk parameters.
type Config struct {
	// RiskPerTrade is the fraction of balance risked on a full-size trade
	// before the regime/HTF multiplier is applied.
	RiskPerTrade         float64 `yaml:"risk_per_trade" json:"risk_per_trade"`
	MaxEffectiveLeverage float64 `yaml:"max_effective_leverage" json:"max_effective_leverage"`
	LotStep              float64 `yaml:"lot_step" json:"lot_step"`
	MinLot               float64 `yaml:"min_lot" json:"min_lot"`
}

func Default() Config {
	return Config{
		RiskPerTrade:         0.005,
		MaxEffectiveLeverage: 5.0,
		LotStep:              0.01,
		MinLot:               0.01,
	}
}

func (c Config) Validate() error {
	if c.RiskPerTrade <= 0 || c.RiskPerTrade >= 1 {
		return fmt.Errorf("risk: risk_per_trade must be in (0,1), got %v", c.RiskPerTrade)
	}
	if c.MaxEffectiveLeverage <= 0 {
		return fmt.Errorf("risk: max_effective_leverage must be positive")
	}
	if c.LotStep <= 0 {
		return fmt.Errorf("risk: lot_step must be positive")
	}
	if c.MinLot <= 0 {
		return fmt.Errorf("risk: min_lot must be positive")
	}
	return nil
}

// Size holds the resolved position size and how the cap affected it.
type Size struct {
	Lots        float64
	RiskAmount  float64 // account currency actually at risk at the initial stop
	CappedByLev bool
}

// SizeFor computes the lot size for a trade risking balance*RiskPerTrade*mult
// against stopDistance (price units) at price. Returns a zero Size with a
// reason when the trade cannot be sized.
func SizeFor(cfg Config, balance, stopDistance, price, mult float64) (Size, string) {
	if !finite(balance) || !finite(stopDistance) || !finite(price) || !finite(mult) {
		return Size{}, "non-finite sizing input"
	}
	if balance <= 0 {
		return Size{}, "balance depleted"
	}
	if stopDistance <= 0 {
		return Size{}, "degenerate stop distance"
	}
	if price <= 0 {
		return Size{}, "degenerate price"
	}
	if mult <= 0 {
		return Size{}, "risk multiplier zero"
	}

	stopPips := market.PriceToPips(stopDistance)
	riskAmount := balance * cfg.RiskPerTrade * mult
	lots := riskAmount / (stopPips * market.PipValuePerLot)

	// Leverage ceiling reduces size; it is the one check that resizes
	// rather than vetoes.
	capped := false
	maxLots := (balance * cfg.MaxEffectiveLeverage) / (market.LotNotional * price)
	if lots > maxLots {
		lots = maxLots
		capped = true
	}

	// Quantize down to the broker lot step. Rounding up would risk more
	// than budgeted.
	lots = math.Floor(lots/cfg.LotStep) * cfg.LotStep

	if !finite(lots) {
		return Size{}, "non-finite lot size"
	}
	if lots < cfg.MinLot {
		return Size{}, fmt.Sprintf("size %.4f below minimum lot %.2f", lots, cfg.MinLot)
	}

	return Size{
		Lots:        lots,
		RiskAmount:  lots * stopPips * market.PipValuePerLot,
		CappedByLev: capped,
	}, ""
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
