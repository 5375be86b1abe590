// Package micro models market microstructure as multiplicative adjustments
// to the configured base spread and slippage. With the model disabled every
// multiplier is 1.0, so downstream cost code never branches on the flag.
package micro

import (
	"fmt"
	"time"

	"github.com/veloxfx/fxlab/regime"
	"github.com/veloxfx/fxlab/session"
)

// Config is the session/volatility multiplier table.
type Config struct {
	Enabled bool `yaml:"enabled" json:"enabled"`

	SessionAsia    float64 `yaml:"session_asia" json:"session_asia"`
	SessionLondon  float64 `yaml:"session_london" json:"session_london"`
	SessionNewYork float64 `yaml:"session_newyork" json:"session_newyork"`
	SessionOff     float64 `yaml:"session_off" json:"session_off"`

	VolCompression float64 `yaml:"vol_compression" json:"vol_compression"`
	VolNormal      float64 `yaml:"vol_normal" json:"vol_normal"`
	VolExpansion   float64 `yaml:"vol_expansion" json:"vol_expansion"`
	VolExtreme     float64 `yaml:"vol_extreme" json:"vol_extreme"`
}

// Default matches the calibrated backtest table.
func Default() Config {
	return Config{
		Enabled:        true,
		SessionAsia:    1.1,
		SessionLondon:  1.0,
		SessionNewYork: 1.1,
		SessionOff:     1.3,
		VolCompression: 0.8,
		VolNormal:      1.0,
		VolExpansion:   1.3,
		VolExtreme:     1.6,
	}
}

func (c Config) Validate() error {
	for name, v := range map[string]float64{
		"session_asia":    c.SessionAsia,
		"session_london":  c.SessionLondon,
		"session_newyork": c.SessionNewYork,
		"session_off":     c.SessionOff,
		"vol_compression": c.VolCompression,
		"vol_normal":      c.VolNormal,
		"vol_expansion":   c.VolExpansion,
		"vol_extreme":     c.VolExtreme,
	} {
		if v < 0 {
			return fmt.Errorf("micro: %s must be >= 0, got %v", name, v)
		}
	}
	return nil
}

// Multiplier returns the combined session x volatility factor applied to
// both spread and slippage at ts.
func (c Config) Multiplier(ts time.Time, vol regime.Volatility) float64 {
	if !c.Enabled {
		return 1.0
	}
	return c.sessionMult(session.Categorize(ts)) * c.volMult(vol)
}

func (c Config) sessionMult(cat session.Category) float64 {
	switch cat {
	case session.Asia:
		return c.SessionAsia
	case session.London:
		return c.SessionLondon
	case session.NewYork:
		return c.SessionNewYork
	}
	return c.SessionOff
}

func (c Config) volMult(vol regime.Volatility) float64 {
	switch vol {
	case regime.VolCompression:
		return c.VolCompression
	case regime.VolExpansion:
		return c.VolExpansion
	case regime.VolExtreme:
		return c.VolExtreme
	}
	return c.VolNormal
}
