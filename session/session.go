// Package session gates trade entries by time of day and buckets timestamps
// into trading sessions for the microstructure model. Pure functions of the
// bar timestamp, always evaluated in UTC.
package session

import (
	"fmt"
	"time"
)

// Category is the coarse trading-session bucket for a UTC hour.
type Category int8

const (
	Asia Category = iota
	London
	NewYork
	Off
)

func (c Category) String() string {
	switch c {
	case Asia:
		return "asia"
	case London:
		return "london"
	case NewYork:
		return "newyork"
	}
	return "off"
}

// Config lists the UTC hours during which entries are blocked. Hours come
// from per-hour loss analysis of prior backtests.
type Config struct {
	Enabled      bool  `yaml:"enabled" json:"enabled"`
	BlockedHours []int `yaml:"blocked_hours" json:"blocked_hours"`
	SkipWeekends bool  `yaml:"skip_weekends" json:"skip_weekends"`
}

// Default blocks the worst historical hours and weekend bars.
func Default() Config {
	return Config{
		Enabled:      true,
		BlockedHours: []int{3, 5, 10, 11, 12},
		SkipWeekends: true,
	}
}

func (c Config) Validate() error {
	for _, h := range c.BlockedHours {
		if h < 0 || h > 23 {
			return fmt.Errorf("session: blocked hour %d out of range [0,23]", h)
		}
	}
	return nil
}

// Gate answers allow/block for a timestamp.
type Gate struct {
	cfg     Config
	blocked [24]bool
}

func NewGate(cfg Config) *Gate {
	g := &Gate{cfg: cfg}
	for _, h := range cfg.BlockedHours {
		g.blocked[h] = true
	}
	return g
}

// Allowed reports whether an entry may be opened at ts. Open-position
// bookkeeping is never gated, only entries.
func (g *Gate) Allowed(ts time.Time) bool {
	if !g.cfg.Enabled {
		return true
	}
	utc := ts.UTC()
	if g.cfg.SkipWeekends {
		if wd := utc.Weekday(); wd == time.Saturday || wd == time.Sunday {
			return false
		}
	}
	return !g.blocked[utc.Hour()]
}

// Categorize buckets a timestamp into its trading session.
func Categorize(ts time.Time) Category {
	hour := ts.UTC().Hour()
	switch {
	case hour < 7:
		return Asia
	case hour < 13:
		return London
	case hour < 21:
		return NewYork
	default:
		return Off
	}
}
