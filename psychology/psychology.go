// Package psychology enforces the behavioral rules humans struggle with:
// daily trade caps, cooldowns, and loss-streak shutdowns. The filter is the
// only stateful veto layer; its calendar resets are pure functions of bar
// timestamps so replays stay deterministic regardless of wall clock.
package psychology

import (
	"fmt"
	"time"
)

// Config holds the hard discipline limits. Zero disables a limit.
type Config struct {
	Enabled              bool `yaml:"enabled" json:"enabled"`
	MaxTradesPerDay      int  `yaml:"max_trades_per_day" json:"max_trades_per_day"`
	MaxTradesPerWeek     int  `yaml:"max_trades_per_week" json:"max_trades_per_week"`
	CooldownBars         int  `yaml:"cooldown_bars" json:"cooldown_bars"`
	LossCooldownMinutes  int  `yaml:"loss_cooldown_minutes" json:"loss_cooldown_minutes"`
	MaxConsecutiveLosses int  `yaml:"max_consecutive_losses" json:"max_consecutive_losses"`
}

func Default() Config {
	return Config{
		Enabled:              true,
		MaxTradesPerDay:      5,
		MaxTradesPerWeek:     0,
		CooldownBars:         5,
		LossCooldownMinutes:  0,
		MaxConsecutiveLosses: 5,
	}
}

func (c Config) Validate() error {
	for name, v := range map[string]int{
		"max_trades_per_day":     c.MaxTradesPerDay,
		"max_trades_per_week":    c.MaxTradesPerWeek,
		"cooldown_bars":          c.CooldownBars,
		"loss_cooldown_minutes":  c.LossCooldownMinutes,
		"max_consecutive_losses": c.MaxConsecutiveLosses,
	} {
		if v < 0 {
			return fmt.Errorf("psychology: %s must be >= 0, got %d", name, v)
		}
	}
	return nil
}

// Filter is the behavioral state machine. It is owned by a single run; the
// engine creates a fresh Filter per invocation so parallel robustness runs
// never share counters.
type Filter struct {
	cfg Config

	day  string // YYYY-MM-DD of the current trading day
	week string // ISO year-week of the current trading week

	tradesToday    int
	tradesThisWeek int

	lastTradeBar int
	haveTraded   bool

	lastLoss     time.Time
	haveLastLoss bool

	consecutiveLosses int
	disabled          bool
}

func NewFilter(cfg Config) *Filter {
	return &Filter{cfg: cfg}
}

// Observe advances the filter's calendar to the bar timestamp, resetting
// daily and weekly counters on boundary crossings. Must be called once per
// bar, in timestamp order.
func (f *Filter) Observe(ts time.Time) {
	utc := ts.UTC()

	day := utc.Format("2006-01-02")
	if day != f.day {
		f.day = day
		f.tradesToday = 0
		f.consecutiveLosses = 0
		f.haveTraded = false
		// The kill switch survives the daily reset until manual review.
	}

	y, w := utc.ISOWeek()
	week := fmt.Sprintf("%04d-W%02d", y, w)
	if week != f.week {
		f.week = week
		f.tradesThisWeek = 0
	}
}

// Allow reports whether an entry at the given bar passes every behavioral
// rule. The returned reason is empty when allowed.
func (f *Filter) Allow(barIndex int, ts time.Time) (bool, string) {
	if !f.cfg.Enabled {
		return true, ""
	}

	if f.disabled {
		return false, "trading disabled (loss streak kill switch)"
	}

	if f.cfg.MaxTradesPerDay > 0 && f.tradesToday >= f.cfg.MaxTradesPerDay {
		return false, fmt.Sprintf("daily limit of %d trades reached", f.cfg.MaxTradesPerDay)
	}

	if f.cfg.MaxTradesPerWeek > 0 && f.tradesThisWeek >= f.cfg.MaxTradesPerWeek {
		return false, fmt.Sprintf("weekly limit of %d trades reached", f.cfg.MaxTradesPerWeek)
	}

	if f.cfg.CooldownBars > 0 && f.haveTraded {
		if since := barIndex - f.lastTradeBar; since < f.cfg.CooldownBars {
			return false, fmt.Sprintf("cooldown active, %d/%d bars passed", since, f.cfg.CooldownBars)
		}
	}

	if f.cfg.LossCooldownMinutes > 0 && f.haveLastLoss {
		until := f.lastLoss.Add(time.Duration(f.cfg.LossCooldownMinutes) * time.Minute)
		if ts.UTC().Before(until) {
			return false, fmt.Sprintf("loss cooldown until %s", until.Format(time.RFC3339))
		}
	}

	return true, ""
}

// OnTradeOpened records an accepted entry.
func (f *Filter) OnTradeOpened(barIndex int) {
	f.tradesToday++
	f.tradesThisWeek++
	f.lastTradeBar = barIndex
	f.haveTraded = true
}

// OnTradeClosed feeds the realized outcome back into the streak and
// cooldown state.
func (f *Filter) OnTradeClosed(ts time.Time, pnl float64) {
	if pnl < 0 {
		f.lastLoss = ts.UTC()
		f.haveLastLoss = true
		f.consecutiveLosses++
		if f.cfg.MaxConsecutiveLosses > 0 && f.consecutiveLosses >= f.cfg.MaxConsecutiveLosses {
			f.disabled = true
		}
	} else if pnl > 0 {
		f.consecutiveLosses = 0
	}
}

// Disabled reports whether the kill switch has tripped.
func (f *Filter) Disabled() bool { return f.disabled }
