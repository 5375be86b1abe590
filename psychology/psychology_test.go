package psychology

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2025, 1, 6, 13, 0, 0, 0, time.UTC)

func TestDailyCap(t *testing.T) {
	cfg := Default()
	cfg.CooldownBars = 0
	f := NewFilter(cfg)
	f.Observe(monday)

	for i := 0; i < cfg.MaxTradesPerDay; i++ {
		ok, _ := f.Allow(i, monday)
		require.True(t, ok, "trade %d should pass", i)
		f.OnTradeOpened(i)
	}

	ok, reason := f.Allow(10, monday)
	assert.False(t, ok)
	assert.Contains(t, reason, "daily limit")

	// Next day the counter resets.
	f.Observe(monday.Add(24 * time.Hour))
	ok, _ = f.Allow(11, monday.Add(24*time.Hour))
	assert.True(t, ok)
}

func TestWeeklyCap(t *testing.T) {
	cfg := Default()
	cfg.CooldownBars = 0
	cfg.MaxTradesPerDay = 0
	cfg.MaxTradesPerWeek = 2
	f := NewFilter(cfg)

	f.Observe(monday)
	f.OnTradeOpened(0)
	f.Observe(monday.Add(24 * time.Hour)) // tuesday, same ISO week
	f.OnTradeOpened(1)

	ok, reason := f.Allow(2, monday.Add(24*time.Hour))
	assert.False(t, ok)
	assert.Contains(t, reason, "weekly limit")

	f.Observe(monday.Add(7 * 24 * time.Hour))
	ok, _ = f.Allow(3, monday.Add(7*24*time.Hour))
	assert.True(t, ok)
}

func TestCooldownBars(t *testing.T) {
	cfg := Default()
	f := NewFilter(cfg)
	f.Observe(monday)

	f.OnTradeOpened(100)

	ok, reason := f.Allow(102, monday)
	assert.False(t, ok)
	assert.Contains(t, reason, "cooldown")

	ok, _ = f.Allow(105, monday)
	assert.True(t, ok, "cooldown expires after CooldownBars bars")
}

func TestLossCooldownMinutes(t *testing.T) {
	cfg := Default()
	cfg.CooldownBars = 0
	cfg.LossCooldownMinutes = 30
	f := NewFilter(cfg)
	f.Observe(monday)

	f.OnTradeClosed(monday, -25)

	ok, reason := f.Allow(0, monday.Add(10*time.Minute))
	assert.False(t, ok)
	assert.Contains(t, reason, "loss cooldown")

	ok, _ = f.Allow(0, monday.Add(31*time.Minute))
	assert.True(t, ok)
}

func TestKillSwitch(t *testing.T) {
	cfg := Default()
	cfg.CooldownBars = 0
	f := NewFilter(cfg)
	f.Observe(monday)

	for i := 0; i < cfg.MaxConsecutiveLosses; i++ {
		f.OnTradeClosed(monday, -10)
	}
	require.True(t, f.Disabled())

	ok, reason := f.Allow(0, monday)
	assert.False(t, ok)
	assert.Contains(t, reason, "kill switch")

	// The kill switch survives the daily reset.
	f.Observe(monday.Add(24 * time.Hour))
	assert.True(t, f.Disabled())
	ok, _ = f.Allow(0, monday.Add(24*time.Hour))
	assert.False(t, ok)
}

func TestWinResetsStreak(t *testing.T) {
	cfg := Default()
	f := NewFilter(cfg)
	f.Observe(monday)

	for i := 0; i < cfg.MaxConsecutiveLosses-1; i++ {
		f.OnTradeClosed(monday, -10)
	}
	f.OnTradeClosed(monday, 40)
	f.OnTradeClosed(monday, -10)

	assert.False(t, f.Disabled(), "a win breaks the streak")
}

func TestDisabledConfig(t *testing.T) {
	cfg := Default()
	cfg.Enabled = false
	f := NewFilter(cfg)
	f.Observe(monday)

	for i := 0; i < 50; i++ {
		f.OnTradeOpened(i)
		f.OnTradeClosed(monday, -10)
	}
	ok, _ := f.Allow(50, monday)
	assert.True(t, ok, "disabled filter never vetoes")
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	cfg := Default()
	cfg.CooldownBars = -1
	assert.Error(t, cfg.Validate())
}
