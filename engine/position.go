package engine

import (
	"time"

	"github.com/veloxfx/fxlab/market"
)

// State is the position lifecycle. A run holds at most one open position.
type State int8

const (
	Flat State = iota
	Open
	Closed
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Closed:
		return "closed"
	}
	return "flat"
}

// Position tracks one open trade from fill to exit.
type Position struct {
	ID       string
	Side     market.Side
	Strategy string

	OpenTime   time.Time
	OpenBar    int
	Lots       float64
	EntryPrice float64

	Stop        float64 // current stop, moves on breakeven
	InitialStop float64 // sized against, never moves
	Target      float64

	// Breakeven arms at most once; repeated trigger bars are no-ops.
	BreakevenArmed bool

	EntrySpread   float64 // price units, full spread at entry
	EntrySlippage float64 // price units

	SwapAccrued  float64
	lastSwapMark time.Time // last timestamp swap crossings were counted to
}

// BarsHeld counts bars since entry, inclusive of the current bar.
func (p *Position) BarsHeld(barIndex int) int {
	return barIndex - p.OpenBar
}

// Unrealized returns the mark-to-market PnL at price, costs excluded.
func (p *Position) Unrealized(price float64) float64 {
	return (price - p.EntryPrice) * float64(p.Side) * market.LotNotional * p.Lots
}

// favorableMove returns how far price has moved in the trade's direction
// from entry, in price units. Negative when underwater.
func (p *Position) favorableMove(price float64) float64 {
	return (price - p.EntryPrice) * float64(p.Side)
}

// stopHit reports whether the bar's extreme reached the current stop.
func (p *Position) stopHit(bar market.Bar) bool {
	if p.Side == market.Long {
		return bar.Low <= p.Stop
	}
	return bar.High >= p.Stop
}

// targetHit reports whether the bar's extreme reached the target.
func (p *Position) targetHit(bar market.Bar) bool {
	if p.Side == market.Long {
		return bar.High >= p.Target
	}
	return bar.Low <= p.Target
}

// armBreakeven moves the stop to entry plus offset once price has traveled
// triggerR initial-risk units in the trade's favor. Idempotent: once armed,
// later triggers change nothing.
func (p *Position) armBreakeven(bar market.Bar, triggerR, offsetPips float64) bool {
	if p.BreakevenArmed || triggerR <= 0 {
		return false
	}

	initialRisk := (p.EntryPrice - p.InitialStop) * float64(p.Side)
	if initialRisk <= 0 {
		return false
	}

	extreme := bar.High
	if p.Side == market.Short {
		extreme = bar.Low
	}
	if p.favorableMove(extreme) < triggerR*initialRisk {
		return false
	}

	offset := market.PipsToPrice(offsetPips) * float64(p.Side)
	p.Stop = p.EntryPrice + offset
	p.BreakevenArmed = true
	return true
}
