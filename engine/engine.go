// Package engine runs the bar-by-bar simulation: a veto pipeline in front
// of a single-position state machine. Every stage may refuse a trade; only
// the leverage cap inside risk sizing may shrink one. Identical inputs
// produce byte-identical trades and equity curves.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/veloxfx/fxlab/costs"
	"github.com/veloxfx/fxlab/indicators"
	"github.com/veloxfx/fxlab/market"
	"github.com/veloxfx/fxlab/micro"
	"github.com/veloxfx/fxlab/pkg/id"
	"github.com/veloxfx/fxlab/psychology"
	"github.com/veloxfx/fxlab/regime"
	"github.com/veloxfx/fxlab/risk"
	"github.com/veloxfx/fxlab/session"
	"github.com/veloxfx/fxlab/strategy"
)

// Entry fill bases.
const (
	FillClose    = "close"     // fill at the decision bar's close
	FillNextOpen = "next_open" // fill at the next bar's open
)

// Veto pipeline stages, in evaluation order. Used as diagnostic counters.
const (
	StageSession    = "session"
	StageDegenerate = "degenerate"
	StageRegime     = "regime"
	StageStrategy   = "strategy"
	StagePsychology = "psychology"
	StageCosts      = "costs"
	StageRisk       = "risk"
)

var (
	ErrNoSeries         = errors.New("engine: no price series")
	ErrInsufficientData = errors.New("engine: series shorter than warmup window")
)

// Config holds the execution parameters of the simulation itself.
type Config struct {
	InitialBalance float64 `yaml:"initial_balance" json:"initial_balance"`
	WarmupBars     int     `yaml:"warmup_bars" json:"warmup_bars"`
	EntryFill      string  `yaml:"entry_fill" json:"entry_fill"`

	BreakevenTriggerR   float64 `yaml:"breakeven_trigger_r" json:"breakeven_trigger_r"`
	BreakevenOffsetPips float64 `yaml:"breakeven_offset_pips" json:"breakeven_offset_pips"`

	// MaxBarsInTrade closes stale positions at the bar close. Zero disables.
	MaxBarsInTrade int `yaml:"max_bars_in_trade" json:"max_bars_in_trade"`

	// ReversalExit closes an open position when a signal fires the other
	// way. It never flips into the new direction on the same bar.
	ReversalExit bool `yaml:"reversal_exit" json:"reversal_exit"`

	Seed int64 `yaml:"seed" json:"seed"`
}

func Default() Config {
	return Config{
		InitialBalance:    1000,
		WarmupBars:        100,
		EntryFill:         FillClose,
		BreakevenTriggerR: 1.0,
		MaxBarsInTrade:    60,
		Seed:              42,
	}
}

func (c Config) Validate() error {
	if c.InitialBalance <= 0 {
		return fmt.Errorf("engine: initial_balance must be positive")
	}
	if c.WarmupBars < 2 {
		return fmt.Errorf("engine: warmup_bars must be >= 2")
	}
	if c.EntryFill != FillClose && c.EntryFill != FillNextOpen {
		return fmt.Errorf("engine: entry_fill must be %q or %q, got %q", FillClose, FillNextOpen, c.EntryFill)
	}
	if c.BreakevenTriggerR < 0 || c.BreakevenOffsetPips < 0 {
		return fmt.Errorf("engine: breakeven parameters must be >= 0")
	}
	if c.MaxBarsInTrade < 0 {
		return fmt.Errorf("engine: max_bars_in_trade must be >= 0")
	}
	return nil
}

// Options wires every subsystem into one engine.
type Options struct {
	Engine     Config
	Session    session.Config
	Regime     regime.Config
	Strategy   strategy.Config
	Psychology psychology.Config
	Costs      costs.Config
	Micro      micro.Config
	Risk       risk.Config
	Periods    indicators.Periods

	// CostProvider overrides the fixed-constant quote source, typically
	// with a calibrated one. Nil uses the configured constants.
	CostProvider costs.Provider

	Logger zerolog.Logger
}

// Engine is a configured, reusable simulator. Run creates all per-run state
// fresh, so one Engine can serve parallel robustness windows.
type Engine struct {
	cfg     Config
	gate    *session.Gate
	regCfg  regime.Config
	strat   strategy.Config
	psych   psychology.Config
	model   *costs.Model
	riskCfg risk.Config
	periods indicators.Periods
	log     zerolog.Logger
}

func New(opts Options) (*Engine, error) {
	for _, v := range []interface{ Validate() error }{
		opts.Engine, opts.Session, opts.Regime, opts.Strategy,
		opts.Psychology, opts.Costs, opts.Micro, opts.Risk,
	} {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}

	return &Engine{
		cfg:     opts.Engine,
		gate:    session.NewGate(opts.Session),
		regCfg:  opts.Regime,
		strat:   opts.Strategy,
		psych:   opts.Psychology,
		model:   costs.NewModel(opts.Costs, opts.Micro, opts.CostProvider),
		riskCfg: opts.Risk,
		periods: opts.Periods,
		log:     opts.Logger,
	}, nil
}

// Run simulates the series and returns the closed trades and equity curve.
// The context is checked between bars; cancellation returns ctx.Err with
// whatever completed so far discarded.
func (e *Engine) Run(ctx context.Context, series *market.Series) (*Result, error) {
	if series == nil || len(series.Bars) == 0 {
		return nil, ErrNoSeries
	}
	if len(series.Bars) <= e.cfg.WarmupBars {
		return nil, fmt.Errorf("%w: %d bars, warmup %d", ErrInsufficientData, len(series.Bars), e.cfg.WarmupBars)
	}

	bars := series.Bars
	ids := id.NewGenerator(e.cfg.Seed)
	psych := psychology.NewFilter(e.psych)

	res := &Result{
		Symbol:         series.Symbol,
		InitialBalance: e.cfg.InitialBalance,
		Vetoes:         make(map[string]int),
	}
	balance := e.cfg.InitialBalance

	var pos *Position

	for i := e.cfg.WarmupBars; i < len(bars); i++ {
		if i%1024 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		bar := bars[i]
		res.BarsProcessed++
		psych.Observe(bar.Time)

		// Indicators see only closed bars; bars[i-1] is the decision bar.
		decision := bars[i-1]
		snap := indicators.Compute(bars[:i], e.periods)
		st := regime.Classify(e.regCfg, snap, decision.Close)
		spread, slip := e.model.Quote(bar.Time, st.Volatility)

		// Manage the open position first so exits and entries never share
		// a bar.
		if pos != nil {
			closed := e.manage(pos, bar, i, spread, slip, &balance, res, psych)
			if closed {
				pos = nil
				continue
			}
		}

		if pos != nil {
			if e.cfg.ReversalExit {
				if sig := strategy.Evaluate(e.strat, decision, snap, st); sig != nil && sig.Side == -pos.Side {
					e.close(pos, bar.Time, bar.Close, spread, slip, ExitReversal, i, &balance, res, psych)
					pos = nil
				}
			}
			continue
		}

		// Entry pipeline. Each stage vetoes independently; order matters
		// only for which diagnostic gets credited.
		if !e.gate.Allowed(bar.Time) {
			e.veto(res, StageSession, bar, "blocked hour or weekend")
			continue
		}
		if !snap.Finite() {
			e.veto(res, StageDegenerate, bar, "non-finite indicator value")
			continue
		}
		if !st.TradeAllowed {
			e.veto(res, StageRegime, bar, st.VetoReason)
			continue
		}
		sig := strategy.Evaluate(e.strat, decision, snap, st)
		if sig == nil {
			e.veto(res, StageStrategy, bar, "no signal")
			continue
		}
		if ok, reason := psych.Allow(i, bar.Time); !ok {
			e.veto(res, StagePsychology, bar, reason)
			continue
		}
		if ok, reason := e.model.EntryAcceptable(bar.Time, spread, slip); !ok {
			e.veto(res, StageCosts, bar, reason)
			continue
		}

		basis := decision.Close
		if e.cfg.EntryFill == FillNextOpen {
			basis = bar.Open
		}

		size, reason := risk.SizeFor(e.riskCfg, balance, sig.StopDistance, basis, sig.RiskMultiplier)
		if reason != "" {
			e.veto(res, StageRisk, bar, reason)
			continue
		}

		entry := e.model.EntryFill(sig.Side, basis, spread, slip)
		pos = &Position{
			ID:            ids.At(bar.Time),
			Side:          sig.Side,
			Strategy:      sig.Strategy,
			OpenTime:      bar.Time,
			OpenBar:       i,
			Lots:          size.Lots,
			EntryPrice:    entry,
			Stop:          entry - sig.StopDistance*float64(sig.Side),
			Target:        entry + sig.TargetDistance*float64(sig.Side),
			EntrySpread:   spread,
			EntrySlippage: slip,
			lastSwapMark:  bar.Time,
		}
		pos.InitialStop = pos.Stop
		psych.OnTradeOpened(i)

		e.log.Debug().
			Str("id", pos.ID).
			Str("side", pos.Side.String()).
			Str("strategy", pos.Strategy).
			Float64("lots", pos.Lots).
			Float64("entry", pos.EntryPrice).
			Float64("stop", pos.Stop).
			Float64("target", pos.Target).
			Bool("lev_capped", size.CappedByLev).
			Time("ts", bar.Time).
			Msg("position opened")
	}

	if pos != nil {
		last := bars[len(bars)-1]
		snap := indicators.Compute(bars, e.periods)
		st := regime.Classify(e.regCfg, snap, last.Close)
		spread, slip := e.model.Quote(last.Time, st.Volatility)
		e.close(pos, last.Time, last.Close, spread, slip, ExitEndOfData, len(bars)-1, &balance, res, psych)
	}

	res.FinalBalance = balance
	return res, nil
}

// manage applies swap, exit triggers, and breakeven to an open position for
// one bar. Returns true when the position closed.
func (e *Engine) manage(pos *Position, bar market.Bar, i int, spread, slip float64, balance *float64, res *Result, psych *psychology.Filter) bool {
	// Swap accrues once per rollover crossing, whole charges only.
	if n := e.model.RolloverCrossings(pos.lastSwapMark, bar.Time); n > 0 {
		charge := e.model.SwapCharge(pos.Side, pos.Lots) * float64(n)
		pos.SwapAccrued += charge
		res.Equity = append(res.Equity, EquityPoint{
			Time:    bar.Time,
			Balance: *balance + pos.SwapAccrued,
			Event:   "swap",
		})
	}
	pos.lastSwapMark = bar.Time

	// Stop before target when a bar straddles both: the pessimistic fill.
	switch {
	case pos.stopHit(bar):
		reason := ExitStop
		if pos.BreakevenArmed {
			reason = ExitStop + "_breakeven"
		}
		e.close(pos, bar.Time, pos.Stop, spread, slip, reason, i, balance, res, psych)
		return true
	case pos.targetHit(bar):
		e.close(pos, bar.Time, pos.Target, spread, slip, ExitTarget, i, balance, res, psych)
		return true
	}

	if e.cfg.MaxBarsInTrade > 0 && pos.BarsHeld(i) >= e.cfg.MaxBarsInTrade {
		e.close(pos, bar.Time, bar.Close, spread, slip, ExitTimeStop, i, balance, res, psych)
		return true
	}

	if pos.armBreakeven(bar, e.cfg.BreakevenTriggerR, e.cfg.BreakevenOffsetPips) {
		e.log.Debug().Str("id", pos.ID).Float64("stop", pos.Stop).Time("ts", bar.Time).Msg("breakeven armed")
	}
	return false
}

// close settles a position at the given mid-price level and records the
// trade with its full cost breakdown.
func (e *Engine) close(pos *Position, ts time.Time, level float64, spread, slip float64, reason string, barIndex int, balance *float64, res *Result, psych *psychology.Filter) {
	exit := e.model.ExitFill(pos.Side, level, spread, slip)
	notional := market.LotNotional * pos.Lots

	fillPnL := (exit - pos.EntryPrice) * float64(pos.Side) * notional
	spreadCost := (pos.EntrySpread/2 + spread/2) * notional
	slipCost := (pos.EntrySlippage + slip) * notional
	commission := e.model.CommissionRoundTurn(pos.Lots)

	net := fillPnL - commission + pos.SwapAccrued
	gross := fillPnL + spreadCost + slipCost

	stopPips := market.PriceToPips(math.Abs(pos.EntryPrice - pos.InitialStop))
	rMult := 0.0
	if risked := stopPips * market.PipValuePerLot * pos.Lots; risked > 0 {
		rMult = net / risked
	}

	*balance += net
	psych.OnTradeClosed(ts, net)

	res.Trades = append(res.Trades, Trade{
		ID:           pos.ID,
		Symbol:       res.Symbol,
		Side:         pos.Side,
		Strategy:     pos.Strategy,
		OpenTime:     pos.OpenTime,
		CloseTime:    ts,
		Lots:         pos.Lots,
		EntryPrice:   pos.EntryPrice,
		ExitPrice:    exit,
		InitialStop:  pos.InitialStop,
		Target:       pos.Target,
		GrossPnL:     gross,
		SpreadCost:   spreadCost,
		SlippageCost: slipCost,
		Commission:   commission,
		Swap:         pos.SwapAccrued,
		NetPnL:       net,
		RMultiple:    rMult,
		BarsHeld:     pos.BarsHeld(barIndex),
		Reason:       reason,
		BalanceAfter: *balance,
	})
	res.Equity = append(res.Equity, EquityPoint{Time: ts, Balance: *balance, Event: "close"})

	e.log.Debug().
		Str("id", pos.ID).
		Str("reason", reason).
		Float64("net_pnl", net).
		Float64("r", rMult).
		Float64("balance", *balance).
		Time("ts", ts).
		Msg("position closed")
}

func (e *Engine) veto(res *Result, stage string, bar market.Bar, reason string) {
	res.Vetoes[stage]++
	e.log.Debug().Str("stage", stage).Str("reason", reason).Time("ts", bar.Time).Msg("entry vetoed")
}
