package engine

import (
	"time"

	"github.com/veloxfx/fxlab/market"
)

// Exit reasons recorded on closed trades.
const (
	ExitStop      = "stop"
	ExitTarget    = "target"
	ExitTimeStop  = "time_stop"
	ExitReversal  = "reversal"
	ExitEndOfData = "end_of_data"
)

// Trade is one completed round turn with its full cost breakdown. NetPnL is
// the only number that touches the balance.
type Trade struct {
	ID     string      `json:"id"`
	Symbol string      `json:"symbol"`
	Side   market.Side `json:"side"`

	Strategy string `json:"strategy"`

	OpenTime  time.Time `json:"open_time"`
	CloseTime time.Time `json:"close_time"`

	Lots       float64 `json:"lots"`
	EntryPrice float64 `json:"entry_price"`
	ExitPrice  float64 `json:"exit_price"`

	InitialStop float64 `json:"initial_stop"`
	Target      float64 `json:"target"`

	GrossPnL     float64 `json:"gross_pnl"`
	SpreadCost   float64 `json:"spread_cost"`
	SlippageCost float64 `json:"slippage_cost"`
	Commission   float64 `json:"commission"`
	Swap         float64 `json:"swap"`
	NetPnL       float64 `json:"net_pnl"`

	// RMultiple is NetPnL over the risk at the initial stop. Breakeven
	// moves never change the denominator.
	RMultiple float64 `json:"r_multiple"`

	BarsHeld int    `json:"bars_held"`
	Reason   string `json:"reason"`

	BalanceAfter float64 `json:"balance_after"`
}

// EquityPoint marks the account balance after a realizing event: a trade
// close or a swap charge.
type EquityPoint struct {
	Time    time.Time `json:"time"`
	Balance float64   `json:"balance"`
	Event   string    `json:"event"` // "close" or "swap"
}

// EquityCurve is the ordered sequence of equity points for a run.
type EquityCurve []EquityPoint

// Result is everything a single backtest run produces.
type Result struct {
	Symbol         string         `json:"symbol"`
	InitialBalance float64        `json:"initial_balance"`
	FinalBalance   float64        `json:"final_balance"`
	BarsProcessed  int            `json:"bars_processed"`
	Trades         []Trade        `json:"trades"`
	Equity         EquityCurve    `json:"equity"`
	Vetoes         map[string]int `json:"vetoes"`
}
