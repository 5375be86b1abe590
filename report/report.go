// Package report computes performance statistics from a completed run:
// returns, drawdown, Sharpe, win/loss breakdowns, and the per-hour PnL
// table that feeds the session blocklist.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/veloxfx/fxlab/engine"
)

// Summary is the headline statistics block for one run.
type Summary struct {
	Symbol         string  `json:"symbol"`
	TotalTrades    int     `json:"total_trades"`
	InitialBalance float64 `json:"initial_balance"`
	FinalBalance   float64 `json:"final_balance"`
	NetProfit      float64 `json:"net_profit"`

	TotalReturn      float64 `json:"total_return"`      // fraction
	AnnualizedReturn float64 `json:"annualized_return"` // fraction, 365-day basis

	MaxDrawdown    float64 `json:"max_drawdown"` // fraction of peak
	TimeUnderWater float64 `json:"time_under_water"`
	Sharpe         float64 `json:"sharpe"`

	WinRate      float64 `json:"win_rate"`
	ProfitFactor float64 `json:"profit_factor"`
	AvgWin       float64 `json:"avg_win"`
	AvgLoss      float64 `json:"avg_loss"`
	WinLossRatio float64 `json:"win_loss_ratio"`

	TotalCosts float64 `json:"total_costs"`
	TotalSwap  float64 `json:"total_swap"`

	Vetoes map[string]int `json:"vetoes"`

	// HourPnL maps UTC entry hour to cumulative net PnL. Persistent
	// negative hours are session-blocklist candidates.
	HourPnL map[int]float64 `json:"hour_pnl"`
}

// Compute derives the summary from a run result.
func Compute(res *engine.Result) Summary {
	s := Summary{
		Symbol:         res.Symbol,
		TotalTrades:    len(res.Trades),
		InitialBalance: res.InitialBalance,
		FinalBalance:   res.FinalBalance,
		NetProfit:      res.FinalBalance - res.InitialBalance,
		Vetoes:         res.Vetoes,
		HourPnL:        make(map[int]float64),
	}

	if res.InitialBalance > 0 {
		s.TotalReturn = s.NetProfit / res.InitialBalance
	}

	if n := len(res.Equity); n > 1 {
		days := res.Equity[n-1].Time.Sub(res.Equity[0].Time).Hours() / 24
		if days > 0 && s.TotalReturn > -1 {
			s.AnnualizedReturn = math.Pow(1+s.TotalReturn, 365/days) - 1
		}
	}

	s.MaxDrawdown, s.TimeUnderWater = drawdown(res)
	s.Sharpe = sharpe(res.Trades)

	var wins, losses int
	var winSum, lossSum float64
	for _, t := range res.Trades {
		s.TotalCosts += t.SpreadCost + t.SlippageCost + t.Commission
		s.TotalSwap += t.Swap
		s.HourPnL[t.OpenTime.UTC().Hour()] += t.NetPnL

		switch {
		case t.NetPnL > 0:
			wins++
			winSum += t.NetPnL
		case t.NetPnL < 0:
			losses++
			lossSum += -t.NetPnL
		}
	}

	if s.TotalTrades > 0 {
		s.WinRate = float64(wins) / float64(s.TotalTrades)
	}
	if lossSum > 0 {
		s.ProfitFactor = winSum / lossSum
	}
	if wins > 0 {
		s.AvgWin = winSum / float64(wins)
	}
	if losses > 0 {
		s.AvgLoss = lossSum / float64(losses)
	}
	if s.AvgLoss > 0 {
		s.WinLossRatio = s.AvgWin / s.AvgLoss
	}

	return s
}

// drawdown returns the maximum peak-to-trough equity loss as a fraction of
// the peak, plus the fraction of the run spent below a prior peak.
func drawdown(res *engine.Result) (maxDD, tuw float64) {
	peak := res.InitialBalance
	under := 0
	for _, p := range res.Equity {
		if p.Balance > peak {
			peak = p.Balance
		} else {
			under++
		}
		if peak > 0 {
			if dd := (peak - p.Balance) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	if len(res.Equity) > 0 {
		tuw = float64(under) / float64(len(res.Equity))
	}
	return maxDD, tuw
}

// sharpe computes the per-trade Sharpe ratio annualized on a 252-day basis.
func sharpe(trades []engine.Trade) float64 {
	if len(trades) < 2 {
		return 0
	}
	returns := make([]float64, len(trades))
	for i, t := range trades {
		base := t.BalanceAfter - t.NetPnL
		if base <= 0 {
			return 0
		}
		returns[i] = t.NetPnL / base
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var sq float64
	for _, r := range returns {
		d := r - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(len(returns)))
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(252)
}

// String renders the summary as a fixed-width text report.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "symbol             %s\n", s.Symbol)
	fmt.Fprintf(&b, "trades             %d\n", s.TotalTrades)
	fmt.Fprintf(&b, "initial balance    %.2f\n", s.InitialBalance)
	fmt.Fprintf(&b, "final balance      %.2f\n", s.FinalBalance)
	fmt.Fprintf(&b, "net profit         %.2f\n", s.NetProfit)
	fmt.Fprintf(&b, "total return       %.2f%%\n", s.TotalReturn*100)
	fmt.Fprintf(&b, "annualized return  %.2f%%\n", s.AnnualizedReturn*100)
	fmt.Fprintf(&b, "max drawdown       %.2f%%\n", s.MaxDrawdown*100)
	fmt.Fprintf(&b, "time under water   %.2f%%\n", s.TimeUnderWater*100)
	fmt.Fprintf(&b, "sharpe             %.2f\n", s.Sharpe)
	fmt.Fprintf(&b, "win rate           %.2f%%\n", s.WinRate*100)
	fmt.Fprintf(&b, "profit factor      %.2f\n", s.ProfitFactor)
	fmt.Fprintf(&b, "avg win / loss     %.2f / %.2f (%.2f)\n", s.AvgWin, s.AvgLoss, s.WinLossRatio)
	fmt.Fprintf(&b, "total costs        %.2f\n", s.TotalCosts)
	fmt.Fprintf(&b, "total swap         %.2f\n", s.TotalSwap)

	if len(s.HourPnL) > 0 {
		hours := make([]int, 0, len(s.HourPnL))
		for h := range s.HourPnL {
			hours = append(hours, h)
		}
		sort.Ints(hours)
		b.WriteString("pnl by entry hour (UTC):\n")
		for _, h := range hours {
			fmt.Fprintf(&b, "  %02d:00  %+.2f\n", h, s.HourPnL[h])
		}
	}

	if len(s.Vetoes) > 0 {
		stages := make([]string, 0, len(s.Vetoes))
		for st := range s.Vetoes {
			stages = append(stages, st)
		}
		sort.Strings(stages)
		b.WriteString("vetoes by stage:\n")
		for _, st := range stages {
			fmt.Fprintf(&b, "  %-12s %d\n", st, s.Vetoes[st])
		}
	}

	return b.String()
}
