package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/veloxfx/fxlab/engine"
)

type CSVJournal struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

func NewCSV(tradesPath, equityPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	ew := csv.NewWriter(ef)

	if err := tw.Write([]string{
		"trade_id", "run_id", "symbol", "side", "strategy", "lots",
		"entry_price", "exit_price", "initial_stop", "target",
		"open_time", "close_time", "gross_pnl", "spread_cost",
		"slippage_cost", "commission", "swap", "net_pnl",
		"r_multiple", "bars_held", "reason", "balance_after",
	}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{"run_id", "time", "balance", "event"}); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{tw, ew, tf, ef}, nil
}

func (j *CSVJournal) RecordTrade(runID string, t engine.Trade) error {
	j.trades.Write([]string{
		t.ID,
		runID,
		t.Symbol,
		t.Side.String(),
		t.Strategy,
		f(t.Lots),
		f(t.EntryPrice),
		f(t.ExitPrice),
		f(t.InitialStop),
		f(t.Target),
		t.OpenTime.Format(time.RFC3339),
		t.CloseTime.Format(time.RFC3339),
		f(t.GrossPnL),
		f(t.SpreadCost),
		f(t.SlippageCost),
		f(t.Commission),
		f(t.Swap),
		f(t.NetPnL),
		f(t.RMultiple),
		strconv.Itoa(t.BarsHeld),
		t.Reason,
		f(t.BalanceAfter),
	})
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordEquity(runID string, p engine.EquityPoint) error {
	err := j.equity.Write([]string{
		runID,
		p.Time.Format(time.RFC3339),
		f(p.Balance),
		p.Event,
	})
	if err != nil {
		return err
	}

	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
