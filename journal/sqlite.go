package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/veloxfx/fxlab/engine"
	"github.com/veloxfx/fxlab/market"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTrade(runID string, t engine.Trade) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, run_id, symbol, side, strategy, lots, entry_price, exit_price,
		 initial_stop, target, open_time, close_time, gross_pnl, spread_cost,
		 slippage_cost, commission, swap, net_pnl, r_multiple, bars_held, reason, balance_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, runID, t.Symbol, t.Side.String(), t.Strategy, t.Lots, t.EntryPrice, t.ExitPrice,
		t.InitialStop, t.Target, t.OpenTime, t.CloseTime, t.GrossPnL, t.SpreadCost,
		t.SlippageCost, t.Commission, t.Swap, t.NetPnL, t.RMultiple, t.BarsHeld, t.Reason, t.BalanceAfter,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(runID string, p engine.EquityPoint) error {
	_, err := j.db.Exec(`
		INSERT INTO equity (run_id, time, balance, event)
		VALUES (?, ?, ?, ?)`,
		runID, p.Time, p.Balance, p.Event,
	)
	return err
}

// TradesByRun loads a run's trades in close-time order.
func (j *SQLiteJournal) TradesByRun(runID string) ([]engine.Trade, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, symbol, side, strategy, lots, entry_price, exit_price,
		       initial_stop, target, open_time, close_time, gross_pnl, spread_cost,
		       slippage_cost, commission, swap, net_pnl, r_multiple, bars_held, reason, balance_after
		FROM trades WHERE run_id = ? ORDER BY close_time`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []engine.Trade
	for rows.Next() {
		var t engine.Trade
		var side string
		if err := rows.Scan(
			&t.ID, &t.Symbol, &side, &t.Strategy, &t.Lots, &t.EntryPrice, &t.ExitPrice,
			&t.InitialStop, &t.Target, &t.OpenTime, &t.CloseTime, &t.GrossPnL, &t.SpreadCost,
			&t.SlippageCost, &t.Commission, &t.Swap, &t.NetPnL, &t.RMultiple, &t.BarsHeld, &t.Reason, &t.BalanceAfter,
		); err != nil {
			return nil, err
		}
		if side == "BUY" {
			t.Side = market.Long
		} else {
			t.Side = market.Short
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// EquityByRun loads a run's equity curve in time order.
func (j *SQLiteJournal) EquityByRun(runID string) (engine.EquityCurve, error) {
	rows, err := j.db.Query(`
		SELECT time, balance, event FROM equity
		WHERE run_id = ? ORDER BY time`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var curve engine.EquityCurve
	for rows.Next() {
		var p engine.EquityPoint
		var ts time.Time
		if err := rows.Scan(&ts, &p.Balance, &p.Event); err != nil {
			return nil, err
		}
		p.Time = ts.UTC()
		curve = append(curve, p)
	}
	return curve, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
