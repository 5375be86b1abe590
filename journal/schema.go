package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	strategy TEXT NOT NULL,
	lots REAL NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	initial_stop REAL NOT NULL,
	target REAL NOT NULL,
	open_time DATETIME NOT NULL,
	close_time DATETIME NOT NULL,
	gross_pnl REAL NOT NULL,
	spread_cost REAL NOT NULL,
	slippage_cost REAL NOT NULL,
	commission REAL NOT NULL,
	swap REAL NOT NULL,
	net_pnl REAL NOT NULL,
	r_multiple REAL NOT NULL,
	bars_held INTEGER NOT NULL,
	reason TEXT NOT NULL,
	balance_after REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	balance REAL NOT NULL,
	event TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_equity_run_time ON equity(run_id, time);
`
