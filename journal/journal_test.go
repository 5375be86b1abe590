package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veloxfx/fxlab/engine"
	"github.com/veloxfx/fxlab/market"
)

func sampleResult() *engine.Result {
	open := time.Date(2025, 1, 6, 14, 2, 0, 0, time.UTC)
	return &engine.Result{
		Symbol:         "EURUSD",
		InitialBalance: 1000,
		FinalBalance:   1032.5,
		Trades: []engine.Trade{
			{
				ID:           "01JGXA0000000000000000TEST",
				Symbol:       "EURUSD",
				Side:         market.Long,
				Strategy:     "trend_following",
				OpenTime:     open,
				CloseTime:    open.Add(40 * time.Minute),
				Lots:         0.30,
				EntryPrice:   1.08525,
				ExitPrice:    1.08640,
				InitialStop:  1.08400,
				Target:       1.08775,
				GrossPnL:     40.0,
				SpreadCost:   4.5,
				SlippageCost: 3.0,
				Commission:   0,
				Swap:         0,
				NetPnL:       32.5,
				RMultiple:    0.87,
				BarsHeld:     20,
				Reason:       engine.ExitTarget,
				BalanceAfter: 1032.5,
			},
		},
		Equity: engine.EquityCurve{
			{Time: open.Add(40 * time.Minute), Balance: 1032.5, Event: "close"},
		},
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.sqlite")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	defer j.Close()

	res := sampleResult()
	require.NoError(t, Record(j, "run-1", res))

	trades, err := j.TradesByRun("run-1")
	require.NoError(t, err)
	require.Len(t, trades, 1)

	got := trades[0]
	want := res.Trades[0]
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Side, got.Side)
	assert.Equal(t, want.Strategy, got.Strategy)
	assert.InDelta(t, want.NetPnL, got.NetPnL, 1e-9)
	assert.InDelta(t, want.RMultiple, got.RMultiple, 1e-9)
	assert.Equal(t, want.Reason, got.Reason)
	assert.True(t, want.OpenTime.Equal(got.OpenTime))

	curve, err := j.EquityByRun("run-1")
	require.NoError(t, err)
	require.Len(t, curve, 1)
	assert.InDelta(t, 1032.5, curve[0].Balance, 1e-9)
	assert.Equal(t, "close", curve[0].Event)

	// Unknown run is empty, not an error.
	none, err := j.TradesByRun("nope")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCSVJournal(t *testing.T) {
	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, equityPath)
	require.NoError(t, err)

	res := sampleResult()
	require.NoError(t, Record(j, "run-1", res))
	require.NoError(t, j.Close())

	rows := readCSV(t, tradesPath)
	require.Len(t, rows, 2, "header plus one trade")
	assert.Equal(t, "trade_id", rows[0][0])
	assert.Equal(t, res.Trades[0].ID, rows[1][0])
	assert.Equal(t, "run-1", rows[1][1])
	assert.Equal(t, "BUY", rows[1][3])

	rows = readCSV(t, equityPath)
	require.Len(t, rows, 2)
	assert.Equal(t, "run-1", rows[1][0])
	assert.Equal(t, "close", rows[1][3])
}

func TestMultiJournal(t *testing.T) {
	dir := t.TempDir()

	cj, err := NewCSV(filepath.Join(dir, "t.csv"), filepath.Join(dir, "e.csv"))
	require.NoError(t, err)
	sj, err := NewSQLite(filepath.Join(dir, "j.sqlite"))
	require.NoError(t, err)

	m := Multi{cj, sj}
	require.NoError(t, Record(m, "run-2", sampleResult()))
	require.NoError(t, m.Close())

	reopened, err := NewSQLite(filepath.Join(dir, "j.sqlite"))
	require.NoError(t, err)
	defer reopened.Close()

	trades, err := reopened.TradesByRun("run-2")
	require.NoError(t, err)
	assert.Len(t, trades, 1)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}
