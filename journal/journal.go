// Package journal persists run output: closed trades with their cost
// breakdown and the equity curve, to CSV for eyeballing or SQLite for
// querying across runs.
package journal

import (
	"github.com/veloxfx/fxlab/engine"
)

// Journal receives run output as it is produced. Implementations must
// preserve insertion order.
type Journal interface {
	RecordTrade(runID string, t engine.Trade) error
	RecordEquity(runID string, p engine.EquityPoint) error
	Close() error
}

// Record writes a complete result through a journal.
func Record(j Journal, runID string, res *engine.Result) error {
	for _, t := range res.Trades {
		if err := j.RecordTrade(runID, t); err != nil {
			return err
		}
	}
	for _, p := range res.Equity {
		if err := j.RecordEquity(runID, p); err != nil {
			return err
		}
	}
	return nil
}

// Multi fans writes out to several journals, failing on the first error.
type Multi []Journal

func (m Multi) RecordTrade(runID string, t engine.Trade) error {
	for _, j := range m {
		if err := j.RecordTrade(runID, t); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) RecordEquity(runID string, p engine.EquityPoint) error {
	for _, j := range m {
		if err := j.RecordEquity(runID, p); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Close() error {
	var first error
	for _, j := range m {
		if err := j.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
