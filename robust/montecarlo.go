package robust

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/veloxfx/fxlab/engine"
)

// MonteCarloConfig controls the trade-sequence resampler.
type MonteCarloConfig struct {
	Iterations int   `yaml:"iterations" json:"iterations"`
	Seed       int64 `yaml:"seed" json:"seed"`
}

func DefaultMonteCarlo() MonteCarloConfig {
	return MonteCarloConfig{Iterations: 10000, Seed: 42}
}

func (c MonteCarloConfig) Validate() error {
	if c.Iterations <= 0 {
		return fmt.Errorf("robust: monte carlo iterations must be positive")
	}
	return nil
}

// MonteCarloResult summarizes the resampled distributions. Percentile maps
// are keyed 5, 50, 95. The same seed reproduces the same result exactly.
type MonteCarloResult struct {
	Iterations int `json:"iterations"`
	Trades     int `json:"trades"`

	FinalBalance map[int]float64 `json:"final_balance"`
	MaxDrawdown  map[int]float64 `json:"max_drawdown"`

	RuinProbability float64 `json:"ruin_probability"` // fraction of paths ending below initial
}

// MonteCarlo bootstraps the per-trade return sequence: each path draws
// len(trades) returns with replacement and compounds them from the initial
// balance. Resampling returns rather than absolute PnL keeps paths
// consistent under compounding.
func MonteCarlo(cfg MonteCarloConfig, res *engine.Result) (*MonteCarloResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(res.Trades) == 0 {
		return nil, fmt.Errorf("robust: no trades to resample")
	}

	returns := make([]float64, len(res.Trades))
	for i, t := range res.Trades {
		base := t.BalanceAfter - t.NetPnL
		if base <= 0 {
			return nil, fmt.Errorf("robust: trade %s has non-positive pre-trade balance", t.ID)
		}
		returns[i] = t.NetPnL / base
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	finals := make([]float64, cfg.Iterations)
	maxDDs := make([]float64, cfg.Iterations)
	ruined := 0

	for it := 0; it < cfg.Iterations; it++ {
		balance := res.InitialBalance
		peak := balance
		maxDD := 0.0

		for range returns {
			balance *= 1 + returns[rng.Intn(len(returns))]
			if balance > peak {
				peak = balance
			} else if peak > 0 {
				if dd := (peak - balance) / peak; dd > maxDD {
					maxDD = dd
				}
			}
		}

		finals[it] = balance
		maxDDs[it] = maxDD
		if balance < res.InitialBalance {
			ruined++
		}
	}

	sort.Float64s(finals)
	sort.Float64s(maxDDs)

	return &MonteCarloResult{
		Iterations: cfg.Iterations,
		Trades:     len(res.Trades),
		FinalBalance: map[int]float64{
			5:  percentile(finals, 5),
			50: percentile(finals, 50),
			95: percentile(finals, 95),
		},
		MaxDrawdown: map[int]float64{
			5:  percentile(maxDDs, 5),
			50: percentile(maxDDs, 50),
			95: percentile(maxDDs, 95),
		},
		RuinProbability: float64(ruined) / float64(cfg.Iterations),
	}, nil
}

// percentile reads the pth percentile from an already sorted slice using
// nearest-rank.
func percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
