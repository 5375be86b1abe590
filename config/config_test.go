package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, ext := range []string{"yaml", "json"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "fxlab."+ext)

			want := Default()
			want.Symbol = "GBPUSD"
			want.Engine.Seed = 1234
			want.Risk.RiskPerTrade = 0.01
			require.NoError(t, want.SaveToFile(path))

			got, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")

	cfg := Default()
	cfg.Risk.RiskPerTrade = 2.0 // 200% per trade
	require.NoError(t, cfg.SaveToFile(path))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestValidateJournalSection(t *testing.T) {
	cfg := Default()
	cfg.Journal.Type = "csv"
	cfg.Journal.TradesFile = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Journal.Type = "sqlite"
	assert.Error(t, cfg.Validate(), "sqlite journal needs a db path")

	cfg = Default()
	cfg.Journal.Type = "none"
	assert.NoError(t, cfg.Validate())

	cfg = Default()
	cfg.Journal.Type = "carrier-pigeon"
	assert.Error(t, cfg.Validate())
}

func TestEngineOptionsCarriesSubsystems(t *testing.T) {
	cfg := Default()
	cfg.Risk.RiskPerTrade = 0.02

	opts := cfg.EngineOptions()
	assert.Equal(t, cfg.Engine, opts.Engine)
	assert.Equal(t, 0.02, opts.Risk.RiskPerTrade)
}
