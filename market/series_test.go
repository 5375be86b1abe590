package market

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(path, data string) error {
	return os.WriteFile(path, []byte(data), 0644)
}

func mkBars(start time.Time, n int, step time.Duration) []Bar {
	bars := make([]Bar, n)
	for i := range bars {
		bars[i] = Bar{
			Time:   start.Add(time.Duration(i) * step),
			Open:   1.1000,
			High:   1.1010,
			Low:    1.0990,
			Close:  1.1005,
			Volume: 100,
			Spread: 0.00012,
		}
	}
	return bars
}

func TestNewSeries(t *testing.T) {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	t.Run("valid", func(t *testing.T) {
		s, err := NewSeries("EURUSD", mkBars(start, 10, time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 10, s.Len())
	})

	t.Run("non-monotonic", func(t *testing.T) {
		bars := mkBars(start, 5, time.Minute)
		bars[3].Time = bars[1].Time
		_, err := NewSeries("EURUSD", bars)
		require.ErrorIs(t, err, ErrNonMonotonic)
	})

	t.Run("duplicate timestamp", func(t *testing.T) {
		bars := mkBars(start, 3, time.Minute)
		bars[2].Time = bars[1].Time
		_, err := NewSeries("EURUSD", bars)
		require.ErrorIs(t, err, ErrNonMonotonic)
	})

	t.Run("high below low", func(t *testing.T) {
		bars := mkBars(start, 3, time.Minute)
		bars[1].High = bars[1].Low - 0.0001
		_, err := NewSeries("EURUSD", bars)
		require.ErrorIs(t, err, ErrMalformedBar)
	})

	t.Run("non-positive price", func(t *testing.T) {
		bars := mkBars(start, 3, time.Minute)
		bars[0].Close = 0
		_, err := NewSeries("EURUSD", bars)
		require.ErrorIs(t, err, ErrMalformedBar)
	})

	t.Run("zero time", func(t *testing.T) {
		bars := mkBars(start, 3, time.Minute)
		bars[2].Time = time.Time{}
		_, err := NewSeries("EURUSD", bars)
		require.ErrorIs(t, err, ErrMalformedBar)
	})
}

func TestSeriesSlice(t *testing.T) {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	s, err := NewSeries("EURUSD", mkBars(start, 10, time.Minute))
	require.NoError(t, err)

	sub := s.Slice(start.Add(2*time.Minute), start.Add(5*time.Minute))
	require.Equal(t, 3, sub.Len())
	assert.Equal(t, start.Add(2*time.Minute), sub.Bars[0].Time)
	assert.Equal(t, start.Add(4*time.Minute), sub.Bars[2].Time)

	assert.Equal(t, 0, s.Slice(start.Add(time.Hour), start.Add(2*time.Hour)).Len())
	assert.Equal(t, 10, s.Slice(start.Add(-time.Hour), start.Add(time.Hour)).Len())
}

func TestSliceFeed(t *testing.T) {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	s, err := NewSeries("EURUSD", mkBars(start, 3, time.Minute))
	require.NoError(t, err)

	feed := NewSliceFeed(s)
	for i := 0; i < 3; i++ {
		b, ok, err := feed.Next()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, s.Bars[i], b)
	}
	_, ok, err := feed.Next()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, feed.Close())
}

func TestCSVRoundTrip(t *testing.T) {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	want := GenSeries("EURUSD", GenSpec{
		Start:  start,
		Bars:   50,
		Price:  1.0850,
		Noise:  0.0004,
		Spread: 0.00015,
		Seed:   3,
	})

	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, WriteCSV(path, want))

	got, err := LoadCSV(path, "EURUSD")
	require.NoError(t, err)
	require.Equal(t, want.Len(), got.Len())
	assert.Equal(t, want.Bars, got.Bars)
}

func TestLoadCSVRejectsBadRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	data := "time,open,high,low,close,volume,spread\n" +
		"2025-01-06T00:00:00Z,1.1,1.2,1.0,1.15,100,0.0001\n" +
		"not-a-time,1.1,1.2,1.0,1.15,100,0.0001\n"
	require.NoError(t, writeFile(path, data))

	_, err := LoadCSV(path, "EURUSD")
	require.ErrorIs(t, err, ErrMalformedBar)
}

func TestGenSeriesDeterministic(t *testing.T) {
	spec := GenSpec{
		Start: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		Bars:  200,
		Price: 1.0850,
		Noise: 0.0004,
		Seed:  42,
	}

	a := GenSeries("EURUSD", spec)
	b := GenSeries("EURUSD", spec)
	assert.Equal(t, a.Bars, b.Bars)

	spec.Seed = 43
	c := GenSeries("EURUSD", spec)
	assert.NotEqual(t, a.Bars, c.Bars)
}

func TestPipConversions(t *testing.T) {
	assert.InDelta(t, 1.5, PriceToPips(0.00015), 1e-9)
	assert.InDelta(t, 0.00015, PipsToPrice(1.5), 1e-12)
	assert.InDelta(t, 108500.0, Notional(1.0, 1.0850), 1e-6)
}
