package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

var csvHeader = []string{"time", "open", "high", "low", "close", "volume", "spread"}

// LoadCSV reads a bar series from a CSV file with columns
// time,open,high,low,close[,volume[,spread]]. Time is RFC3339 UTC.
// The resulting series is validated; bad rows abort the load.
func LoadCSV(path, symbol string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bars csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var bars []Bar
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read bars csv: %w", err)
		}
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}
		b, err := parseBarRow(row)
		if err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}

	return NewSeries(symbol, bars)
}

func parseBarRow(row []string) (Bar, error) {
	if len(row) < 5 {
		return Bar{}, fmt.Errorf("%w: need at least 5 columns, got %d", ErrMalformedBar, len(row))
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(row[0]))
	if err != nil {
		return Bar{}, fmt.Errorf("%w: bad time %q", ErrMalformedBar, row[0])
	}
	var vals [4]float64
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return Bar{}, fmt.Errorf("%w: bad price %q", ErrMalformedBar, row[i+1])
		}
		vals[i] = v
	}
	b := Bar{Time: t.UTC(), Open: vals[0], High: vals[1], Low: vals[2], Close: vals[3]}
	if len(row) > 5 && strings.TrimSpace(row[5]) != "" {
		if b.Volume, err = strconv.ParseFloat(strings.TrimSpace(row[5]), 64); err != nil {
			return Bar{}, fmt.Errorf("%w: bad volume %q", ErrMalformedBar, row[5])
		}
	}
	if len(row) > 6 && strings.TrimSpace(row[6]) != "" {
		if b.Spread, err = strconv.ParseFloat(strings.TrimSpace(row[6]), 64); err != nil {
			return Bar{}, fmt.Errorf("%w: bad spread %q", ErrMalformedBar, row[6])
		}
	}
	return b, nil
}

// WriteCSV writes a series in the format LoadCSV reads.
func WriteCSV(path string, s *Series) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create bars csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range s.Bars {
		row := []string{
			b.Time.UTC().Format(time.RFC3339),
			fp(b.Open), fp(b.High), fp(b.Low), fp(b.Close),
			fp(b.Volume), fp(b.Spread),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func fp(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
