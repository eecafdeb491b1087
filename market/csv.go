package market

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadCSV reads a bar file from path. See ReadCSV.
func LoadCSV(path string) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return Series{}, fmt.Errorf("open bars: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV reads bars with a header row. Columns named open, high, low,
// close or volume (any case) become fields; a missing column leaves the field
// absent. Other columns such as time are ignored.
func ReadCSV(r io.Reader) (Series, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Series{}, fmt.Errorf("read header: empty file")
		}
		return Series{}, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[BarField]int)
	for i, name := range header {
		f, err := ParseBarField(name)
		if err != nil {
			continue
		}
		cols[f] = i
	}
	if len(cols) == 0 {
		return Series{}, fmt.Errorf("header has no bar columns: %v", header)
	}

	data := make(map[BarField][]float64, len(cols))
	for f := range cols {
		data[f] = []float64{}
	}

	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return Series{}, fmt.Errorf("line %d: %w", line, err)
		}
		for f, idx := range cols {
			if idx >= len(rec) {
				return Series{}, fmt.Errorf("line %d: missing %s column", line, f)
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[idx]), 64)
			if err != nil {
				return Series{}, fmt.Errorf("line %d: parse %s: %w", line, f, err)
			}
			data[f] = append(data[f], v)
		}
	}

	var s Series
	for f, v := range data {
		s = s.With(f, v)
	}
	return s, nil
}
