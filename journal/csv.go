package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/ta/indicators"
)

// CSVJournal writes runs and outputs to two CSV files. Outputs are stored
// long: one row per value.
type CSVJournal struct {
	runs    *csv.Writer
	outputs *csv.Writer
	rf, of  *os.File
}

func NewCSV(runsPath, outputsPath string) (*CSVJournal, error) {
	rf, err := os.Create(runsPath)
	if err != nil {
		return nil, err
	}
	of, err := os.Create(outputsPath)
	if err != nil {
		_ = rf.Close()
		return nil, err
	}

	rw := csv.NewWriter(rf)
	ow := csv.NewWriter(of)

	if err := rw.Write([]string{"run_id", "created_at", "source", "bars", "indicators"}); err != nil {
		return nil, err
	}
	if err := ow.Write([]string{"run_id", "indicator", "series", "idx", "value"}); err != nil {
		return nil, err
	}

	rw.Flush()
	if err := rw.Error(); err != nil {
		return nil, err
	}
	ow.Flush()
	if err := ow.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{rw, ow, rf, of}, nil
}

func (j *CSVJournal) RecordRun(r Run) error {
	err := j.runs.Write([]string{
		r.RunID,
		r.Created.UTC().Format(time.RFC3339),
		r.Source,
		strconv.Itoa(r.Bars),
		strings.Join(r.Indicators, ","),
	})
	if err != nil {
		return err
	}
	j.runs.Flush()
	return j.runs.Error()
}

func (j *CSVJournal) RecordOutput(runID, indicator string, out indicators.Output) error {
	var err error
	out.Each(func(key string, values []float64) {
		for i, v := range values {
			if err != nil {
				return
			}
			err = j.outputs.Write([]string{runID, indicator, key, strconv.Itoa(i), f(v)})
		}
	})
	if err != nil {
		return err
	}
	j.outputs.Flush()
	return j.outputs.Error()
}

func (j *CSVJournal) Close() error {
	j.runs.Flush()
	if err := j.runs.Error(); err != nil {
		return err
	}
	j.outputs.Flush()
	if err := j.outputs.Error(); err != nil {
		return err
	}

	if err := j.rf.Close(); err != nil {
		return err
	}
	if err := j.of.Close(); err != nil {
		return err
	}
	return nil
}

// Column is one named output in a wide export.
type Column struct {
	Indicator string
	Output    indicators.Output
}

// WriteCSV writes the outputs side by side, one row per bar. Headers are
// idx followed by the indicator name, or indicator.key for multi outputs.
// Warm-up values are empty cells.
func WriteCSV(w io.Writer, cols []Column) error {
	var (
		header = []string{"idx"}
		series [][]float64
		n      = -1
	)
	for _, c := range cols {
		var err error
		c.Output.Each(func(key string, values []float64) {
			if n < 0 {
				n = len(values)
			}
			if len(values) != n && err == nil {
				err = fmt.Errorf("column %s: %d values, want %d", c.Indicator, len(values), n)
			}
			name := c.Indicator
			if key != "" {
				name += "." + key
			}
			header = append(header, name)
			series = append(series, values)
		})
		if err != nil {
			return err
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i := 0; i < n; i++ {
		row[0] = strconv.Itoa(i)
		for c, values := range series {
			row[c+1] = f(values[i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func f(x float64) string {
	if math.IsNaN(x) {
		return ""
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}
