package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/ta/indicators"
)

// ErrNotFound is returned when a run or output is not in the journal.
var ErrNotFound = errors.New("not found")

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(r Run) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, created_at, source, bars, indicators)
		VALUES (?, ?, ?, ?, ?)`,
		r.RunID, r.Created.UTC(), r.Source, r.Bars, strings.Join(r.Indicators, ","),
	)
	return err
}

// RecordOutput stores every value of out in one transaction.
func (j *SQLite) RecordOutput(runID, indicator string, out indicators.Output) (err error) {
	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(`
		INSERT INTO outputs
		(run_id, indicator, series, idx, value)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	out.Each(func(key string, values []float64) {
		for i, v := range values {
			if err != nil {
				return
			}
			_, err = stmt.Exec(runID, indicator, key, i, nullable(v))
		}
	})
	if err != nil {
		return fmt.Errorf("record %s output: %w", indicator, err)
	}
	return tx.Commit()
}

func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// GetRun returns a single run by id.
func (j *SQLite) GetRun(runID string) (Run, error) {
	row := j.db.QueryRow(`
		SELECT run_id, created_at, source, bars, indicators
		FROM runs
		WHERE run_id = ?`, runID)

	r, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, fmt.Errorf("run %q: %w", runID, ErrNotFound)
		}
		return Run{}, err
	}
	return r, nil
}

// ListRuns returns every run, oldest first.
func (j *SQLite) ListRuns() ([]Run, error) {
	rows, err := j.db.Query(`
		SELECT run_id, created_at, source, bars, indicators
		FROM runs
		ORDER BY run_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		r    Run
		inds string
	)
	if err := s.Scan(&r.RunID, &r.Created, &r.Source, &r.Bars, &inds); err != nil {
		return Run{}, err
	}
	if inds != "" {
		r.Indicators = strings.Split(inds, ",")
	}
	return r, nil
}

// LoadOutput rebuilds the output an indicator produced in a run. NULL values
// come back as NaN.
func (j *SQLite) LoadOutput(runID, indicator string) (indicators.Output, error) {
	rows, err := j.db.Query(`
		SELECT series, idx, value
		FROM outputs
		WHERE run_id = ? AND indicator = ?
		ORDER BY series ASC, idx ASC`, runID, indicator)
	if err != nil {
		return indicators.Output{}, err
	}
	defer rows.Close()

	series := map[string][]float64{}
	for rows.Next() {
		var (
			key   string
			idx   int
			value sql.NullFloat64
		)
		if err := rows.Scan(&key, &idx, &value); err != nil {
			return indicators.Output{}, err
		}
		if idx != len(series[key]) {
			return indicators.Output{}, fmt.Errorf("%s/%s series %q: gap at index %d", runID, indicator, key, idx)
		}
		v := math.NaN()
		if value.Valid {
			v = value.Float64
		}
		series[key] = append(series[key], v)
	}
	if err := rows.Err(); err != nil {
		return indicators.Output{}, err
	}

	if len(series) == 0 {
		return indicators.Output{}, fmt.Errorf("output %s/%s: %w", runID, indicator, ErrNotFound)
	}
	if single, ok := series[""]; ok && len(series) == 1 {
		return indicators.NewSingle(single), nil
	}

	keys := make([]string, 0, len(series))
	for k := range series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return indicators.NewMulti(keys, series), nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
