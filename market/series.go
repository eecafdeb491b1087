// Package market holds the candle series consumed by every indicator and
// the loaders that build one from CSV or JSON bar files.
package market

import (
	"fmt"
	"strings"
)

// BarField names one of the five sequences of a Series.
type BarField int

const (
	Open BarField = iota
	High
	Low
	Close
	Volume
)

// BarFields lists every field in canonical order.
var BarFields = []BarField{Open, High, Low, Close, Volume}

// String returns the uppercase name used in error messages, e.g. "HIGH".
func (f BarField) String() string {
	switch f {
	case Open:
		return "OPEN"
	case High:
		return "HIGH"
	case Low:
		return "LOW"
	case Close:
		return "CLOSE"
	case Volume:
		return "VOLUME"
	}
	return fmt.Sprintf("BarField(%d)", int(f))
}

// ParseBarField is the case-insensitive inverse of String.
func ParseBarField(s string) (BarField, error) {
	for _, f := range BarFields {
		if strings.EqualFold(strings.TrimSpace(s), f.String()) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown bar field %q", s)
}

// Series is the shared indicator input. A nil slice means the field is
// absent; an empty non-nil slice is a present field of length zero.
//
// A Series is never mutated by indicators.
type Series struct {
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64
}

// Field returns the sequence for f and whether it is present.
func (s Series) Field(f BarField) ([]float64, bool) {
	var v []float64
	switch f {
	case Open:
		v = s.Open
	case High:
		v = s.High
	case Low:
		v = s.Low
	case Close:
		v = s.Close
	case Volume:
		v = s.Volume
	default:
		return nil, false
	}
	return v, v != nil
}

// Present lists the fields that are set, in canonical order.
func (s Series) Present() []BarField {
	var out []BarField
	for _, f := range BarFields {
		if _, ok := s.Field(f); ok {
			out = append(out, f)
		}
	}
	return out
}

// Len returns the length of the first present field, or 0.
func (s Series) Len() int {
	for _, f := range BarFields {
		if v, ok := s.Field(f); ok {
			return len(v)
		}
	}
	return 0
}

// With returns a copy of s with field f replaced by data.
func (s Series) With(f BarField, data []float64) Series {
	switch f {
	case Open:
		s.Open = data
	case High:
		s.High = data
	case Low:
		s.Low = data
	case Close:
		s.Close = data
	case Volume:
		s.Volume = data
	}
	return s
}
