package market

import (
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

// LoadJSON reads a JSON bar file from path. See ParseJSON.
func LoadJSON(path string) (Series, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Series{}, fmt.Errorf("reading bars from file with path '%s': %w", path, err)
	}
	return ParseJSON(b)
}

// ParseJSON parses an array of bar objects, e.g.
//
//	[{"date":"2024-01-02 09:30:00","open":1,"high":2,"low":0.5,"close":1.5,"volume":100}]
//
// The keys of the first object decide which fields are present.
func ParseJSON(b []byte) (Series, error) {
	if !gjson.ValidBytes(b) {
		return Series{}, fmt.Errorf("invalid json bar data")
	}
	root := gjson.ParseBytes(b)
	if !root.IsArray() {
		return Series{}, fmt.Errorf("expected a json array of bars, got %s", root.Type)
	}
	bars := root.Array()

	var s Series
	if len(bars) == 0 {
		return s, nil
	}

	for _, f := range BarFields {
		key := strings.ToLower(f.String())
		if !bars[0].Get(key).Exists() {
			continue
		}
		data := make([]float64, len(bars))
		for i, bar := range bars {
			v := bar.Get(key)
			if v.Type != gjson.Number {
				return Series{}, fmt.Errorf("bar %d: %s is not a number: %q", i, key, v.Raw)
			}
			data[i] = v.Float()
		}
		s = s.With(f, data)
	}

	if len(s.Present()) == 0 {
		return Series{}, fmt.Errorf("bars carry none of open/high/low/close/volume")
	}
	return s, nil
}
