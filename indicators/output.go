package indicators

import (
	"math"
	"slices"

	"github.com/rustyeddy/ta/indicators/kernel"
)

// Output is the result of a calculation: a single series or a fixed set of
// named series. Every series has the input length.
type Output struct {
	single []float64
	multi  map[string][]float64
	keys   []string
}

// NewSingle wraps one series.
func NewSingle(values []float64) Output {
	return Output{single: values}
}

// NewMulti wraps named series. keys fixes the order reported by Keys.
func NewMulti(keys []string, series map[string][]float64) Output {
	return Output{multi: series, keys: slices.Clone(keys)}
}

// IsSingle reports whether o holds exactly one unnamed series.
func (o Output) IsSingle() bool {
	return o.multi == nil
}

// Single returns the series of a single output.
func (o Output) Single() ([]float64, bool) {
	if !o.IsSingle() {
		return nil, false
	}
	return o.single, true
}

// Series returns the named series of a multi output.
func (o Output) Series(key string) ([]float64, bool) {
	s, ok := o.multi[key]
	return s, ok
}

// Keys returns the series names of a multi output, nil for a single output.
func (o Output) Keys() []string {
	return slices.Clone(o.keys)
}

// Len is the common length of the output series.
func (o Output) Len() int {
	if o.IsSingle() {
		return len(o.single)
	}
	for _, k := range o.keys {
		return len(o.multi[k])
	}
	return 0
}

// Each calls fn for every series in key order. The key of a single output
// is empty.
func (o Output) Each(fn func(key string, values []float64)) {
	if o.IsSingle() {
		fn("", o.single)
		return
	}
	for _, k := range o.keys {
		fn(k, o.multi[k])
	}
}

// Warmup counts the leading NaN values of the first series.
func (o Output) Warmup() int {
	n := -1
	o.Each(func(_ string, values []float64) {
		if n >= 0 {
			return
		}
		n = 0
		for _, v := range values {
			if !math.IsNaN(v) {
				break
			}
			n++
		}
	})
	return max(n, 0)
}

// NaNSeries returns n NaN values, the not-yet-defined marker of the warm-up
// prefix.
func NaNSeries(n int) []float64 {
	return kernel.NaNs(n)
}
