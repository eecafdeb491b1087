// Package indicators computes technical indicators over a candle series.
//
// Every indicator validates its input in two steps before any arithmetic:
// the candle contract (required fields present, one common length) and then
// its parameter rules in declaration order. The first failure is returned.
// Outputs always have the input length; the leading warm-up indices, where the
// indicator is not yet defined, hold NaN.
//
// Indicators are stateless once constructed and safe for concurrent use.
package indicators

import (
	"slices"

	"github.com/rustyeddy/ta/market"
)

// Indicator is the contract every indicator implements.
type Indicator interface {
	ShortName() string
	Name() string
	RequiredFields() []market.BarField
	Tags() TagSet
	Calculate(s market.Series, p Params) (Output, error)
}

// Warmup is implemented by indicators that document their warm-up horizon:
// the number of leading NaN values for parameters p.
type Warmup interface {
	Horizon(p Params) (int, error)
}

// Describer exposes the parameter schema of an indicator.
type Describer interface {
	Defaults() Params
	Rules() []Rule
}

// All returns one instance of every indicator, sorted by short name.
func All() []Indicator {
	return []Indicator{
		NewAD(),
		NewADOSC(),
		NewADX(),
		NewADXR(),
		NewAPO(),
		NewAROON(),
		NewATR(),
		NewAVGPRICE(),
		NewBBANDS(),
	}
}

// base carries what every indicator shares.
type base struct {
	tagged
	short     string
	name      string
	validator Validator
	defaults  func() any
}

func (b *base) ShortName() string { return b.short }
func (b *base) Name() string      { return b.name }

func (b *base) RequiredFields() []market.BarField {
	return slices.Clone(b.validator.Fields)
}

func (b *base) Rules() []Rule {
	return slices.Clone(b.validator.Rules)
}

// Defaults returns the default parameters, empty for parameterless
// indicators.
func (b *base) Defaults() Params {
	if b.defaults == nil {
		return Params{}
	}
	p, err := values(b.defaults())
	if err != nil {
		return Params{}
	}
	return p
}

// prepare runs the candle contract, decodes raw into schema and runs the
// parameter rules against the effective values. It returns the series length.
func (b *base) prepare(s market.Series, raw Params, schema any) (int, error) {
	if err := b.validator.ValidateSeries(s); err != nil {
		return 0, err
	}
	if schema == nil {
		return seriesLen(s, b.validator.Fields), nil
	}
	if err := Decode(raw, schema); err != nil {
		return 0, err
	}
	p, err := values(schema)
	if err != nil {
		return 0, err
	}
	if err := b.validator.ValidateParams(p, s); err != nil {
		return 0, err
	}
	return seriesLen(s, b.validator.Fields), nil
}

// decodeStatic decodes raw and applies the rules that do not depend on data.
func (b *base) decodeStatic(raw Params, schema any) error {
	if err := Decode(raw, schema); err != nil {
		return err
	}
	p, err := values(schema)
	if err != nil {
		return err
	}
	for _, r := range b.validator.Rules {
		switch r.Kind {
		case RuleWithinData, RuleCustom:
			continue
		}
		if err := r.eval(p, market.Series{}); err != nil {
			return err
		}
	}
	return nil
}

func seriesLen(s market.Series, fields []market.BarField) int {
	if len(fields) == 0 {
		return s.Len()
	}
	data, _ := s.Field(fields[0])
	return len(data)
}

// place copies values[from:] into a NaN series of length n at the same
// indices. A window that would overrun n is a calculation error.
func place(name string, n, from int, values []float64) ([]float64, error) {
	out := NaNSeries(n)
	if from >= len(values) {
		return out, nil
	}
	if len(values) > n {
		return nil, calcError(nil, "Calculated %s length exceeds input data length.", name)
	}
	copy(out[from:], values[from:])
	return out, nil
}
