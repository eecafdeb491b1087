package indicators

import (
	"fmt"

	"github.com/rustyeddy/ta/market"
)

// RuleKind selects how a Rule is evaluated.
type RuleKind int

const (
	RuleRequired RuleKind = iota + 1
	RulePositiveInteger
	RulePositiveNumber
	RuleCorrectPeriod
	RuleLessThanData
	RuleWithinData
	RuleCustom
)

func (k RuleKind) String() string {
	switch k {
	case RuleRequired:
		return "Required"
	case RulePositiveInteger:
		return "PositiveInteger"
	case RulePositiveNumber:
		return "PositiveNumber"
	case RuleCorrectPeriod:
		return "CorrectPeriod"
	case RuleLessThanData:
		return "LessThanData"
	case RuleWithinData:
		return "WithinData"
	case RuleCustom:
		return "Custom"
	}
	return fmt.Sprintf("RuleKind(%d)", int(k))
}

// Rule is a declarative parameter check. Only the fields relevant to Kind
// are set; use the constructors below.
type Rule struct {
	Kind  RuleKind
	Param string
	// Other is the right-hand parameter of CorrectPeriod.
	Other string
	// Field is the candle field bounding WithinData and Custom.
	Field market.BarField
	// Bound is the static bound of LessThanData.
	Bound int
	// Check is the predicate of Custom. It receives the parameter value and
	// the candle field data.
	Check func(value float64, data []float64) error
}

// Required fails when name is not a key of the parameters.
func Required(name string) Rule {
	return Rule{Kind: RuleRequired, Param: name}
}

// PositiveInteger fails unless name holds an integer greater than zero.
func PositiveInteger(name string) Rule {
	return Rule{Kind: RulePositiveInteger, Param: name}
}

// PositiveNumber fails unless name holds a number greater than zero.
func PositiveNumber(name string) Rule {
	return Rule{Kind: RulePositiveNumber, Param: name}
}

// CorrectPeriod requires left < right.
func CorrectPeriod(left, right string) Rule {
	return Rule{Kind: RuleCorrectPeriod, Param: left, Other: right}
}

// LessThanData bounds name by a static data length.
func LessThanData(name string, bound int) Rule {
	return Rule{Kind: RuleLessThanData, Param: name, Bound: bound}
}

// WithinData bounds name by the length of a candle field.
func WithinData(name string, field market.BarField) Rule {
	return Rule{Kind: RuleWithinData, Param: name, Field: field}
}

// Custom evaluates check against the value of name and the data of field.
// A non-*Error returned by check is reported as InvalidParameters.
func Custom(name string, field market.BarField, check func(value float64, data []float64) error) Rule {
	return Rule{Kind: RuleCustom, Param: name, Field: field, Check: check}
}

// String describes the rule, e.g. "WithinData(period, HIGH)".
func (r Rule) String() string {
	switch r.Kind {
	case RuleCorrectPeriod:
		return fmt.Sprintf("%s(%s, %s)", r.Kind, r.Param, r.Other)
	case RuleLessThanData:
		return fmt.Sprintf("%s(%s, %d)", r.Kind, r.Param, r.Bound)
	case RuleWithinData, RuleCustom:
		return fmt.Sprintf("%s(%s, %s)", r.Kind, r.Param, r.Field)
	}
	return fmt.Sprintf("%s(%s)", r.Kind, r.Param)
}

// Validator gates a calculation: the candle contract over Fields, then the
// parameter contract over Rules in order. The first failure wins.
type Validator struct {
	Fields []market.BarField
	Rules  []Rule
}

// NewValidator builds a Validator.
func NewValidator(fields []market.BarField, rules ...Rule) Validator {
	return Validator{Fields: fields, Rules: rules}
}

// Validate runs the candle contract and then the parameter contract.
func (v Validator) Validate(s market.Series, p Params) error {
	if err := v.ValidateSeries(s); err != nil {
		return err
	}
	return v.ValidateParams(p, s)
}

// ValidateSeries checks presence of every required field in declared order
// and then that they all share one length.
func (v Validator) ValidateSeries(s market.Series) error {
	for _, f := range v.Fields {
		if _, ok := s.Field(f); !ok {
			return invalidInput("Field '%s' is required but missing.", f)
		}
	}

	length := -1
	for _, f := range v.Fields {
		data, _ := s.Field(f)
		if length < 0 {
			length = len(data)
			continue
		}
		if len(data) != length {
			return invalidInput("Input data series of the bars must have the same length.")
		}
	}
	return nil
}

// ValidateParams evaluates the rules in order against p.
func (v Validator) ValidateParams(p Params, s market.Series) error {
	for _, r := range v.Rules {
		if err := r.eval(p, s); err != nil {
			return err
		}
	}
	return nil
}

func (r Rule) eval(p Params, s market.Series) error {
	switch r.Kind {
	case RuleRequired:
		if _, ok := p[r.Param]; !ok {
			return invalidParams("Parameter '%s' does not exist", r.Param)
		}

	case RulePositiveInteger:
		n, ok := integer(p[r.Param])
		if !ok || n <= 0 {
			return invalidParams("Parameter '%s' must be a positive integer", r.Param)
		}

	case RulePositiveNumber:
		f, ok := number(p[r.Param])
		if !ok || !(f > 0) {
			return invalidParams("Parameter '%s' must be a positive number", r.Param)
		}

	case RuleCorrectPeriod:
		left, ok := integer(p[r.Param])
		if !ok {
			return invalidParams("Parameter '%s' must be a positive integer", r.Param)
		}
		right, ok := integer(p[r.Other])
		if !ok {
			return invalidParams("Parameter '%s' must be a positive integer", r.Other)
		}
		if left >= right {
			return invalidParams("Parameter '%s' must be less than '%s'", r.Param, r.Other)
		}

	case RuleLessThanData:
		return boundCheck(p, r.Param, r.Bound)

	case RuleWithinData:
		data, ok := s.Field(r.Field)
		if !ok {
			return invalidInput("Field '%s' is required but missing.", r.Field)
		}
		return boundCheck(p, r.Param, len(data))

	case RuleCustom:
		f, ok := number(p[r.Param])
		if !ok {
			return invalidParams("Parameter '%s' must be a number.", r.Param)
		}
		data, ok := s.Field(r.Field)
		if !ok {
			return invalidInput("Field '%s' is required but missing.", r.Field)
		}
		if r.Check == nil {
			return nil
		}
		if err := r.Check(f, data); err != nil {
			if KindOf(err) != 0 {
				return err
			}
			return &Error{Kind: InvalidParameters, Msg: err.Error(), Err: err}
		}

	default:
		return calcError(nil, "unknown rule kind %d", int(r.Kind))
	}
	return nil
}

// boundCheck fails when the value of name exceeds bound.
func boundCheck(p Params, name string, bound int) error {
	f, ok := number(p[name])
	if !ok {
		return invalidParams("Parameter '%s' must be a number.", name)
	}
	if f > float64(bound) {
		return invalidParams("Wrong parameter length. '%s' > data length. (%s > %d)", name, formatNumber(f), bound)
	}
	return nil
}
