package indicators

import (
	"github.com/rustyeddy/ta/indicators/kernel"
	"github.com/rustyeddy/ta/market"
)

type apoParams struct {
	FastPeriod int `json:"fast_period"`
	SlowPeriod int `json:"slow_period"`
}

func defaultAPOParams() *apoParams {
	return &apoParams{FastPeriod: 12, SlowPeriod: 26}
}

// APO is the Absolute Price Oscillator: fast EMA minus slow EMA of the close.
type APO struct {
	base
}

func NewAPO() *APO {
	return &APO{base{
		short: "APO",
		name:  "Absolute Price Oscillator",
		validator: NewValidator(
			[]market.BarField{market.Close},
			Required("fast_period"),
			Required("slow_period"),
			PositiveInteger("fast_period"),
			PositiveInteger("slow_period"),
			CorrectPeriod("fast_period", "slow_period"),
			WithinData("fast_period", market.Close),
			WithinData("slow_period", market.Close),
		),
		defaults: func() any { return defaultAPOParams() },
		tagged: tagSpec{
			GroupUseCase:        {"momentum_detection", "trend_identification"},
			GroupMathBasis:      {"averaging", "differentiation"},
			GroupDataInput:      {"price"},
			GroupSignalType:     {"lagging"},
			GroupOutputFormat:   {"single_line", "absolute"},
			GroupTimeframe:      {"short", "medium"},
			GroupComplexity:     {"basic"},
			GroupMarket:         {"trending"},
			GroupStrategy:       {"swing"},
			GroupSmoothing:      {"exponential"},
			GroupMethodology:    {"differential"},
			GroupInterpretation: {"crossovers", "divergence"},
		}.build(),
	}}
}

func (a *APO) Horizon(p Params) (int, error) {
	params := defaultAPOParams()
	if err := a.decodeStatic(p, params); err != nil {
		return 0, err
	}
	return params.SlowPeriod - 1, nil
}

func (a *APO) Calculate(s market.Series, p Params) (Output, error) {
	params := defaultAPOParams()
	n, err := a.prepare(s, p, params)
	if err != nil {
		return Output{}, err
	}

	fast, err := kernel.EMA(s.Close, params.FastPeriod)
	if err != nil {
		return Output{}, calcError(err, "%v", err)
	}
	slow, err := kernel.EMA(s.Close, params.SlowPeriod)
	if err != nil {
		return Output{}, calcError(err, "%v", err)
	}

	out := NaNSeries(n)
	for i := params.SlowPeriod - 1; i < n; i++ {
		out[i] = fast[i] - slow[i]
	}
	return NewSingle(out), nil
}
