package indicators

import (
	"github.com/rustyeddy/ta/indicators/kernel"
	"github.com/rustyeddy/ta/market"
)

type atrParams struct {
	Period int `json:"period"`
}

func defaultATRParams() *atrParams {
	return &atrParams{Period: 14}
}

// ATR is Wilder's Average True Range (volatility). The first value, at
// period-1, is the mean of the first period true ranges; after that
// atr = (prev*(period-1) + tr) / period.
type ATR struct {
	base
}

func NewATR() *ATR {
	return &ATR{base{
		short: "ATR",
		name:  "Average True Range",
		validator: NewValidator(
			[]market.BarField{market.High, market.Low, market.Close},
			Required("period"),
			PositiveInteger("period"),
			WithinData("period", market.High),
		),
		defaults: func() any { return defaultATRParams() },
		tagged: tagSpec{
			GroupUseCase:        {"volatility_measurement"},
			GroupMathBasis:      {"averaging", "statistical"},
			GroupDataInput:      {"price"},
			GroupSignalType:     {"lagging"},
			GroupOutputFormat:   {"single_line", "absolute"},
			GroupTimeframe:      {"short", "medium"},
			GroupComplexity:     {"basic"},
			GroupMarket:         {"trending", "range_bound", "volatile"},
			GroupStrategy:       {"intraday", "swing"},
			GroupSmoothing:      {"exponential"},
			GroupMethodology:    {"statistical"},
			GroupInterpretation: {"threshold_levels"},
		}.build(),
	}}
}

func (a *ATR) Horizon(p Params) (int, error) {
	params := defaultATRParams()
	if err := a.decodeStatic(p, params); err != nil {
		return 0, err
	}
	return params.Period - 1, nil
}

func (a *ATR) Calculate(s market.Series, p Params) (Output, error) {
	params := defaultATRParams()
	n, err := a.prepare(s, p, params)
	if err != nil {
		return Output{}, err
	}

	period := params.Period
	tr := kernel.TrueRange(s.High, s.Low, s.Close)

	atr := NaNSeries(n)
	atr[period-1] = kernel.Mean(tr[:period])

	p64 := float64(period)
	for i := period; i < n; i++ {
		atr[i] = (atr[i-1]*(p64-1) + tr[i]) / p64
	}
	return NewSingle(atr), nil
}
