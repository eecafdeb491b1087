package indicators

import (
	"github.com/rustyeddy/ta/indicators/kernel"
	"github.com/rustyeddy/ta/market"
)

// Keys of the BBANDS output.
const (
	LowerBand  = "lower_band"
	MiddleBand = "middle_band"
	UpperBand  = "upper_band"
)

type bbandsParams struct {
	Period           int     `json:"period"`
	StdDevMultiplier float64 `json:"std_dev_multiplier"`
}

func defaultBBANDSParams() *bbandsParams {
	return &bbandsParams{Period: 20, StdDevMultiplier: 2.0}
}

// BBANDS are Bollinger Bands: the rolling mean of the close, plus and minus
// std_dev_multiplier population standard deviations of the same window.
type BBANDS struct {
	base
}

func NewBBANDS() *BBANDS {
	return &BBANDS{base{
		short: "BBANDS",
		name:  "Bollinger Bands",
		validator: NewValidator(
			[]market.BarField{market.Close},
			Required("period"),
			Required("std_dev_multiplier"),
			PositiveInteger("period"),
			PositiveNumber("std_dev_multiplier"),
			WithinData("period", market.Close),
		),
		defaults: func() any { return defaultBBANDSParams() },
		tagged: tagSpec{
			GroupUseCase:        {"volatility_measurement", "trend_identification"},
			GroupMathBasis:      {"averaging", "statistical"},
			GroupDataInput:      {"price"},
			GroupSignalType:     {"lagging"},
			GroupOutputFormat:   {"band", "absolute"},
			GroupTimeframe:      {"short", "medium"},
			GroupComplexity:     {"intermediate"},
			GroupMarket:         {"trending", "range_bound", "volatile"},
			GroupStrategy:       {"intraday", "swing"},
			GroupSmoothing:      {"simple_average"},
			GroupMethodology:    {"statistical"},
			GroupInterpretation: {"threshold_levels", "patterns"},
		}.build(),
	}}
}

func (b *BBANDS) Horizon(p Params) (int, error) {
	params := defaultBBANDSParams()
	if err := b.decodeStatic(p, params); err != nil {
		return 0, err
	}
	return params.Period - 1, nil
}

func (b *BBANDS) Calculate(s market.Series, p Params) (Output, error) {
	params := defaultBBANDSParams()
	n, err := b.prepare(s, p, params)
	if err != nil {
		return Output{}, err
	}

	middle, std, err := kernel.RollingMeanStd(s.Close, params.Period)
	if err != nil {
		return Output{}, calcError(err, "%v", err)
	}
	if len(middle) != n {
		return Output{}, calcError(nil, "Calculated BBANDS length exceeds input data length.")
	}

	upper := make([]float64, n)
	lower := make([]float64, n)
	for i := range middle {
		// NaN propagates through the warm-up prefix
		width := std[i] * params.StdDevMultiplier
		upper[i] = middle[i] + width
		lower[i] = middle[i] - width
	}

	return NewMulti([]string{LowerBand, MiddleBand, UpperBand}, map[string][]float64{
		LowerBand:  lower,
		MiddleBand: middle,
		UpperBand:  upper,
	}), nil
}
