package indicators

import (
	"math"

	"github.com/rustyeddy/ta/market"
)

type adxrParams struct {
	Period int `json:"period"`
}

func defaultADXRParams() *adxrParams {
	return &adxrParams{Period: 14}
}

// ADXR rates the ADX: the mean of the current ADX and the ADX period bars
// back. It computes the ADX through the public contract of an ADX instance.
type ADXR struct {
	base
	adx Indicator
}

func NewADXR() *ADXR {
	return &ADXR{
		base: base{
			short: "ADXR",
			name:  "Average Directional Movement Index Rating",
			validator: NewValidator(
				[]market.BarField{market.High, market.Low, market.Close},
				Required("period"),
				PositiveInteger("period"),
				WithinData("period", market.High),
			),
			defaults: func() any { return defaultADXRParams() },
			tagged: tagSpec{
				GroupUseCase:        {"trend_identification", "market_strength"},
				GroupMathBasis:      {"averaging", "ratio", "oscillation"},
				GroupDataInput:      {"price"},
				GroupSignalType:     {"lagging"},
				GroupOutputFormat:   {"single_line", "percentage"},
				GroupTimeframe:      {"medium", "long"},
				GroupComplexity:     {"intermediate"},
				GroupMarket:         {"trending"},
				GroupStrategy:       {"swing", "positional"},
				GroupSmoothing:      {"simple_average"},
				GroupMethodology:    {"ratio", "cumulative"},
				GroupInterpretation: {"threshold_levels"},
			}.build(),
		},
		adx: NewADX(),
	}
}

func (a *ADXR) Horizon(p Params) (int, error) {
	params := defaultADXRParams()
	if err := a.decodeStatic(p, params); err != nil {
		return 0, err
	}
	h, err := adxHorizon(params.Period)
	if err != nil {
		return 0, err
	}
	if h > math.MaxInt-params.Period {
		return 0, calcError(nil, "ADXR horizon overflows for period %d", params.Period)
	}
	return h + params.Period, nil
}

func (a *ADXR) Calculate(s market.Series, p Params) (Output, error) {
	params := defaultADXRParams()
	n, err := a.prepare(s, p, params)
	if err != nil {
		return Output{}, err
	}

	res, err := a.adx.Calculate(s, p)
	if err != nil {
		if KindOf(err) == 0 {
			return Output{}, calcError(err, "ADX: %v", err)
		}
		return Output{}, err
	}
	adx, ok := res.Single()
	if !ok || len(adx) != n {
		return Output{}, calcError(nil, "Invalid ADX output.")
	}

	period := params.Period
	adxr := NaNSeries(n)
	for i := period; i < n; i++ {
		if math.IsNaN(adx[i]) || math.IsNaN(adx[i-period]) {
			continue
		}
		adxr[i] = (adx[i] + adx[i-period]) / 2
	}
	return NewSingle(adxr), nil
}
