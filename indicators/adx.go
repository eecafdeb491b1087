package indicators

import (
	"math"

	"github.com/rustyeddy/ta/indicators/kernel"
	"github.com/rustyeddy/ta/market"
)

type adxParams struct {
	Period int `json:"period"`
}

func defaultADXParams() *adxParams {
	return &adxParams{Period: 14}
}

// ADX implements Wilder's Average Directional Index (trend strength).
// Usage:
//
//	out, err := indicators.NewADX().Calculate(series, indicators.Params{"period": 14})
//	adx, _ := out.Single()
//
// The first 2*(period-1) values are NaN: period-1 bars to seed the smoothed
// true range and directional movement, then period-1 more to seed the
// smoothed DX.
type ADX struct {
	base
}

func NewADX() *ADX {
	return &ADX{base{
		short: "ADX",
		name:  "Average Directional Index",
		validator: NewValidator(
			[]market.BarField{market.High, market.Low, market.Close},
			Required("period"),
			PositiveInteger("period"),
			WithinData("period", market.High),
		),
		defaults: func() any { return defaultADXParams() },
		tagged: tagSpec{
			GroupUseCase:        {"trend_identification", "market_strength"},
			GroupMathBasis:      {"averaging", "ratio"},
			GroupDataInput:      {"price"},
			GroupSignalType:     {"lagging"},
			GroupOutputFormat:   {"single_line", "percentage"},
			GroupTimeframe:      {"short", "medium"},
			GroupComplexity:     {"intermediate"},
			GroupMarket:         {"trending"},
			GroupStrategy:       {"swing", "intraday"},
			GroupSmoothing:      {"exponential"},
			GroupMethodology:    {"ratio"},
			GroupInterpretation: {"threshold_levels"},
		}.build(),
	}}
}

// adxHorizon is 2*(period-1). Periods too large for the result to fit in
// an int are a CalculationError.
func adxHorizon(period int) (int, error) {
	if period-1 > math.MaxInt/2 {
		return 0, calcError(nil, "ADX horizon overflows for period %d", period)
	}
	return 2 * (period - 1), nil
}

func (a *ADX) Horizon(p Params) (int, error) {
	params := defaultADXParams()
	if err := a.decodeStatic(p, params); err != nil {
		return 0, err
	}
	return adxHorizon(params.Period)
}

func (a *ADX) Calculate(s market.Series, p Params) (Output, error) {
	params := defaultADXParams()
	n, err := a.prepare(s, p, params)
	if err != nil {
		return Output{}, err
	}

	adx, err := calculateADX(s.High, s.Low, s.Close, params.Period)
	if err != nil {
		return Output{}, err
	}

	from, err := adxHorizon(params.Period)
	if err != nil {
		return Output{}, err
	}
	out, err := place("ADX", n, from, adx)
	if err != nil {
		return Output{}, err
	}
	return NewSingle(out), nil
}

// calculateADX returns the smoothed DX over the whole series. Values before
// 2*(period-1) are not meaningful.
func calculateADX(high, low, close []float64, period int) ([]float64, error) {
	tr := kernel.TrueRange(high, low, close)
	plusDM, minusDM := kernel.DirectionalMovement(high, low)

	trN, err := kernel.WilderSmoothing(tr, period)
	if err != nil {
		return nil, calcError(err, "%v", err)
	}
	plusN, err := kernel.WilderSmoothing(plusDM, period)
	if err != nil {
		return nil, calcError(err, "%v", err)
	}
	minusN, err := kernel.WilderSmoothing(minusDM, period)
	if err != nil {
		return nil, calcError(err, "%v", err)
	}

	dx := make([]float64, len(tr))
	for i := range dx {
		plusDI := kernel.Finite(plusN[i] / trN[i] * 100)
		minusDI := kernel.Finite(minusN[i] / trN[i] * 100)

		// 0/0 on flat stretches, where there is no direction at all
		dx[i] = kernel.Finite(math.Abs(plusDI-minusDI) / (plusDI + minusDI) * 100)
	}

	adx, err := kernel.WilderSmoothing(dx, period)
	if err != nil {
		return nil, calcError(err, "%v", err)
	}
	return adx, nil
}
