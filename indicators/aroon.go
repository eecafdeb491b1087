package indicators

import (
	"github.com/rustyeddy/ta/indicators/kernel"
	"github.com/rustyeddy/ta/market"
)

// Keys of the AROON output.
const (
	AroonDown = "aroon_down"
	AroonUp   = "aroon_up"
)

type aroonParams struct {
	Period int `json:"period"`
}

func defaultAROONParams() *aroonParams {
	return &aroonParams{Period: 14}
}

// AROON locates the highest high and lowest low inside each trailing window
// of period bars. Both lines are (position+1)/period*100, where position is
// the offset of the first extremum from the start of the window.
type AROON struct {
	base
}

func NewAROON() *AROON {
	return &AROON{base{
		short: "AROON",
		name:  "Aroon",
		validator: NewValidator(
			[]market.BarField{market.High, market.Low},
			Required("period"),
			PositiveInteger("period"),
			WithinData("period", market.High),
			WithinData("period", market.Low),
		),
		defaults: func() any { return defaultAROONParams() },
		tagged: tagSpec{
			GroupUseCase:        {"trend_identification", "momentum_detection"},
			GroupMathBasis:      {"oscillation", "statistical"},
			GroupDataInput:      {"price"},
			GroupSignalType:     {"leading"},
			GroupOutputFormat:   {"multi_line", "percentage"},
			GroupTimeframe:      {"short", "medium"},
			GroupComplexity:     {"basic"},
			GroupMarket:         {"trending"},
			GroupStrategy:       {"intraday", "swing"},
			GroupSmoothing:      {"raw"},
			GroupMethodology:    {"statistical"},
			GroupInterpretation: {"crossovers", "threshold_levels"},
		}.build(),
	}}
}

func (a *AROON) Horizon(p Params) (int, error) {
	params := defaultAROONParams()
	if err := a.decodeStatic(p, params); err != nil {
		return 0, err
	}
	return params.Period - 1, nil
}

func (a *AROON) Calculate(s market.Series, p Params) (Output, error) {
	params := defaultAROONParams()
	n, err := a.prepare(s, p, params)
	if err != nil {
		return Output{}, err
	}

	period := params.Period
	p64 := float64(period)
	up := NaNSeries(n)
	down := NaNSeries(n)
	for i := period - 1; i < n; i++ {
		start := i + 1 - period
		up[i] = float64(kernel.ArgMax(s.High[start:i+1])+1) / p64 * 100
		down[i] = float64(kernel.ArgMin(s.Low[start:i+1])+1) / p64 * 100
	}

	return NewMulti([]string{AroonDown, AroonUp}, map[string][]float64{
		AroonDown: down,
		AroonUp:   up,
	}), nil
}
