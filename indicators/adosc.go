package indicators

import (
	"github.com/rustyeddy/ta/indicators/kernel"
	"github.com/rustyeddy/ta/market"
)

type adoscParams struct {
	ShortPeriod int `json:"short_period"`
	LongPeriod  int `json:"long_period"`
}

func defaultADOSCParams() *adoscParams {
	return &adoscParams{ShortPeriod: 3, LongPeriod: 10}
}

// ADOSC is the Chaikin A/D Oscillator: EMA(ADL, short_period) minus
// EMA(ADL, long_period). Values before long_period-1 are NaN.
type ADOSC struct {
	base
}

func NewADOSC() *ADOSC {
	return &ADOSC{base{
		short: "ADOSC",
		name:  "Chaikin A/D Oscillator",
		validator: NewValidator(
			[]market.BarField{market.High, market.Low, market.Close, market.Volume},
			Required("short_period"),
			Required("long_period"),
			PositiveInteger("short_period"),
			PositiveInteger("long_period"),
			CorrectPeriod("short_period", "long_period"),
			WithinData("short_period", market.High),
			WithinData("long_period", market.High),
		),
		defaults: func() any { return defaultADOSCParams() },
		tagged: tagSpec{
			GroupUseCase:        {"momentum_detection", "volume_confirmation"},
			GroupMathBasis:      {"differentiation", "volume_weighted"},
			GroupDataInput:      {"price_volume"},
			GroupSignalType:     {"leading"},
			GroupOutputFormat:   {"single_line"},
			GroupTimeframe:      {"short", "medium"},
			GroupComplexity:     {"intermediate"},
			GroupMarket:         {"trending", "range_bound"},
			GroupStrategy:       {"intraday", "swing"},
			GroupSmoothing:      {"exponential"},
			GroupMethodology:    {"differential"},
			GroupInterpretation: {"crossovers", "divergence"},
		}.build(),
	}}
}

func (a *ADOSC) Horizon(p Params) (int, error) {
	params := defaultADOSCParams()
	if err := a.decodeStatic(p, params); err != nil {
		return 0, err
	}
	return params.LongPeriod - 1, nil
}

func (a *ADOSC) Calculate(s market.Series, p Params) (Output, error) {
	params := defaultADOSCParams()
	n, err := a.prepare(s, p, params)
	if err != nil {
		return Output{}, err
	}

	adl := kernel.ADL(s.High, s.Low, s.Close, s.Volume)
	short, err := kernel.EMA(adl, params.ShortPeriod)
	if err != nil {
		return Output{}, calcError(err, "%v", err)
	}
	long, err := kernel.EMA(adl, params.LongPeriod)
	if err != nil {
		return Output{}, calcError(err, "%v", err)
	}

	osc := make([]float64, n)
	for i := range osc {
		osc[i] = short[i] - long[i]
	}

	out, err := place("ADOSC", n, params.LongPeriod-1, osc)
	if err != nil {
		return Output{}, err
	}
	return NewSingle(out), nil
}
