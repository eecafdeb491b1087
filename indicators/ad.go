package indicators

import (
	"github.com/rustyeddy/ta/indicators/kernel"
	"github.com/rustyeddy/ta/market"
)

// AD is the Chaikin Accumulation/Distribution Line. A bar with high == low
// adds no money flow, so the line carries its previous value.
type AD struct {
	base
}

func NewAD() *AD {
	return &AD{base{
		short:     "AD",
		name:      "Chaikin Accumulation/Distribution Line",
		validator: NewValidator([]market.BarField{market.Close, market.High, market.Low, market.Volume}),
		tagged: tagSpec{
			GroupUseCase:        {"volume_confirmation", "market_strength"},
			GroupMathBasis:      {"volume_weighted"},
			GroupDataInput:      {"price_volume"},
			GroupSignalType:     {"leading"},
			GroupOutputFormat:   {"single_line"},
			GroupTimeframe:      {"medium", "long"},
			GroupComplexity:     {"intermediate"},
			GroupMarket:         {"trending"},
			GroupStrategy:       {"swing", "positional"},
			GroupSmoothing:      {"raw"},
			GroupMethodology:    {"cumulative"},
			GroupInterpretation: {"divergence"},
		}.build(),
	}}
}

func (a *AD) Horizon(Params) (int, error) {
	return 0, nil
}

func (a *AD) Calculate(s market.Series, p Params) (Output, error) {
	if _, err := a.prepare(s, p, nil); err != nil {
		return Output{}, err
	}
	return NewSingle(kernel.ADL(s.High, s.Low, s.Close, s.Volume)), nil
}
