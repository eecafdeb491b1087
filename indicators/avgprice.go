package indicators

import (
	"github.com/rustyeddy/ta/market"
)

// AVGPRICE is (open+high+low+close)/4 per bar. It takes no parameters and
// has no warm-up.
type AVGPRICE struct {
	base
}

func NewAVGPRICE() *AVGPRICE {
	return &AVGPRICE{base{
		short:     "AVGPRICE",
		name:      "Average Price",
		validator: NewValidator([]market.BarField{market.Open, market.High, market.Low, market.Close}),
		tagged: tagSpec{
			GroupUseCase:        {"price_transformation"},
			GroupMathBasis:      {"averaging"},
			GroupDataInput:      {"price"},
			GroupSignalType:     {"coincident"},
			GroupOutputFormat:   {"single_line", "absolute"},
			GroupTimeframe:      {"short", "medium", "long"},
			GroupComplexity:     {"basic"},
			GroupMarket:         {"trending", "range_bound"},
			GroupStrategy:       {"intraday", "swing", "positional"},
			GroupSmoothing:      {"raw"},
			GroupMethodology:    {"averaging"},
			GroupInterpretation: {"patterns"},
		}.build(),
	}}
}

func (a *AVGPRICE) Horizon(Params) (int, error) {
	return 0, nil
}

func (a *AVGPRICE) Calculate(s market.Series, p Params) (Output, error) {
	n, err := a.prepare(s, p, nil)
	if err != nil {
		return Output{}, err
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = (s.Open[i] + s.High[i] + s.Low[i] + s.Close[i]) / 4
	}
	return NewSingle(out), nil
}
