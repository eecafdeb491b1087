package indicators

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Params is the loosely typed parameter input of Calculate: string keys
// mapped to numbers. Values decoded from JSON (float64), YAML (int, float64)
// and plain Go numbers are all accepted.
type Params map[string]any

// Decode fills the struct pointed to by dst from raw. dst must already hold
// the schema defaults; keys absent from raw keep them. Decoding is atomic:
// on failure dst is left untouched and an InvalidParameters error carrying
// the decoder diagnostic is returned. Unknown keys are ignored.
func Decode(raw Params, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return calcError(nil, "parameter schema must be a non-nil struct pointer, got %T", dst)
	}
	if len(raw) == 0 {
		return nil
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return &Error{Kind: InvalidParameters, Msg: err.Error(), Err: err}
	}

	scratch := reflect.New(rv.Elem().Type())
	scratch.Elem().Set(rv.Elem())
	if err := json.Unmarshal(b, scratch.Interface()); err != nil {
		return &Error{Kind: InvalidParameters, Msg: err.Error(), Err: err}
	}

	rv.Elem().Set(scratch.Elem())
	return nil
}

// values re-encodes a decoded schema so the rules see the effective values,
// defaults included.
func values(schema any) (Params, error) {
	b, err := json.Marshal(schema)
	if err != nil {
		return nil, calcError(err, "encode parameters: %v", err)
	}
	p := Params{}
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, calcError(err, "encode parameters: %v", err)
	}
	return p, nil
}

// number converts a parameter value to float64.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// integer converts a parameter value to an integer, rejecting fractions.
func integer(v any) (int64, bool) {
	f, ok := number(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Clone returns a shallow copy of p.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// String renders p as JSON, for logs and journals.
func (p Params) String() string {
	if len(p) == 0 {
		return "{}"
	}
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Sprintf("%v", map[string]any(p))
	}
	return string(b)
}
