package core

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"strconv"

	"github.com/cockroachdb/apd/v3"
)

// Reserved parameter names injected by the signing pipeline.
const (
	ParamTimestamp = "timestamp"
	ParamSignature = "signature"
)

// Params is the parameter mapping of a single upstream call.
// Values must be scalars, see FormatValue.
type Params map[string]any

// Clone returns a shallow copy of the params. A nil receiver yields an empty map.
func (p Params) Clone() Params {
	out := make(Params, len(p)+2)
	maps.Copy(out, p)
	return out
}

// With returns a copy of the params with key set to value.
func (p Params) With(key string, value any) Params {
	out := p.Clone()
	out[key] = value
	return out
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Validate checks that every value is a scalar FormatValue can render.
func (p Params) Validate() error {
	for k, v := range p {
		if _, err := FormatValue(v); err != nil {
			return fmt.Errorf("param %q: %w", k, err)
		}
	}
	return nil
}

// FormatValue renders a scalar parameter value the way it is signed and sent.
func FormatValue(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int8:
		return strconv.FormatInt(int64(val), 10), nil
	case int16:
		return strconv.FormatInt(int64(val), 10), nil
	case int32:
		return strconv.FormatInt(int64(val), 10), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float32:
		if !finite(float64(val)) {
			return "", fmt.Errorf("%w: non-finite float %v", ErrNonScalarParam, val)
		}
		return strconv.FormatFloat(float64(val), 'f', -1, 32), nil
	case float64:
		if !finite(val) {
			return "", fmt.Errorf("%w: non-finite float %v", ErrNonScalarParam, val)
		}
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case apd.Decimal:
		return val.Text('f'), nil
	case *apd.Decimal:
		if val == nil {
			return "", fmt.Errorf("%w: nil decimal", ErrNonScalarParam)
		}
		return val.Text('f'), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrNonScalarParam, v)
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// JSONValue converts a scalar into the value placed in a JSON body.
// Decimals travel as strings so no precision is lost. Floats travel as
// json.Number in the same plain notation they are signed with, never in
// exponent form.
func JSONValue(v any) (any, error) {
	switch val := v.(type) {
	case apd.Decimal, *apd.Decimal:
		return FormatValue(val)
	case float32, float64:
		text, err := FormatValue(val)
		if err != nil {
			return nil, err
		}
		return json.Number(text), nil
	default:
		if _, err := FormatValue(v); err != nil {
			return nil, err
		}
		return v, nil
	}
}
