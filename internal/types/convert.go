package types

import (
	"fmt"
	"math"
	"strconv"

	reflect "github.com/goccy/go-reflect"
)

// ToFloat64 converts any Go integer, unsigned integer or floating-point
// value, or a numeric string such as json.Number, into a float64.
func ToFloat64(value any) (float64, error) {
	if value == nil {
		return 0, &Error{
			Tag: TypeErrorTag,
			Err: fmt.Errorf("value must be a number but got nil"),
		}
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint()), nil

	case reflect.Float32, reflect.Float64:
		return v.Float(), nil

	case reflect.String:
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return 0, &Error{
				Tag: ValueErrorTag,
				Err: fmt.Errorf("value is not a number: %q", v.String()),
			}
		}
		return f, nil

	default:
		return 0, &Error{
			Tag: TypeErrorTag,
			Err: fmt.Errorf("value must be a number but got %T", value),
		}
	}
}

// JSONNumber returns f as is when JSON can represent it, otherwise its
// string form ("+Inf", "-Inf" or "NaN").
func JSONNumber(f float64) any {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return f
}
