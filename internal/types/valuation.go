package types

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// Valuation binds variable names to values. A valuation may be layered over
// a Parent; lookups fall back to the parent when a name is not bound locally.
type Valuation struct {
	Values   map[string]float64
	ReadOnly bool
	Parent   *Valuation
}

func NewValuation() *Valuation {
	return &Valuation{
		Values: map[string]float64{},
	}
}

// ValuationOf builds a valuation from alternating names and numeric values,
// e.g. ValuationOf("width", 12, "height", 10). A trailing name without a
// value is ignored.
func ValuationOf(args ...any) (*Valuation, error) {
	v := &Valuation{
		Values: make(map[string]float64, len(args)/2),
	}
	for i := 0; i+1 < len(args); i += 2 {
		name, ok := args[i].(string)
		if !ok {
			return nil, &Error{
				Tag: TypeErrorTag,
				Err: fmt.Errorf("args[%d]: name must be a string but got %T", i, args[i]),
			}
		}

		value, err := ToFloat64(args[i+1])
		if err != nil {
			return nil, fmt.Errorf("args[%d] (%s): %w", i+1, name, err)
		}
		v.Values[name] = value
	}
	return v, nil
}

func MustValuationOf(args ...any) *Valuation {
	v, err := ValuationOf(args...)
	if err != nil {
		panic(err)
	}
	return v
}

// Get looks up name. A nil valuation binds nothing.
func (v *Valuation) Get(name string) (float64, bool) {
	if v == nil {
		return 0, false
	}
	value, ok := v.Values[name]
	if ok {
		return value, true
	}
	if v.Parent != nil {
		return v.Parent.Get(name)
	}
	return 0, false
}

func (v *Valuation) Set(name string, value float64) {
	if v.ReadOnly {
		panic(fmt.Sprintf("Cannot assign %q=%v to read only valuation", name, value))
	}
	if v.Values == nil {
		v.Values = map[string]float64{}
	}
	v.Values[name] = value
}

// Extend returns a new valuation layered over v with the given overrides.
// v itself is left untouched.
func (v *Valuation) Extend(args ...any) (*Valuation, error) {
	ext, err := ValuationOf(args...)
	if err != nil {
		return nil, err
	}
	ext.Parent = v
	return ext, nil
}

func (v *Valuation) ExtendMap(values map[string]float64) *Valuation {
	return &Valuation{
		Values: lo.Assign(map[string]float64{}, values),
		Parent: v,
	}
}

func (v *Valuation) Keys() []string {
	keys := lo.Keys(v.Flatten())
	sort.Strings(keys)
	return keys
}

// Flatten merges every layer into a single map; inner layers win.
func (v *Valuation) Flatten() map[string]float64 {
	if v == nil {
		return map[string]float64{}
	}
	return lo.Assign(v.Parent.Flatten(), v.Values)
}
