package defaults

import (
	"fmt"
	"sort"

	"github.com/karupanerura/calc/internal/types"
	"github.com/samber/lo"
)

// Presets are the constant valuations selectable by name.
var Presets = map[string]*types.Valuation{
	"math": Math,
}

// LookupPreset returns the preset named name. The empty name selects no
// preset and yields nil.
func LookupPreset(name string) (*types.Valuation, error) {
	if name == "" {
		return nil, nil
	}
	v, ok := Presets[name]
	if !ok {
		names := lo.Keys(Presets)
		sort.Strings(names)
		return nil, &types.Error{
			Tag: types.KeyErrorTag,
			Err: fmt.Errorf("unknown constants preset %q (available: %v)", name, names),
		}
	}
	return v, nil
}
