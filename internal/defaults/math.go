package defaults

import (
	"math"

	"github.com/karupanerura/calc/internal/types"
)

var Math = &types.Valuation{
	Values: map[string]float64{
		"pi":    math.Pi,
		"e":     math.E,
		"phi":   math.Phi,
		"tau":   2 * math.Pi,
		"sqrt2": math.Sqrt2,
		"sqrt3": math.Sqrt(3),
	},
	ReadOnly: true,
}
