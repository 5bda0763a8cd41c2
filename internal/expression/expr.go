package expression

import "github.com/karupanerura/calc/internal/types"

// Expr is a parsed expression. It is immutable and may be evaluated
// concurrently against different valuations.
type Expr struct {
	Source string
	Root   Node
}

// NewExpr wraps an already built tree. Source is the rendered tree.
func NewExpr(root Node) *Expr {
	return &Expr{
		Source: root.String(),
		Root:   root,
	}
}

func (e *Expr) Evaluate(valuation *types.Valuation) (float64, error) {
	ev := Evaluator{Valuation: valuation}
	return ev.Evaluate(e)
}

func (e *Expr) String() string {
	return e.Source
}
