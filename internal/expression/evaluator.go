package expression

import (
	"fmt"

	"github.com/karupanerura/calc/internal/types"
)

// Evaluator evaluates expression trees against a valuation. It never writes
// to the valuation nor to the tree.
type Evaluator struct {
	Valuation *types.Valuation
}

func (e *Evaluator) Evaluate(expr *Expr) (float64, error) {
	return e.evaluateNode(expr.Root)
}

func (e *Evaluator) evaluateNode(n Node) (float64, error) {
	switch n := n.(type) {
	case *Constant:
		return n.Value, nil

	case *Variable:
		v, ok := e.Valuation.Get(n.Name)
		if !ok {
			return 0, &UndefinedVariableError{Name: n.Name}
		}
		return v, nil

	case *BinaryOperation:
		return e.evaluateBinaryOperation(n)

	case *UnaryOperation:
		return e.evaluateUnaryOperation(n)

	default:
		panic(fmt.Sprintf("unknown expression node type: %T", n))
	}
}

func (e *Evaluator) evaluateBinaryOperation(n *BinaryOperation) (float64, error) {
	left, err := e.evaluateNode(n.Left)
	if err != nil {
		return 0, err
	}

	right, err := e.evaluateNode(n.Right)
	if err != nil {
		return 0, err
	}

	switch n.Operator {
	case Add:
		return left + right, nil
	case Subtract:
		return left - right, nil
	case Multiply:
		return left * right, nil
	case Divide:
		return left / right, nil
	default:
		panic(fmt.Sprintf("unknown binary operator: %d", int(n.Operator)))
	}
}

func (e *Evaluator) evaluateUnaryOperation(n *UnaryOperation) (float64, error) {
	v, err := e.evaluateNode(n.Operand)
	if err != nil {
		return 0, err
	}

	switch n.Operator {
	case Negate:
		return -v, nil
	default:
		panic(fmt.Sprintf("unknown unary operator: %d", int(n.Operator)))
	}
}
