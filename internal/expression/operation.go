package expression

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Node is a node of an expression tree. The set of implementations is closed:
// *Constant, *Variable, *BinaryOperation and *UnaryOperation.
type Node interface {
	fmt.Stringer
	node()
}

type BinaryOperator int

const (
	Add BinaryOperator = iota
	Subtract
	Multiply
	Divide
)

func (op BinaryOperator) String() string {
	switch op {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	default:
		panic(fmt.Sprintf("unknown binary operator: %d", int(op)))
	}
}

type UnaryOperator int

const (
	Negate UnaryOperator = iota
)

func (op UnaryOperator) String() string {
	switch op {
	case Negate:
		return "-"
	default:
		panic(fmt.Sprintf("unknown unary operator: %d", int(op)))
	}
}

type Constant struct {
	Value float64
}

type Variable struct {
	Name string
}

type BinaryOperation struct {
	Left     Node
	Right    Node
	Operator BinaryOperator
}

type UnaryOperation struct {
	Operand  Node
	Operator UnaryOperator
}

var (
	_ Node = (*Constant)(nil)
	_ Node = (*Variable)(nil)
	_ Node = (*BinaryOperation)(nil)
	_ Node = (*UnaryOperation)(nil)
)

func (*Constant) node()        {}
func (*Variable) node()        {}
func (*BinaryOperation) node() {}
func (*UnaryOperation) node()  {}

// String renders the constant in plain decimal notation so that the result
// can be read back by the lexer. Negative values are wrapped as a negation.
// Infinities and NaN have no literal form and do not read back.
func (n *Constant) String() string {
	if math.IsInf(n.Value, 0) || math.IsNaN(n.Value) {
		return strconv.FormatFloat(n.Value, 'g', -1, 64)
	}
	if math.Signbit(n.Value) {
		return "(-" + strconv.FormatFloat(-n.Value, 'f', -1, 64) + ")"
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

func (n *Variable) String() string {
	return n.Name
}

func (n *BinaryOperation) String() string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(n.Left.String())
	b.WriteByte(' ')
	b.WriteString(n.Operator.String())
	b.WriteByte(' ')
	b.WriteString(n.Right.String())
	b.WriteByte(')')
	return b.String()
}

func (n *UnaryOperation) String() string {
	return "(" + n.Operator.String() + n.Operand.String() + ")"
}
