package expression_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/karupanerura/calc/internal/expression"
	"github.com/karupanerura/calc/internal/types"
	"golang.org/x/sync/errgroup"
)

func TestNodeString(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		source   string
		expected string
	}{
		{source: "1", expected: "1"},
		{source: "1.50", expected: "1.5"},
		{source: "x", expected: "x"},
		{source: "3*x + 7", expected: "((3 * x) + 7)"},
		{source: "10 - 3 - 2", expected: "((10 - 3) - 2)"},
		{source: "1 + 2 * 3", expected: "(1 + (2 * 3))"},
		{source: "(1 + 2) * 3", expected: "((1 + 2) * 3)"},
		{source: "a / b / c", expected: "((a / b) / c)"},
		{source: "-(2+3)", expected: "(-(2 + 3))"},
		{source: "-2*3", expected: "((-2) * 3)"},
		{source: "--x", expected: "(-(-x))"},
	} {
		tt := tt
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()

			expr, err := expression.ParseExpr(tt.source)
			if err != nil {
				t.Fatal(err)
			}
			if got := expr.Root.String(); got != tt.expected {
				t.Errorf("expect to %q but got %q", tt.expected, got)
			}
			if got := expr.String(); got != tt.source {
				t.Errorf("expect to keep source %q but got %q", tt.source, got)
			}
		})
	}
}

func TestNodeStringRoundTrip(t *testing.T) {
	t.Parallel()

	valuations := []*types.Valuation{
		types.MustValuationOf("x", 0, "y", 0, "z", 0),
		types.MustValuationOf("x", 2, "y", 3, "z", 4),
		types.MustValuationOf("x", -1.5, "y", 1e10, "z", 0.25),
	}

	for _, source := range []string{
		"3*x + 7",
		"x * y + z",
		"x - y - z",
		"x / y / z",
		"-x * -(y + z)",
		"((x)) - (-(-z)) / 0.125",
		"123456789.125 * x",
	} {
		source := source
		t.Run(source, func(t *testing.T) {
			t.Parallel()

			expr, err := expression.ParseExpr(source)
			if err != nil {
				t.Fatal(err)
			}
			reparsed, err := expression.ParseExpr(expr.Root.String())
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(expr.Root, reparsed.Root); diff != "" {
				t.Errorf("round trip changed the tree (-want +got):\n%s", diff)
			}

			for _, v := range valuations {
				want, wantErr := expr.Evaluate(v)
				got, gotErr := reparsed.Evaluate(v)
				if (wantErr == nil) != (gotErr == nil) {
					t.Fatalf("errors differ: %v vs %v", wantErr, gotErr)
				}
				if want != got && !(math.IsNaN(want) && math.IsNaN(got)) {
					t.Errorf("expect to %v but got %v", want, got)
				}
			}
		})
	}
}

func TestNewExpr(t *testing.T) {
	t.Parallel()

	root := &expression.BinaryOperation{
		Left: &expression.UnaryOperation{
			Operand:  &expression.Variable{Name: "x"},
			Operator: expression.Negate,
		},
		Right:    &expression.Constant{Value: -2.5},
		Operator: expression.Multiply,
	}
	expr := expression.NewExpr(root)
	if got, want := expr.Source, "((-x) * (-2.5))"; got != want {
		t.Errorf("expect to %q but got %q", want, got)
	}

	ret, err := expr.Evaluate(types.MustValuationOf("x", 2))
	if err != nil {
		t.Fatal(err)
	}
	if ret != 5 {
		t.Errorf("expect to 5 but got %v", ret)
	}

	reparsed, err := expression.ParseExpr(expr.Source)
	if err != nil {
		t.Fatal(err)
	}
	ret, err = reparsed.Evaluate(types.MustValuationOf("x", 2))
	if err != nil {
		t.Fatal(err)
	}
	if ret != 5 {
		t.Errorf("expect to 5 but got %v", ret)
	}
}

func TestConstantString(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		value    float64
		expected string
	}{
		{value: 0, expected: "0"},
		{value: math.Copysign(0, -1), expected: "(-0)"},
		{value: 0.1, expected: "0.1"},
		{value: 1e21, expected: "1000000000000000000000"},
		{value: -3, expected: "(-3)"},
		{value: math.Inf(1), expected: "+Inf"},
		{value: math.NaN(), expected: "NaN"},
	} {
		if got := (&expression.Constant{Value: tt.value}).String(); got != tt.expected {
			t.Errorf("%v: expect to %q but got %q", tt.value, tt.expected, got)
		}
	}
}

func TestOperators(t *testing.T) {
	t.Parallel()

	expected := map[expression.BinaryOperator]float64{
		expression.Add:      8,
		expression.Subtract: 4,
		expression.Multiply: 12,
		expression.Divide:   3,
	}
	for op := expression.Add; op <= expression.Divide; op++ {
		expr := expression.NewExpr(&expression.BinaryOperation{
			Left:     &expression.Constant{Value: 6},
			Right:    &expression.Constant{Value: 2},
			Operator: op,
		})
		ret, err := expr.Evaluate(nil)
		if err != nil {
			t.Fatal(err)
		}
		if ret != expected[op] {
			t.Errorf("%s: expect to %v but got %v", op, expected[op], ret)
		}
	}

	if got := expression.Negate.String(); got != "-" {
		t.Errorf("expect to - but got %q", got)
	}
}

func TestUnknownOperatorPanics(t *testing.T) {
	t.Parallel()

	for name, f := range map[string]func(){
		"binary String": func() { _ = expression.BinaryOperator(99).String() },
		"unary String":  func() { _ = expression.UnaryOperator(99).String() },
		"binary Evaluate": func() {
			expr := expression.NewExpr(&expression.Constant{Value: 1})
			expr.Root = &expression.BinaryOperation{
				Left:     &expression.Constant{Value: 1},
				Right:    &expression.Constant{Value: 1},
				Operator: expression.BinaryOperator(99),
			}
			_, _ = expr.Evaluate(nil)
		},
		"unary Evaluate": func() {
			expr := expression.NewExpr(&expression.Constant{Value: 1})
			expr.Root = &expression.UnaryOperation{
				Operand:  &expression.Constant{Value: 1},
				Operator: expression.UnaryOperator(99),
			}
			_, _ = expr.Evaluate(nil)
		},
	} {
		name, f := name, f
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			defer func() {
				if recover() == nil {
					t.Error("should panic")
				}
			}()
			f()
		})
	}
}

func TestConcurrentEvaluate(t *testing.T) {
	t.Parallel()

	expr, err := expression.ParseExpr("3*x + 7")
	if err != nil {
		t.Fatal(err)
	}

	results := make([]float64, 100)
	var eg errgroup.Group
	for i := range results {
		i := i
		eg.Go(func() error {
			ret, err := expr.Evaluate(types.MustValuationOf("x", i))
			if err != nil {
				return fmt.Errorf("x=%d: %w", i, err)
			}
			results[i] = ret
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		t.Fatal(err)
	}

	for i, ret := range results {
		if want := float64(3*i + 7); ret != want {
			t.Errorf("x=%d: expect to %v but got %v", i, want, ret)
		}
	}
}
