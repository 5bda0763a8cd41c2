package expression

import (
	"fmt"
	"unicode/utf8"

	"github.com/karupanerura/calc/internal/types"
)

// InputError is an error caused by the source text. It reports where the
// offending token starts, or EndOfInput.
type InputError interface {
	error
	Position() Position
}

var (
	_ InputError = (*LexError)(nil)
	_ InputError = (*NumericLiteralError)(nil)
	_ InputError = (*ParseError)(nil)

	_ types.Exception = (*LexError)(nil)
	_ types.Exception = (*NumericLiteralError)(nil)
	_ types.Exception = (*ParseError)(nil)
	_ types.Exception = (*UndefinedVariableError)(nil)
	_ types.Exception = (*LengthError)(nil)
)

type LexError struct {
	Pos  Position
	Char rune
}

func (e *LexError) Error() string {
	return fmt.Sprintf("unexpected character %q at %s", e.Char, e.Pos)
}

func (e *LexError) Position() Position {
	return e.Pos
}

func (e *LexError) Exception() any {
	return positionedException(types.SyntaxErrorTag, e, e.Pos)
}

// NumericLiteralError is returned for a run of digits and dots that is not a
// valid float64, e.g. "1.2.3".
type NumericLiteralError struct {
	Pos  Position
	Text string
	Err  error
}

func (e *NumericLiteralError) Error() string {
	return fmt.Sprintf("invalid number %s at %s: %v", e.Text, e.Pos, e.Err)
}

func (e *NumericLiteralError) Unwrap() error {
	return e.Err
}

func (e *NumericLiteralError) Position() Position {
	return e.Pos
}

func (e *NumericLiteralError) Exception() any {
	return positionedException(types.ValueErrorTag, e, e.Pos)
}

type ParseError struct {
	Pos     Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Pos, e.Message)
}

func (e *ParseError) Position() Position {
	return e.Pos
}

func (e *ParseError) Exception() any {
	return positionedException(types.SyntaxErrorTag, e, e.Pos)
}

// UndefinedVariableError is returned by evaluation when the valuation has no
// value for a variable. Parsing never returns it.
type UndefinedVariableError struct {
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variable: %s", e.Name)
}

func (e *UndefinedVariableError) Exception() any {
	return (&types.Error{
		Tag:   types.KeyErrorTag,
		Err:   e,
		Extra: map[string]any{"name": e.Name},
	}).Exception()
}

// LengthError is returned by CheckLength for a source longer than the limit.
// Nesting depth is bounded by the source length, so callers taking untrusted
// input check it before parsing.
type LengthError struct {
	Length int
	Max    int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("expression is longer than %d characters", e.Max)
}

func (e *LengthError) Exception() any {
	return (&types.Error{
		Tag:   types.ValueErrorTag,
		Err:   e,
		Extra: map[string]any{"length": e.Length, "max": e.Max},
	}).Exception()
}

// CheckLength returns a LengthError when source has more than max characters.
// A max of zero or less disables the check.
func CheckLength(source string, max int) error {
	if max <= 0 {
		return nil
	}
	if n := utf8.RuneCountInString(source); n > max {
		return &LengthError{Length: n, Max: max}
	}
	return nil
}

func positionedException(tag types.ErrorTag, err error, pos Position) any {
	extra := map[string]any{}
	if pos != EndOfInput {
		extra["row"] = pos.Row
		extra["col"] = pos.Col
	}
	return (&types.Error{Tag: tag, Err: err, Extra: extra}).Exception()
}
