package expression

import "fmt"

type tokenKind int

const (
	numberToken tokenKind = iota
	identifierToken
	plusToken
	minusToken
	starToken
	slashToken
	leftParenToken
	rightParenToken
)

func (k tokenKind) String() string {
	switch k {
	case numberToken:
		return "number"
	case identifierToken:
		return "identifier"
	case plusToken, minusToken, starToken, slashToken:
		return "operator"
	case leftParenToken, rightParenToken:
		return "parenthesis"
	default:
		panic(fmt.Sprintf("unknown token kind: %d", int(k)))
	}
}

var operatorTokenKindMap = map[rune]tokenKind{
	'+': plusToken,
	'-': minusToken,
	'*': starToken,
	'/': slashToken,
	'(': leftParenToken,
	')': rightParenToken,
}

type token struct {
	kind  tokenKind
	text  string
	value float64 // numberToken only
	pos   Position
}

func (t token) String() string {
	return fmt.Sprintf("%s %q", t.kind, t.text)
}
