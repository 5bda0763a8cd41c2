package expression

import (
	"log"
	"os"
	"strconv"

	"github.com/k0kubun/pp"
)

var parserDebugLog = false

func init() {
	if v, err := strconv.ParseBool(os.Getenv("CALC_EXPRESSION_DEBUG")); v && err == nil {
		parserDebugLog = true
	}
}

// expression := term (('+' | '-') term)*
// term       := factor (('*' | '/') factor)*
// factor     := NUMBER | IDENTIFIER | '-' factor | '(' expression ')'
type parser struct {
	source string
	lex    *lexer
	debug  bool
}

func ParseExpr(source string) (*Expr, error) {
	p := &parser{source: source, lex: newLexer(source), debug: parserDebugLog}
	return p.parse()
}

func ParseExprWithDebugOutput(source string) (*Expr, error) {
	p := &parser{source: source, lex: newLexer(source), debug: true}
	return p.parse()
}

func (p *parser) parse() (*Expr, error) {
	root, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	tok, ok, err := p.lex.peek()
	if err != nil {
		return nil, err
	}
	if ok {
		if p.debug {
			log.Println("not consumed token: ", tok)
		}
		return nil, p.createUnexpectedTokenError(tok)
	}

	if p.debug {
		pp.Println(p.source)
		pp.Println(root)
		log.Println(root.String())
	}

	return &Expr{
		Source: p.source,
		Root:   root,
	}, nil
}

func (p *parser) parseExpression() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok, err := p.lex.peek()
		if err != nil {
			return nil, err
		}
		if !ok {
			return left, nil
		}

		var op BinaryOperator
		switch tok.kind {
		case plusToken:
			op = Add
		case minusToken:
			op = Subtract
		default:
			return left, nil
		}
		p.consume()

		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &BinaryOperation{Left: left, Right: right, Operator: op}
	}
}

func (p *parser) parseTerm() (Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok, err := p.lex.peek()
		if err != nil {
			return nil, err
		}
		if !ok {
			return left, nil
		}

		var op BinaryOperator
		switch tok.kind {
		case starToken:
			op = Multiply
		case slashToken:
			op = Divide
		default:
			return left, nil
		}
		p.consume()

		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &BinaryOperation{Left: left, Right: right, Operator: op}
	}
}

func (p *parser) parseFactor() (Node, error) {
	tok, ok, err := p.lex.peek()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &ParseError{Pos: EndOfInput, Message: "unexpected end of input"}
	}

	switch tok.kind {
	case numberToken:
		p.consume()
		return &Constant{Value: tok.value}, nil

	case identifierToken:
		p.consume()
		return &Variable{Name: tok.text}, nil

	case minusToken:
		p.consume()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &UnaryOperation{Operand: operand, Operator: Negate}, nil

	case leftParenToken:
		p.consume()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		closeTok, ok, err := p.lex.peek()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &ParseError{Pos: EndOfInput, Message: "expected ')' but got end of input"}
		}
		if closeTok.kind != rightParenToken {
			return nil, &ParseError{Pos: closeTok.pos, Message: "expected ')' but got " + closeTok.String()}
		}
		p.consume()
		return inner, nil

	default:
		return nil, p.createUnexpectedTokenError(tok)
	}
}

// consume drops the token the caller has just peeked.
func (p *parser) consume() {
	tok, _, _ := p.lex.read()
	if p.debug {
		log.Println("token: ", tok)
	}
}

func (p *parser) createUnexpectedTokenError(tok token) error {
	return &ParseError{Pos: tok.pos, Message: "unexpected token " + tok.String()}
}
