package expression

import (
	"strconv"
	"strings"
	"unicode"
)

type lexer struct {
	reader *reader
	buf    *token
}

func newLexer(source string) *lexer {
	return &lexer{
		reader: newReader(source),
		buf:    nil,
	}
}

// peek returns the next token without consuming it. The boolean result is
// false at the end of input.
func (l *lexer) peek() (token, bool, error) {
	if l.buf == nil {
		tok, ok, err := l.next()
		if err != nil || !ok {
			return token{}, ok, err
		}
		l.buf = &tok
	}
	return *l.buf, true, nil
}

func (l *lexer) read() (token, bool, error) {
	if l.buf != nil {
		tok := *l.buf
		l.buf = nil
		return tok, true, nil
	}
	return l.next()
}

func (l *lexer) next() (token, bool, error) {
	l.skipWhitespace()

	c, ok := l.reader.peek()
	if !ok {
		return token{}, false, nil
	}

	switch {
	case unicode.IsDigit(c):
		tok, err := l.scanNumber()
		return tok, err == nil, err
	case unicode.IsLetter(c):
		return l.scanIdentifier(), true, nil
	default:
		tok, err := l.scanOperator()
		return tok, err == nil, err
	}
}

func (l *lexer) skipWhitespace() {
	for {
		c, ok := l.reader.peek()
		if !ok || !unicode.IsSpace(c) {
			return
		}
		l.reader.read()
	}
}

// scanNumber consumes a run of digits and dots. The run is not validated
// here, so "1.2.3" is rejected by strconv rather than by the lexer.
func (l *lexer) scanNumber() (token, error) {
	pos := l.reader.position()
	text := l.scanWhile(func(c rune) bool {
		return unicode.IsDigit(c) || c == '.'
	})

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, &NumericLiteralError{Pos: pos, Text: text, Err: err}
	}
	return token{kind: numberToken, text: text, value: v, pos: pos}, nil
}

func (l *lexer) scanIdentifier() token {
	pos := l.reader.position()
	text := l.scanWhile(func(c rune) bool {
		return unicode.IsLetter(c) || unicode.IsDigit(c)
	})
	return token{kind: identifierToken, text: text, pos: pos}
}

// IsIdentifier reports whether name would be read back as a single
// identifier token.
func IsIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		if i == 0 && !unicode.IsLetter(c) {
			return false
		}
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			return false
		}
	}
	return true
}

func (l *lexer) scanOperator() (token, error) {
	pos := l.reader.position()
	c, _ := l.reader.read()

	kind, ok := operatorTokenKindMap[c]
	if !ok {
		return token{}, &LexError{Pos: pos, Char: c}
	}
	return token{kind: kind, text: string(c), pos: pos}, nil
}

func (l *lexer) scanWhile(accept func(rune) bool) string {
	var b strings.Builder
	for {
		c, ok := l.reader.peek()
		if !ok || !accept(c) {
			break
		}
		l.reader.read()
		b.WriteRune(c)
	}
	return b.String()
}
