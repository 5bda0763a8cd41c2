package expression

import "strconv"

type reader struct {
	source []rune
	index  int
	pos    Position
}

func newReader(source string) *reader {
	return &reader{
		source: []rune(source),
		index:  0,
		pos:    Position{Row: 1, Col: 1},
	}
}

func (r *reader) peek() (rune, bool) {
	if r.index == len(r.source) {
		return 0, false
	}
	return r.source[r.index], true
}

func (r *reader) read() (rune, bool) {
	c, ok := r.peek()
	if !ok {
		return 0, false
	}

	r.index++
	if c == '\n' {
		r.pos.Row++
		r.pos.Col = 1
	} else {
		r.pos.Col++
	}
	return c, true
}

// position returns the position of the next character to be read.
func (r *reader) position() Position {
	return r.pos
}

// Position is a 1-based row and column in the source text.
type Position struct {
	Row int
	Col int
}

// EndOfInput is the position reported for errors found after the last token.
var EndOfInput = Position{}

func (p Position) String() string {
	if p == EndOfInput {
		return "end of input"
	}
	return strconv.Itoa(p.Row) + ":" + strconv.Itoa(p.Col)
}
