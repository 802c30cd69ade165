package literal

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ironsheep/matrix-tools-mcp/internal/errors"
	"github.com/ironsheep/matrix-tools-mcp/internal/matrix"
)

// numberPattern is the decimal grammar Format emits, widened to accept a
// leading '+' and an exponent in hand-written input.
var numberPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// eof is returned by peek and next past the end of the input. NUL never
// appears in a valid literal.
const eof = 0

// Parse reads the first matrix literal in text.
//
// Anything before the first '[' (for example "M = " or "matrix(") and
// anything after the matching closing ']' is ignored. Rows must all have
// the same length. Failures are PARSE_ERROR with a message that can be
// shown to the user unchanged.
func Parse(text string) (*matrix.Matrix, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, errors.New(errors.CodeParse, "matrix text is empty")
	}

	start := strings.IndexByte(trimmed, '[')
	if start < 0 {
		return nil, errors.New(errors.CodeParse, "no matrix literal found: expected something like [[1, 2], [3, 4]]")
	}

	p := &parser{src: trimmed, pos: start + 1}
	rows, err := p.rows()
	if err != nil {
		return nil, err
	}

	cols := len(rows[0])
	for i, row := range rows[1:] {
		if len(row) != cols {
			return nil, errors.New(errors.CodeParse,
				"row length mismatch: row %d has %d entries but row 1 has %d", i+2, len(row), cols)
		}
	}

	m, err := matrix.New(rows)
	if err != nil {
		return nil, errors.Wrap(errors.CodeParse, err, "invalid matrix")
	}
	return m, nil
}

// ParseOptionalFloat reads an optional numeric form field. Blank input means
// "not given" and returns nil. Anything else must be a finite number.
func ParseOptionalFloat(raw, field string) (*float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, errors.New(errors.CodeParse, "%s must be a number.", field)
	}
	return &v, nil
}

// parser walks a literal byte by byte; pos is the next unread byte.
type parser struct {
	src string
	pos int
}

// peek returns the next byte without consuming it.
func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return eof
	}
	return p.src[p.pos]
}

// next consumes and returns the next byte.
func (p *parser) next() byte {
	c := p.peek()
	if c != eof {
		p.pos++
	}
	return c
}

// skipSpace advances past blanks, tabs and line breaks.
func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

// token consumes a run of bytes up to the next blank, comma or bracket.
// It returns "" when one of those comes first.
func (p *parser) token() string {
	start := p.pos
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\r', '\n', ',', '[', ']':
			return p.src[start:p.pos]
		}
		p.pos++
	}
	return p.src[start:]
}

// unbalanced is the error for input that ends inside a bracket.
func unbalanced() error {
	return errors.New(errors.CodeParse, "unbalanced brackets: missing closing ']'")
}

// rows parses "[...], [...], ...]" with the outer '[' already consumed.
func (p *parser) rows() ([][]float64, error) {
	var rows [][]float64

	p.skipSpace()
	if p.peek() == ']' {
		return nil, errors.New(errors.CodeParse, "matrix has no rows")
	}

	for {
		p.skipSpace()
		switch c := p.peek(); c {
		case eof:
			return nil, unbalanced()
		case '[':
			row, err := p.row(len(rows) + 1)
			if err != nil {
				return nil, err
			}
			rows = append(rows, row)
		default:
			return nil, errors.New(errors.CodeParse,
				"expected '[' to start row %d, found %s", len(rows)+1, describe(p.src[p.pos:]))
		}

		p.skipSpace()
		switch c := p.next(); c {
		case ',':
			p.skipSpace()
			if p.peek() == ']' {
				p.pos++
				return rows, nil
			}
		case ']':
			return rows, nil
		case eof:
			return nil, unbalanced()
		default:
			p.pos--
			return nil, errors.New(errors.CodeParse,
				"expected ',' or ']' after row %d, found %s", len(rows), describe(p.src[p.pos:]))
		}
	}
}

// row parses one "[n, n, ...]" starting at its '['.
func (p *parser) row(n int) ([]float64, error) {
	p.pos++
	var values []float64

	p.skipSpace()
	if p.peek() == ']' {
		return nil, errors.New(errors.CodeParse, "row %d is empty", n)
	}

	for {
		p.skipSpace()
		tok := p.token()
		if tok == "" {
			switch p.peek() {
			case eof:
				return nil, unbalanced()
			case '[':
				return nil, errors.New(errors.CodeParse, "row %d contains a nested list; only two levels of brackets are allowed", n)
			default:
				return nil, errors.New(errors.CodeParse, "row %d has a missing value before %s", n, describe(p.src[p.pos:]))
			}
		}

		v, err := parseNumber(tok)
		if err != nil {
			return nil, errors.New(errors.CodeParse, "row %d: %v", n, err)
		}
		values = append(values, v)

		p.skipSpace()
		switch c := p.next(); c {
		case ',':
			p.skipSpace()
			if p.peek() == ']' {
				p.pos++
				return values, nil
			}
		case ']':
			return values, nil
		case eof:
			return nil, unbalanced()
		default:
			p.pos--
			return nil, errors.New(errors.CodeParse,
				"row %d: expected ',' or ']' after %s, found %s", n, tok, describe(p.src[p.pos:]))
		}
	}
}

// parseNumber converts one numeric token. The error text is wrapped with
// the row number by the caller.
func parseNumber(tok string) (float64, error) {
	if !numberPattern.MatchString(tok) {
		return 0, fmt.Errorf("%q is not a number", tok)
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is out of range", tok)
	}
	return v, nil
}

// describe quotes the start of rest for an error message.
func describe(rest string) string {
	if rest == "" {
		return "end of input"
	}
	if len(rest) > 12 {
		rest = rest[:12] + "..."
	}
	return strconv.Quote(rest)
}
