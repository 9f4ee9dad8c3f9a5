package parser

import (
	"fmt"
	"strconv"
	"unicode"

	"cyclerc/pkg/ast"
)

// Parser reads heap-script S-expressions into Values
type Parser struct {
	input string
	pos   int
	line  int
}

// New creates a new parser for the given input
func New(input string) *Parser {
	return &Parser{input: input, pos: 0, line: 1}
}

// Parse parses a single S-expression. Returns nil, nil at end of input.
func (p *Parser) Parse() (*ast.Value, error) {
	p.skipWhitespace()
	if p.pos >= len(p.input) {
		return nil, nil
	}
	return p.parseExpr()
}

// ParseAll parses all S-expressions in the input
func (p *Parser) ParseAll() ([]*ast.Value, error) {
	var results []*ast.Value
	for {
		p.skipWhitespace()
		if p.pos >= len(p.input) {
			break
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if expr != nil {
			results = append(results, expr)
		}
	}
	return results, nil
}

// Line returns the current line, starting at 1
func (p *Parser) Line() int {
	return p.line
}

func (p *Parser) skipWhitespace() {
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		if ch == ';' {
			// Skip comment to end of line
			for p.pos < len(p.input) && p.input[p.pos] != '\n' {
				p.pos++
			}
		} else if unicode.IsSpace(rune(ch)) {
			if ch == '\n' {
				p.line++
			}
			p.pos++
		} else {
			break
		}
	}
}

func (p *Parser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *Parser) advance() byte {
	ch := p.peek()
	if ch != 0 {
		p.pos++
	}
	return ch
}

func (p *Parser) parseExpr() (*ast.Value, error) {
	p.skipWhitespace()
	if p.pos >= len(p.input) {
		return nil, nil
	}

	switch p.peek() {
	case '(':
		return p.parseList()
	case ')':
		return nil, fmt.Errorf("line %d: unexpected ')'", p.line)
	default:
		return p.parseAtom()
	}
}

func (p *Parser) parseList() (*ast.Value, error) {
	start := p.line
	p.advance() // consume '('
	var items []*ast.Value

	for {
		p.skipWhitespace()
		if p.pos >= len(p.input) {
			return nil, fmt.Errorf("line %d: unclosed list", start)
		}
		if p.peek() == ')' {
			p.advance()
			break
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, expr)
	}

	return ast.SliceToList(items), nil
}

func (p *Parser) parseAtom() (*ast.Value, error) {
	start := p.pos

	// Check for negative number
	if p.peek() == '-' && p.pos+1 < len(p.input) && isDigit(p.input[p.pos+1]) {
		p.advance()
	}

	if isDigit(p.peek()) {
		for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
			p.pos++
		}
		if p.pos < len(p.input) && !isDelimiter(p.input[p.pos]) {
			return nil, fmt.Errorf("line %d: invalid number: %s", p.line, p.input[start:p.pos+1])
		}
		numStr := p.input[start:p.pos]
		n, err := strconv.ParseInt(numStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid integer: %s", p.line, numStr)
		}
		return ast.NewInt(n), nil
	}

	// It's a symbol
	for p.pos < len(p.input) && !isDelimiter(p.input[p.pos]) {
		p.pos++
	}

	if p.pos == start {
		return nil, fmt.Errorf("line %d: unexpected character: %c", p.line, p.peek())
	}

	return ast.NewSym(p.input[start:p.pos]), nil
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isDelimiter(ch byte) bool {
	return unicode.IsSpace(rune(ch)) || ch == '(' || ch == ')' || ch == ';'
}

// ParseString is a convenience function to parse a string
func ParseString(input string) (*ast.Value, error) {
	p := New(input)
	return p.Parse()
}

// ParseAllString parses all expressions in a string
func ParseAllString(input string) ([]*ast.Value, error) {
	p := New(input)
	return p.ParseAll()
}
