package nat

import (
	"fmt"
	"strconv"
	"unicode"
)

// Parse reads a natural number from its textual form. Two notations
// are accepted: successor notation ("S(S(Z))", case-insensitive,
// whitespace allowed between tokens) and decimal literals ("2").
// The notations compose, so "S(2)" denotes 3.
func Parse(s string) (Nat, error) {
	p := parser{input: s}
	return p.parse()
}

// MustParse is Parse for literals known to be well-formed.
// It panics on error.
func MustParse(s string) Nat {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

type parser struct {
	input string
	pos   int
}

// parse consumes the whole input. The successor chain is counted
// iteratively instead of descending recursively, so input depth is
// bounded only by memory.
func (p *parser) parse() (Nat, error) {
	layers := 0
	for {
		p.skipSpace()
		if !p.consumeFold('S') {
			break
		}
		p.skipSpace()
		if !p.consume('(') {
			return nil, p.errorf("expected '(' after S")
		}
		layers++
	}

	base, err := p.parseBase()
	if err != nil {
		return nil, err
	}

	for i := 0; i < layers; i++ {
		p.skipSpace()
		if !p.consume(')') {
			return nil, p.errorf("expected ')' closing successor %d of %d", i+1, layers)
		}
	}

	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, p.errorf("trailing input %q", p.input[p.pos:])
	}

	n, err := FromInt(base + layers)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// parseBase reads the innermost term: Z or a decimal literal.
func (p *parser) parseBase() (int, error) {
	if p.consumeFold('Z') {
		return 0, nil
	}

	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		if p.pos == len(p.input) {
			return 0, p.errorf("expected Z or a decimal literal, found end of input")
		}
		return 0, p.errorf("expected Z or a decimal literal")
	}

	v, err := strconv.Atoi(p.input[start:p.pos])
	if err != nil {
		return 0, p.errorf("decimal literal %q: %v", p.input[start:p.pos], err)
	}
	return v, nil
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

// consume advances past c if it is the next byte.
func (p *parser) consume(c byte) bool {
	if p.pos < len(p.input) && p.input[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

// consumeFold advances past c case-insensitively.
func (p *parser) consumeFold(c byte) bool {
	if p.pos >= len(p.input) {
		return false
	}
	b := p.input[p.pos]
	if b == c || b == c+('a'-'A') {
		p.pos++
		return true
	}
	return false
}

func (p *parser) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("nat: parse %q at offset %d: %s", truncate(p.input), p.pos, msg)
}

// truncate keeps parse errors readable for very deep inputs.
func truncate(s string) string {
	const max = 64
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
