// Package listfield parses ambiguous list-like table cells into token sequences.
//
// Cells exported by upstream tools hold lists in several spellings:
// "[12, 45]", "('a', 'b')", "{1, 2}", "1, 2", a bare scalar, or a plain
// comma-separated string. Parse recognises the literal forms with a small
// grammar and falls back to splitting on commas when the grammar rejects
// the input.
package listfield

import "strings"

// nullCells are the spellings of an absent value.
var nullCells = map[string]struct{}{
	"nan":  {},
	"none": {},
	"null": {},
}

// Parse turns cell into an ordered sequence of string tokens.
// The result is never nil; absent cells yield an empty slice.
func Parse(cell string) []string {
	out, _ := ParseStrict(cell)
	return out
}

// ParseStrict is Parse that also reports whether the structured literal
// grammar accepted the cell (false means the comma fallback was used or
// the cell was empty).
func ParseStrict(cell string) ([]string, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return []string{}, false
	}
	if _, ok := nullCells[strings.ToLower(s)]; ok {
		return []string{}, false
	}
	if v, ok := parseLiteral(s); ok {
		return v.flatten(), true
	}
	return splitCommas(s), false
}

func splitCommas(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type valueKind int

const (
	kindScalar valueKind = iota
	kindNone
	kindSeq
)

// value is a parsed literal. Sequences keep their source text so that a
// nested sequence can be rendered as a single element.
type value struct {
	kind  valueKind
	text  string
	items []value
}

// flatten returns the top-level elements of a sequence, or the scalar as a
// one-element slice. None elements are dropped.
func (v value) flatten() []string {
	switch v.kind {
	case kindNone:
		return []string{}
	case kindScalar:
		return []string{v.text}
	}
	out := make([]string, 0, len(v.items))
	for _, it := range v.items {
		if it.kind == kindNone {
			continue
		}
		out = append(out, it.text)
	}
	return out
}

type parser struct {
	l     *lexer
	input string
	cur   Token
	peek  Token
}

// parseLiteral parses s as a literal expression. ok is false for any input
// the grammar does not accept; it never panics.
func parseLiteral(s string) (v value, ok bool) {
	p := &parser{l: newLexer(s), input: s}
	p.next()
	p.next()

	first, ok := p.parseValue()
	if !ok {
		return value{}, false
	}
	if p.cur.Type == tokenEOF {
		return first, true
	}
	// A bare top-level comma sequence is a tuple.
	if p.cur.Type != tokenComma {
		return value{}, false
	}
	items := []value{first}
	for p.cur.Type == tokenComma {
		p.next()
		if p.cur.Type == tokenEOF {
			break
		}
		it, ok := p.parseValue()
		if !ok {
			return value{}, false
		}
		items = append(items, it)
	}
	if p.cur.Type != tokenEOF {
		return value{}, false
	}
	return value{kind: kindSeq, text: s, items: items}, true
}

func (p *parser) next() {
	p.cur = p.peek
	p.peek = p.l.nextToken()
}

func (p *parser) parseValue() (value, bool) {
	switch p.cur.Type {
	case tokenString:
		v := value{kind: kindScalar, text: p.cur.Literal}
		p.next()
		// Adjacent string literals are not supported.
		if p.cur.Type == tokenString {
			return value{}, false
		}
		return v, true
	case tokenNumber:
		v := value{kind: kindScalar, text: p.cur.Literal}
		p.next()
		return v, true
	case tokenKeyword:
		v := value{kind: kindScalar, text: p.cur.Literal}
		if p.cur.Literal == "None" {
			v.kind = kindNone
		}
		p.next()
		return v, true
	case tokenLBracket:
		return p.parseSeq(tokenRBracket, true)
	case tokenLParen:
		return p.parseSeq(tokenRParen, false)
	case tokenLBrace:
		return p.parseSet()
	default:
		return value{}, false
	}
}

// parseSeq parses a bracketed or parenthesised sequence. A parenthesised
// single value without a trailing comma is a grouping, not a tuple.
func (p *parser) parseSeq(closer TokenType, isList bool) (value, bool) {
	start := p.cur.Start
	p.next()

	var items []value
	trailingComma := false
	for p.cur.Type != closer {
		it, ok := p.parseValue()
		if !ok {
			return value{}, false
		}
		items = append(items, it)
		trailingComma = false
		if p.cur.Type == tokenComma {
			trailingComma = true
			p.next()
			continue
		}
		if p.cur.Type != closer {
			return value{}, false
		}
	}
	end := p.cur.End
	p.next()

	if !isList && len(items) == 1 && !trailingComma {
		return items[0], true
	}
	return value{kind: kindSeq, text: p.input[start:end], items: items}, true
}

// parseSet parses {a, b}. Empty braces and key: value pairs are dicts and
// are rejected.
func (p *parser) parseSet() (value, bool) {
	start := p.cur.Start
	p.next()
	if p.cur.Type == tokenRBrace {
		return value{}, false
	}

	var items []value
	for p.cur.Type != tokenRBrace {
		it, ok := p.parseValue()
		if !ok {
			return value{}, false
		}
		if p.cur.Type == tokenColon {
			return value{}, false
		}
		items = appendUnique(items, it)
		if p.cur.Type == tokenComma {
			p.next()
			continue
		}
		if p.cur.Type != tokenRBrace {
			return value{}, false
		}
	}
	end := p.cur.End
	p.next()
	return value{kind: kindSeq, text: p.input[start:end], items: items}, true
}

// appendUnique keeps set semantics for {..} literals while preserving the
// order in which elements were written.
func appendUnique(items []value, v value) []value {
	for _, it := range items {
		if it.kind == v.kind && it.text == v.text {
			return items
		}
	}
	return append(items, v)
}
