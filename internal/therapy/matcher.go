package therapy

import (
	"strings"
)

// Entry is one reference dictionary row.
type Entry struct {
	Name string
	Code string
}

// Matcher resolves therapy strings against a reference dictionary.
// It is immutable after construction and safe for concurrent use.
type Matcher struct {
	combos map[string]string // combo key (>= 2 tokens) -> code
	tokens map[string]string // single canonical token -> code
}

// NewMatcher indexes entries. Keys with two or more tokens populate the
// combo table, single-token keys populate the token table; on collision
// the first entry wins. Entries without a code or without any usable
// token are ignored.
func NewMatcher(entries []Entry) *Matcher {
	m := &Matcher{
		combos: make(map[string]string),
		tokens: make(map[string]string),
	}
	for _, e := range entries {
		code := strings.TrimSpace(e.Code)
		if code == "" {
			continue
		}
		key := Key(e.Name)
		switch {
		case len(key) >= 2:
			if _, ok := m.combos[key.String()]; !ok {
				m.combos[key.String()] = code
			}
		case len(key) == 1:
			if _, ok := m.tokens[key[0]]; !ok {
				m.tokens[key[0]] = code
			}
		}
	}
	return m
}

// Stats returns the sizes of the combo and token tables.
func (m *Matcher) Stats() (combos, tokens int) {
	return len(m.combos), len(m.tokens)
}

// Result is the outcome of matching one therapy string.
type Result struct {
	Combo  string   // code of the whole-regimen match, "" when none
	Tokens []string // de-duplicated per-token codes in input order
}

// ComboID returns the whole-regimen code or "".
func (r Result) ComboID() string { return r.Combo }

// TokenIDs returns the per-token codes joined with commas, or "".
func (r Result) TokenIDs() string { return strings.Join(r.Tokens, ",") }

// Resolved prefers the combo code and falls back to the per-token list.
// ok is false when neither resolved.
func (r Result) Resolved() (string, bool) {
	if r.Combo != "" {
		return r.Combo, true
	}
	if len(r.Tokens) > 0 {
		return r.TokenIDs(), true
	}
	return "", false
}

// Match resolves s. The combo table is consulted with the order-insensitive
// key of the whole string; independently every token is looked up in the
// token table.
func (m *Matcher) Match(s string) Result {
	var res Result
	toks := Tokenize(s)

	if key := KeyFromTokens(toks); len(key) > 0 {
		res.Combo = m.combos[key.String()]
	}

	seen := make(map[string]struct{})
	for _, t := range toks {
		c := Canon(t)
		if c == "" {
			continue
		}
		code, ok := m.tokens[c]
		if !ok {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		res.Tokens = append(res.Tokens, code)
	}
	return res
}
