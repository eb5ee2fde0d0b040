// Package therapy resolves free-text therapy and regimen names to NCIt codes.
//
// Regimens are written inconsistently upstream ("Cytarabine + Daunorubicin",
// "Daunorubicin, Cytarabine", "Cytarabine-Daunorubicin"), so names are
// reduced to an order-insensitive set of canonical drug tokens and matched
// against a reference dictionary: whole regimens first, single drugs second.
package therapy

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	parentheticalRe = regexp.MustCompile(`\([^)]*\)`)
	separatorRe     = regexp.MustCompile(`(?i)/|,|;|\+|&|\band\b|\bwith\b`)
	hyphenRe        = regexp.MustCompile(`[-–—]`)
	stopwordRe      = regexp.MustCompile(`(?i)\b(?:regimen|combination|combo|therapy|therapies)\b`)
	disallowedRe    = regexp.MustCompile(`[^a-z0-9+\-\s]`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// splitPrimary removes parenthetical annotations and splits on the primary
// separators: / , ; + & and the words "and" and "with".
func splitPrimary(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	s = parentheticalRe.ReplaceAllString(s, "")
	return trimPieces(separatorRe.Split(s, -1))
}

// Tokenize splits a therapy string into drug tokens. When the primary
// separators yield fewer than two tokens, the single token (or the raw
// input when none is left) is split on hyphen-like characters instead, and
// that result is used only if it has at least two tokens.
func Tokenize(s string) []string {
	toks := splitPrimary(s)
	if len(toks) >= 2 {
		return toks
	}
	only := s
	if len(toks) == 1 {
		only = toks[0]
	}
	if hy := trimPieces(hyphenRe.Split(only, -1)); len(hy) >= 2 {
		return hy
	}
	return toks
}

func trimPieces(parts []string) []string {
	var out []string
	for _, p := range parts {
		if t := strings.Trim(p, " ."); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Canon canonicalises a single token: compatibility-folded, stop-words
// removed, lower-cased, restricted to [a-z0-9+- ] with whitespace
// collapsed. The result may be empty.
func Canon(token string) string {
	s := norm.NFKC.String(strings.TrimSpace(token))
	s = stopwordRe.ReplaceAllString(s, " ")
	s = strings.ToLower(s)
	s = disallowedRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ComboKey is the sorted, duplicate-free set of canonical tokens of a
// therapy string.
type ComboKey []string

// String renders the key in a form usable as a map key. Canonical tokens
// never contain '|'.
func (k ComboKey) String() string {
	return strings.Join(k, "|")
}

// KeyFromTokens canonicalises tokens and builds their combo key.
func KeyFromTokens(tokens []string) ComboKey {
	seen := make(map[string]struct{}, len(tokens))
	key := ComboKey{}
	for _, t := range tokens {
		c := Canon(t)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		key = append(key, c)
	}
	sort.Strings(key)
	return key
}

// Key builds the combo key of s using hyphen-aware tokenization.
func Key(s string) ComboKey {
	return KeyFromTokens(Tokenize(s))
}
