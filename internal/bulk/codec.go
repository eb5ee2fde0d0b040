// Package bulk converts graph exports into the single-valued, typed CSV
// layout required by bulk graph loaders.
//
// Multi-valued properties are encoded as one cell joined with ';'. Legacy
// exports that concatenated values without any delimiter are recovered by
// scanning for the known token prefixes (biolink:, CURIE prefixes, PMID:).
package bulk

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Delimiter separates values inside a BulkField.
const Delimiter = ";"

// DefaultLabel is used for nodes whose category yields no biolink label.
const DefaultLabel = "Node"

var (
	labelRe       = regexp.MustCompile(`biolink:[A-Za-z]+`)
	publicationRe = regexp.MustCompile(`PMID:\d+`)
)

// Encode joins values into a single bulk field. Empty values are skipped
// since they cannot survive a round trip.
func Encode(values []string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, Delimiter)
}

// Decode splits a bulk field back into its values. An empty field decodes
// to an empty slice. Decode(Encode(v)) == v for non-empty values that do
// not contain the delimiter.
func Decode(field string) []string {
	if field == "" {
		return []string{}
	}
	return strings.Split(field, Delimiter)
}

// SplitLabels extracts every biolink:<Name> label from a concatenated
// category string. When none is found the default label is returned.
func SplitLabels(s string) string {
	labels := labelRe.FindAllString(s, -1)
	if len(labels) == 0 {
		return DefaultLabel
	}
	return strings.Join(labels, Delimiter)
}

// SplitPublications extracts every PMID:<digits> token. When none is found
// the input is returned unchanged.
func SplitPublications(s string) string {
	if s == "" {
		return ""
	}
	pubs := publicationRe.FindAllString(s, -1)
	if len(pubs) == 0 {
		return s
	}
	return strings.Join(pubs, Delimiter)
}

// SplitIdentifiers recovers CURIEs from a concatenated identifier string
// such as "MONDO:0005148DOID:9352UMLS:C0011860". A field that is already
// ';'-separated is split first, so re-encoding it is a no-op. When none is
// found the input is returned unchanged.
func SplitIdentifiers(s string) string {
	if s == "" {
		return ""
	}
	var ids []string
	for _, part := range strings.Split(s, Delimiter) {
		ids = append(ids, FindIdentifiers(part)...)
	}
	if len(ids) == 0 {
		return s
	}
	return strings.Join(ids, Delimiter)
}

// FindIdentifiers returns every non-overlapping CURIE in s. A CURIE is a
// prefix [A-Z][A-Za-z0-9._-]* followed by ':' and a non-empty run of
// non-whitespace characters. The value ends at the shortest point where
// another prefix begins or the string ends; a value interrupted by
// whitespace before such a point does not match.
func FindIdentifiers(s string) []string {
	var out []string
	for i := 0; i < len(s); {
		if end, ok := matchIdentifierAt(s, i); ok {
			out = append(out, s[i:end])
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return out
}

// matchIdentifierAt attempts a CURIE match starting at byte offset i and
// returns the end offset of the match.
func matchIdentifierAt(s string, i int) (int, bool) {
	colon, ok := prefixEnd(s, i)
	if !ok {
		return 0, false
	}
	// The value needs at least one character, then ends lazily.
	j := colon + 1
	for j < len(s) {
		r, size := utf8.DecodeRuneInString(s[j:])
		if unicode.IsSpace(r) {
			return 0, false
		}
		j += size
		if j == len(s) {
			return j, true
		}
		if _, ok := prefixEnd(s, j); ok {
			return j, true
		}
	}
	return 0, false
}

// prefixEnd reports whether a CURIE prefix starts at i and returns the
// offset of its terminating colon.
func prefixEnd(s string, i int) (int, bool) {
	if i >= len(s) || !isUpper(s[i]) {
		return 0, false
	}
	j := i + 1
	for j < len(s) && isPrefixByte(s[j]) {
		j++
	}
	if j < len(s) && s[j] == ':' {
		return j, true
	}
	return 0, false
}

func isUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

func isPrefixByte(b byte) bool {
	switch {
	case isUpper(b), b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	}
	return b == '.' || b == '-' || b == '_'
}
