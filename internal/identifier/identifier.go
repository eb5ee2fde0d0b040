// Package identifier normalises cross-source identifiers into canonical
// namespaced form. Every normaliser is pure and idempotent: feeding its
// output back in returns the same value.
package identifier

import (
	"math"
	"strconv"
	"strings"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/domain"
)

const (
	doidPrefix     = "DOID:"
	caPrefix       = "CA:"
	ncbiGenePrefix = "NCBIGENE:"
	ncitPrefix     = "NCIT:"
)

// DOID normalises a disease ontology id. "1909" and "1909.0" become
// DOID:1909; values already prefixed with DOID: pass through unchanged.
func DOID(raw string) (domain.Identifier, bool) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, doidPrefix) {
		return domain.Identifier{Namespace: domain.NamespaceDOID, Value: s[len(doidPrefix):]}, true
	}
	n, ok := parseInteger(s)
	if !ok {
		return domain.Identifier{}, false
	}
	return domain.Identifier{Namespace: domain.NamespaceDOID, Value: strconv.FormatInt(n, 10)}, true
}

// Allele normalises a ClinGen Allele Registry id to CA:<rest>.
//
// An existing CA: prefix (any case) is kept, a bare CA prefix gets the
// colon inserted after the two letters, and any other value is prefixed
// with CA: as a whole.
func Allele(raw string) (domain.Identifier, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || isNullSpelling(s) {
		return domain.Identifier{}, false
	}
	upper := strings.ToUpper(s)
	var rest string
	switch {
	case strings.HasPrefix(upper, caPrefix):
		rest = s[len(caPrefix):]
	case strings.HasPrefix(upper, "CA"):
		rest = s[2:]
	default:
		rest = s
	}
	if rest == "" {
		return domain.Identifier{}, false
	}
	return domain.Identifier{Namespace: domain.NamespaceCA, Value: rest}, true
}

// NCBIGene normalises an Entrez gene id. Values already carrying an
// NCBIGene: prefix (any case) pass through unchanged.
func NCBIGene(raw string) (domain.Identifier, bool) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToUpper(s), ncbiGenePrefix) {
		return domain.Identifier{Namespace: s[:len(ncbiGenePrefix)-1], Value: s[len(ncbiGenePrefix):]}, true
	}
	n, ok := parseInteger(s)
	if !ok {
		return domain.Identifier{}, false
	}
	return domain.Identifier{Namespace: domain.NamespaceNCBIGene, Value: strconv.FormatInt(n, 10)}, true
}

// NCIT wraps a therapy code resolved by the combo matcher.
func NCIT(code string) (domain.Identifier, bool) {
	s := strings.TrimSpace(code)
	if strings.HasPrefix(strings.ToUpper(s), ncitPrefix) {
		s = s[len(ncitPrefix):]
	}
	if s == "" {
		return domain.Identifier{}, false
	}
	return domain.Identifier{Namespace: domain.NamespaceNCIT, Value: s}, true
}

// EntrezFallback is the placeholder name used for a gene whose symbol
// could not be resolved.
func EntrezFallback(id string) string {
	return domain.NamespaceEntrez + ":" + strings.TrimSpace(id)
}

// Normalize dispatches on a namespace name (doid, ca, ncbigene, ncit).
func Normalize(namespace, raw string) (domain.Identifier, bool, error) {
	switch strings.ToLower(namespace) {
	case "doid":
		id, ok := DOID(raw)
		return id, ok, nil
	case "ca", "caid", "allele":
		id, ok := Allele(raw)
		return id, ok, nil
	case "ncbigene", "gene", "entrez":
		id, ok := NCBIGene(raw)
		return id, ok, nil
	case "ncit", "therapy":
		id, ok := NCIT(raw)
		return id, ok, nil
	default:
		return domain.Identifier{}, false, domain.ErrValidation("unknown namespace %q", namespace)
	}
}

// String normalises raw in namespace and renders it, or returns "" when absent.
func String(fn func(string) (domain.Identifier, bool), raw string) string {
	id, ok := fn(raw)
	if !ok {
		return ""
	}
	return id.String()
}

// parseInteger accepts integer and decimal spellings ("12", "12.0").
// Values with a fractional part are rejected.
func parseInteger(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= math.MaxInt64 || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

func isNullSpelling(s string) bool {
	switch strings.ToLower(s) {
	case "nan", "none", "null":
		return true
	}
	return false
}
