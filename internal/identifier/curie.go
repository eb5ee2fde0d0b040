package identifier

import (
	"strings"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/domain"
)

// CURIE renders id with the prefix the graph model expects. ClinGen allele
// ids are projected as CAID:CA<digits>; other namespaces render unchanged.
func CURIE(id domain.Identifier) string {
	if id.Namespace == domain.NamespaceCA {
		return "CAID:CA" + id.Value
	}
	return id.String()
}

// RegisteredAllele reports whether id is a CA id with a purely numeric
// registry number. Placeholder values such as "unregistered" fail.
func RegisteredAllele(id domain.Identifier) bool {
	if id.Namespace != domain.NamespaceCA || id.Value == "" {
		return false
	}
	return strings.IndexFunc(id.Value, func(r rune) bool { return r < '0' || r > '9' }) < 0
}

// Parse splits a rendered identifier such as "DOID:1909" back into its
// namespace and value. Values without a colon are returned with no namespace.
func Parse(s string) domain.Identifier {
	ns, v, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return domain.Identifier{Value: ns}
	}
	return domain.Identifier{Namespace: ns, Value: v}
}
