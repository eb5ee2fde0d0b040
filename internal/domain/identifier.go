package domain

// Identifier namespaces.
const (
	NamespaceDOID     = "DOID"
	NamespaceCA       = "CA"
	NamespaceNCBIGene = "NCBIGene"
	NamespaceNCIT     = "NCIT"
	NamespaceEntrez   = "ENTREZ"
)

// Identifier is a normalised namespaced identifier such as DOID:1909.
type Identifier struct {
	Namespace string
	Value     string
}

// String renders the identifier as namespace:value.
func (id Identifier) String() string {
	if id.Namespace == "" {
		return id.Value
	}
	return id.Namespace + ":" + id.Value
}

// IsZero reports whether the identifier is absent.
func (id Identifier) IsZero() bool {
	return id.Namespace == "" && id.Value == ""
}
