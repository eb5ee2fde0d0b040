// Package kgx projects extracted source records onto the biolink graph
// model and writes KGX exports.
package kgx

// Biolink categories.
const (
	CategoryGene            = "biolink:Gene"
	CategoryDisease         = "biolink:Disease"
	CategorySequenceVariant = "biolink:SequenceVariant"
	CategoryChemicalEntity  = "biolink:ChemicalEntity"
	CategoryNamedThing      = "biolink:NamedThing"
)

// Biolink predicates.
const (
	PredicateGeneticallyAssociatedWith = "biolink:genetically_associated_with"
	PredicateIsSequenceVariantOf       = "biolink:is_sequence_variant_of"
	PredicateGeneAssociatedWith        = "biolink:gene_associated_with_condition"
	PredicateTreats                    = "biolink:treats"
)

// Knowledge sources.
const (
	SourceCIViC       = "infores:civic"
	SourceCBioPortal  = "infores:cbioportal"
	Source1000Genomes = "infores:1000genomes"
)

// Knowledge level and agent type values.
const (
	NotProvided        = "not_provided"
	KnowledgeAssertion = "knowledge_assertion"
	ManualAgent        = "manual_agent"
)

// HumanTaxon is the NCBITaxon id attached to human genes and variants.
const HumanTaxon = "NCBITaxon:9606"

// Node is one KGX node.
type Node struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name,omitempty"`
	Category              []string `json:"category"`
	EquivalentIdentifiers []string `json:"equivalent_identifiers,omitempty"`
	NCBITaxon             string   `json:"NCBITaxon,omitempty"`
	InformationContent    *float64 `json:"information_content,omitempty"`
	Description           string   `json:"description,omitempty"`
}

// Edge is one KGX edge.
type Edge struct {
	Subject                  string   `json:"subject"`
	Predicate                string   `json:"predicate"`
	Object                   string   `json:"object"`
	PrimaryKnowledgeSource   string   `json:"primary_knowledge_source"`
	KnowledgeLevel           string   `json:"knowledge_level"`
	AgentType                string   `json:"agent_type"`
	Publications             []string `json:"publications,omitempty"`
	OriginalSubject          string   `json:"original_subject,omitempty"`
	OriginalObject           string   `json:"original_object,omitempty"`
	Description              string   `json:"description,omitempty"`
	NCBITaxon                string   `json:"NCBITaxon,omitempty"`
	ObjectAspectQualifier    string   `json:"object_aspect_qualifier,omitempty"`
	ObjectDirectionQualifier string   `json:"object_direction_qualifier,omitempty"`
	QualifiedPredicate       string   `json:"qualified_predicate,omitempty"`
}

type edgeKey struct {
	subject, predicate, object, source string
}

func (e Edge) key() edgeKey {
	return edgeKey{e.Subject, e.Predicate, e.Object, e.PrimaryKnowledgeSource}
}
