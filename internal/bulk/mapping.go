package bulk

import (
	"fmt"
)

// Kind selects the node or edge layout.
type Kind string

// File kinds.
const (
	KindNodes Kind = "nodes"
	KindEdges Kind = "edges"
)

// ParseKind validates a --type value.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindNodes, KindEdges:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("invalid type %q: must be one of nodes, edges", s)
	}
}

// Field maps one output column to an input column.
type Field struct {
	Out string
	In  string
	// Default is written when the input column is absent or empty.
	Default string
	// Transform rewrites the input value before it is written.
	Transform func(string) string
}

// Mapping is an ordered list of output fields.
type Mapping []Field

// Header returns the output column names.
func (m Mapping) Header() []string {
	out := make([]string, len(m))
	for i, f := range m {
		out[i] = f.Out
	}
	return out
}

// Apply builds one output record from an input row keyed by column name.
func (m Mapping) Apply(row map[string]string) []string {
	out := make([]string, len(m))
	for i, f := range m {
		v := row[f.In]
		if f.Transform != nil {
			v = f.Transform(v)
		}
		if v == "" {
			v = f.Default
		}
		out[i] = v
	}
	return out
}

// NeptuneNodes converts neo4j-admin style node columns to the Neptune
// openCypher layout. String[] is not supported there, so multi-valued
// properties become ';'-joined strings.
var NeptuneNodes = Mapping{
	{Out: ":ID", In: "id:ID"},
	{Out: "name:String", In: "name:string"},
	{Out: ":LABEL", In: "category:LABEL", Transform: SplitLabels},
	{Out: "equivalent_identifiers:String", In: "equivalent_identifiers:string[]", Transform: SplitIdentifiers},
	{Out: "NCBITaxon:String", In: "NCBITaxon:string"},
	{Out: "information_content:Double", In: "information_content:float"},
	{Out: "description:String", In: "description:string"},
}

// NeptuneEdges is the edge counterpart of NeptuneNodes.
var NeptuneEdges = Mapping{
	{Out: ":START_ID", In: "subject:START_ID"},
	{Out: ":END_ID", In: "object:END_ID"},
	{Out: ":TYPE", In: "predicate:TYPE", Default: "RELATED_TO"},
	{Out: "primary_knowledge_source:String", In: "primary_knowledge_source:string"},
	{Out: "knowledge_level:String", In: "knowledge_level:string"},
	{Out: "agent_type:String", In: "agent_type:string"},
	{Out: "original_subject:String", In: "original_subject:string"},
	{Out: "original_object:String", In: "original_object:string"},
	{Out: "description:String", In: "description:string"},
	{Out: "NCBITaxon:String", In: "NCBITaxon:string"},
	{Out: "publications:String", In: "publications:string[]", Transform: SplitPublications},
	{Out: "object_aspect_qualifier:String", In: "object_aspect_qualifier:string"},
	{Out: "object_direction_qualifier:String", In: "object_direction_qualifier:string"},
	{Out: "qualified_predicate:String", In: "qualified_predicate:string"},
}

// GoldenNodes renames the headers of a merged graph node export so
// Neptune accepts it. Values are copied unchanged.
var GoldenNodes = Mapping{
	{Out: ":ID", In: "id:ID"},
	{Out: "name:string", In: "name:string"},
	{Out: ":LABEL", In: "category:LABEL"},
	{Out: "equivalent_identifiers:string", In: "equivalent_identifiers:string[]"},
	{Out: "information_content:float", In: "information_content:float"},
	{Out: "description:string", In: "description:string"},
	{Out: "hgvs:string", In: "hgvs:string[]"},
	{Out: "robokop_variant_id:string", In: "robokop_variant_id:string"},
}

// GoldenEdges is the edge counterpart of GoldenNodes.
var GoldenEdges = Mapping{
	{Out: ":START_ID", In: "subject:START_ID"},
	{Out: ":TYPE", In: "predicate:TYPE"},
	{Out: ":END_ID", In: "object:END_ID"},
	{Out: "primary_knowledge_source:string", In: "primary_knowledge_source:string"},
	{Out: "original_subject:string", In: "original_subject:string"},
	{Out: "original_object:string", In: "original_object:string"},
}

// NeptuneMapping returns the converter mapping for kind.
func NeptuneMapping(kind Kind) Mapping {
	if kind == KindEdges {
		return NeptuneEdges
	}
	return NeptuneNodes
}

// GoldenMapping returns the header-fix mapping for kind.
func GoldenMapping(kind Kind) Mapping {
	if kind == KindEdges {
		return GoldenEdges
	}
	return GoldenNodes
}
