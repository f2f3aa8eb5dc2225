package graph

// Node labels and relationship types of the pathway knowledge graph.
const (
	LabelGene       = "Gene"
	LabelDisease    = "Disease"
	LabelAnnotation = "GO_Annotation"

	RelInteractsWith   = "INTERACTS_WITH"
	RelAssociatedWith  = "ASSOCIATED_WITH"
	RelHasGOAnnotation = "HAS_GO_ANNOTATION"
)

// SchemaDescription is the textual schema injected into every query
// synthesis prompt. It must stay in lock-step with the properties written
// by the builder.
const SchemaDescription = `Node properties:
Gene {unique_id: STRING, names: LIST OF STRING, synonyms: LIST OF STRING}
Disease {disease_id: STRING, name: STRING}
GO_Annotation {go_id: STRING, qualifier: STRING, name: STRING, definition: STRING, aspect: STRING, object_type: STRING}
Relationships:
(:Gene)-[:INTERACTS_WITH {type: STRING, subtypes: LIST OF STRING}]->(:Gene)
(:Gene)-[:ASSOCIATED_WITH {evidence: STRING}]->(:Disease)
(:Gene)-[:HAS_GO_ANNOTATION]->(:GO_Annotation)`
