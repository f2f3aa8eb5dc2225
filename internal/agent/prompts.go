package agent

import "fmt"

// promptBundle is the fixed instruction/exemplar set for one category.
// The table below is closed: adding a category means adding a bundle here
// and a constant in category.go.
type promptBundle struct {
	synthesis  string
	correction string
	answer     string
}

const classificationPrompt = `You route questions about a biomedical knowledge graph to exactly one tool.
Reply with a single label and nothing else: "disease_association" or "downstream_interaction".

Examples:
Question: Is gene GNAI1 associated with Parkinson disease?
Label: disease_association
Question: Which diseases is INS linked to?
Label: disease_association
Question: What are the downstream interactions of gene PARK7?
Label: downstream_interaction
Question: What does CASP3 act on further down the pathway?
Label: downstream_interaction

Question: %s
Label:`

const diseaseAssociationSynthesis = `You translate a natural-language question about gene-disease associations into a single Cypher query.

Graph schema:
%s

Rules:
- Output only the Cypher query. No explanations, no code fences.
- Genes are looked up case-insensitively through their synonyms list.
- Disease names are matched case-insensitively with CONTAINS.
- Return the gene's unique_id and synonyms, the relationship evidence, and the disease's disease_id and name.

Examples:
Question: Is gene GNAI1 associated with Parkinson disease?
MATCH (g:Gene)-[r:ASSOCIATED_WITH]->(d:Disease)
WHERE any(s IN g.synonyms WHERE toLower(s) = toLower('GNAI1'))
  AND toLower(d.name) CONTAINS toLower('parkinson')
RETURN g.unique_id AS gene_id, g.synonyms AS synonyms, r.evidence AS evidence, d.disease_id AS disease_id, d.name AS disease

Question: Which diseases is the gene INS associated with?
MATCH (g:Gene)-[r:ASSOCIATED_WITH]->(d:Disease)
WHERE any(s IN g.synonyms WHERE toLower(s) = toLower('INS'))
RETURN g.unique_id AS gene_id, g.synonyms AS synonyms, r.evidence AS evidence, d.disease_id AS disease_id, d.name AS disease

Question: %s`

const downstreamInteractionSynthesis = `You translate a natural-language question about downstream gene interactions into a single Cypher query.

Graph schema:
%s

Rules:
- Output only the Cypher query. No explanations, no code fences.
- Genes are looked up case-insensitively through their synonyms list.
- Follow INTERACTS_WITH edges in their direction, any number of hops, ending at genes with no further outgoing INTERACTS_WITH edge.
- Return one list per path; each element describes one edge with its start node, end node, type and subtypes.

Examples:
Question: What are the downstream interactions of gene PARK7?
MATCH path = (g:Gene)-[:INTERACTS_WITH*]->(t:Gene)
WHERE any(s IN g.synonyms WHERE toLower(s) = toLower('PARK7'))
  AND NOT (t)-[:INTERACTS_WITH]->()
RETURN collect([rel IN relationships(path) | {
  start: {unique_id: startNode(rel).unique_id, names: startNode(rel).names},
  end: {unique_id: endNode(rel).unique_id, names: endNode(rel).names},
  type: rel.type,
  subtypes: rel.subtypes
}]) AS interactions

Question: What does the gene CASP3 act on downstream?
MATCH path = (g:Gene)-[:INTERACTS_WITH*]->(t:Gene)
WHERE any(s IN g.synonyms WHERE toLower(s) = toLower('CASP3'))
  AND NOT (t)-[:INTERACTS_WITH]->()
RETURN collect([rel IN relationships(path) | {
  start: {unique_id: startNode(rel).unique_id, names: startNode(rel).names},
  end: {unique_id: endNode(rel).unique_id, names: endNode(rel).names},
  type: rel.type,
  subtypes: rel.subtypes
}]) AS interactions

Question: %s`

const queryCorrection = `The Cypher query below failed against the graph store. Produce a corrected query.

Graph schema:
%s

Failed query:
%s

Store error:
%s

Rules:
- Output only the corrected Cypher query. No explanations, no code fences.`

const diseaseAssociationAnswer = `You answer a question about gene-disease associations.
Use only the retrieved facts below. Do not add, infer or speculate beyond them.
If the facts mention a pathway/disease identifier, include it in the answer.

Retrieved facts:
%s

Question: %s`

const downstreamInteractionAnswer = `You describe downstream gene interaction paths.
Use only the retrieved facts below. Do not add, infer or speculate beyond them.
Describe each path in order, one interaction per sentence, including the annotation description attached to each interaction.

Retrieved facts:
%s

Question: %s`

var promptBundles = map[Category]promptBundle{
	CategoryDiseaseAssociation: {
		synthesis:  diseaseAssociationSynthesis,
		correction: queryCorrection,
		answer:     diseaseAssociationAnswer,
	},
	CategoryDownstreamInteraction: {
		synthesis:  downstreamInteractionSynthesis,
		correction: queryCorrection,
		answer:     downstreamInteractionAnswer,
	},
}

func bundleFor(category Category) (promptBundle, error) {
	b, ok := promptBundles[category]
	if !ok {
		return promptBundle{}, fmt.Errorf("no prompt bundle for category %q", category)
	}
	return b, nil
}
