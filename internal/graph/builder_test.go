package graph

import (
	"reflect"
	"strings"
	"testing"

	"github.com/evangelosroutis/hypothesis-generation/internal/gaf"
	"github.com/evangelosroutis/hypothesis-generation/internal/kgml"
)

var testAspectMap = map[string]string{
	"P": "biological process",
	"F": "molecular function",
	"C": "cellular component",
}

func testPathway() *kgml.Pathway {
	return &kgml.Pathway{
		ID:   "05012",
		Name: "Parkinson disease",
		Genes: []kgml.GeneEntry{
			{ID: "10", Names: []string{"hsa:2770"}, Symbols: []string{"GNAI1"}},
			{ID: "11", Names: []string{"hsa:11315"}, Symbols: []string{"DJ1"}},
		},
		Interactions: []kgml.Interaction{
			{Entry1: "11", Entry2: "10", Type: "PPrel", Subtypes: []string{"activation"}},
			{Entry1: "11", Entry2: "10", Type: "PPrel", Subtypes: []string{"activation"}}, // duplicate natural key
			{Entry1: "11", Entry2: "10", Type: "GErel"},                                   // same pair, different type
			{Entry1: "11", Entry2: "99", Type: "PPrel"},                                   // unresolvable endpoint
		},
	}
}

func testAnnotations() []gaf.Record {
	return []gaf.Record{
		{
			ObjectSymbol: "PARK7",
			Qualifier:    "enables",
			GOID:         "GO:0016684",
			Aspect:       "F",
			ObjectName:   "Parkinson disease protein 7",
			Synonyms:     []string{"DJ-1", "DJ1"},
			ObjectType:   "protein",
			EvidenceCode: "IEA",
			GOLabel:      "oxidoreductase activity",
			GODefinition: "Catalysis of an oxidation-reduction reaction.",
		},
	}
}

func TestPrepareRowsMergesSynonymsAcrossSources(t *testing.T) {
	rows := prepareRows(testPathway(), indexBySymbol(testAnnotations()), testAspectMap, "from KGML")

	var park7 map[string]any
	for _, g := range rows.genes {
		if g["unique_id"] == "05012_11" {
			park7 = g
		}
	}
	if park7 == nil {
		t.Fatalf("expected gene 05012_11 in rows")
	}

	synonyms := park7["synonyms"].([]string)
	want := map[string]bool{"DJ1": true, "DJ-1": true, "PARK7": true}
	for _, s := range synonyms {
		delete(want, s)
	}
	if len(want) != 0 {
		t.Fatalf("synonyms missing %v; got %v", want, synonyms)
	}
	// DJ1 appears in both sources; the union must not duplicate it.
	seen := map[string]int{}
	for _, s := range synonyms {
		seen[NormalizeSymbol(s)]++
	}
	if seen["DJ1"] != 1 {
		t.Fatalf("expected DJ1 exactly once, got %d in %v", seen["DJ1"], synonyms)
	}
}

func TestPrepareRowsInteractionNaturalKey(t *testing.T) {
	rows := prepareRows(testPathway(), indexBySymbol(testAnnotations()), testAspectMap, "from KGML")

	if len(rows.interactions) != 2 {
		t.Fatalf("expected 2 interactions (duplicate key collapsed, distinct type kept), got %d", len(rows.interactions))
	}
	types := map[string]bool{}
	for _, r := range rows.interactions {
		if r["from_id"] != "05012_11" || r["to_id"] != "05012_10" {
			t.Fatalf("unexpected interaction endpoints: %v", r)
		}
		types[r["type"].(string)] = true
	}
	if !types["PPrel"] || !types["GErel"] {
		t.Fatalf("expected both PPrel and GErel edges, got %v", types)
	}
}

func TestPrepareRowsCountsSkipped(t *testing.T) {
	rows := prepareRows(testPathway(), indexBySymbol(testAnnotations()), testAspectMap, "from KGML")
	// One relation points at entry 99 which is not a gene entry.
	if rows.skipped != 1 {
		t.Fatalf("expected 1 skipped record, got %d", rows.skipped)
	}

	p := testPathway()
	p.Genes = append(p.Genes, kgml.GeneEntry{ID: "", Symbols: []string{"ORPHAN"}})
	rows = prepareRows(p, indexBySymbol(testAnnotations()), testAspectMap, "from KGML")
	if rows.skipped != 2 {
		t.Fatalf("expected entry without id to be skipped too, got %d", rows.skipped)
	}
}

func TestPrepareRowsAnnotationAspectMapped(t *testing.T) {
	rows := prepareRows(testPathway(), indexBySymbol(testAnnotations()), testAspectMap, "from KGML")
	if len(rows.annotations) != 1 {
		t.Fatalf("expected 1 annotation row, got %d", len(rows.annotations))
	}
	a := rows.annotations[0]
	if a["go_id"] != "GO:0016684" {
		t.Fatalf("unexpected annotation id: %v", a["go_id"])
	}
	if a["aspect"] != "molecular function" {
		t.Fatalf("expected aspect code F mapped, got %v", a["aspect"])
	}
	if len(rows.goLinks) != 1 || rows.goLinks[0]["unique_id"] != "05012_11" {
		t.Fatalf("expected one HAS_GO_ANNOTATION row for 05012_11, got %v", rows.goLinks)
	}
}

// An annotation row whose aspect code is empty or outside the known
// vocabulary must not produce a node or a link, and must be counted as
// skipped exactly once even when the gene matches it under several symbols.
func TestPrepareRowsSkipsMalformedAnnotations(t *testing.T) {
	p := &kgml.Pathway{
		ID:   "05012",
		Name: "Parkinson disease",
		Genes: []kgml.GeneEntry{
			{ID: "11", Names: []string{"hsa:11315"}, Symbols: []string{"DJ1", "PARK7"}},
		},
	}

	cases := map[string]gaf.Record{
		"empty aspect": {ObjectID: "Q99497", ObjectSymbol: "PARK7",
			GOID: "GO:0016684", Aspect: "", Synonyms: []string{"DJ1"}},
		"unknown aspect code": {ObjectID: "Q99497", ObjectSymbol: "PARK7",
			GOID: "GO:0016684", Aspect: "X", Synonyms: []string{"DJ1"}},
		"missing go id": {ObjectID: "Q99497", ObjectSymbol: "PARK7",
			GOID: "", Aspect: "F", Synonyms: []string{"DJ1"}},
	}
	for name, rec := range cases {
		rows := prepareRows(p, indexBySymbol([]gaf.Record{rec}), testAspectMap, "from KGML")
		if len(rows.annotations) != 0 {
			t.Fatalf("%s: expected no annotation rows, got %v", name, rows.annotations)
		}
		if len(rows.goLinks) != 0 {
			t.Fatalf("%s: expected no annotation links, got %v", name, rows.goLinks)
		}
		// The record matches under both DJ1 and PARK7; one skip, not two.
		if rows.skipped != 1 {
			t.Fatalf("%s: expected the record skipped exactly once, got %d", name, rows.skipped)
		}
	}
}

func TestPrepareRowsEvidence(t *testing.T) {
	rows := prepareRows(testPathway(), indexBySymbol(testAnnotations()), testAspectMap, "from KGML")
	evidenceByGene := map[string]string{}
	for _, r := range rows.associations {
		evidenceByGene[r["unique_id"].(string)] = r["evidence"].(string)
	}
	if evidenceByGene["05012_11"] != "IEA" {
		t.Fatalf("expected annotation evidence code for matched gene, got %q", evidenceByGene["05012_11"])
	}
	if evidenceByGene["05012_10"] != "from KGML" {
		t.Fatalf("expected default evidence for unmatched gene, got %q", evidenceByGene["05012_10"])
	}
}

// Replay safety: every write MERGEs on its natural key, list properties
// grow by set union, and nothing uses a bare CREATE. Together with
// deterministic row preparation this is what makes a second run over the
// same inputs create zero new entities.
func TestPathwayStatementsUpsertSemantics(t *testing.T) {
	rows := prepareRows(testPathway(), indexBySymbol(testAnnotations()), testAspectMap, "from KGML")
	stmts := pathwayStatements(rows)
	if len(stmts) != 6 {
		t.Fatalf("expected 6 statements for fully populated rows, got %d", len(stmts))
	}

	var sb strings.Builder
	for _, s := range stmts {
		sb.WriteString(s.cypher)
	}
	text := sb.String()

	for _, want := range []string{
		"MERGE (d:Disease {disease_id: $disease_id})",
		"MERGE (g:Gene {unique_id: n.unique_id})",
		"ON MATCH SET g.names = g.names + [x IN n.names WHERE NOT x IN g.names]",
		"g.synonyms = g.synonyms + [x IN n.synonyms WHERE NOT x IN g.synonyms]",
		"MERGE (a:GO_Annotation {go_id: n.go_id})",
		"MERGE (g)-[e:ASSOCIATED_WITH]->(d)",
		"MERGE (g)-[:HAS_GO_ANNOTATION]->(a)",
		"MERGE (a)-[e:INTERACTS_WITH {type: r.type}]->(b)",
		"SET e.subtypes = r.subtypes",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing upsert clause %q in:\n%s", want, text)
		}
	}
	if strings.Contains(text, "CREATE (") {
		t.Fatalf("expected MERGE-only writes, found a bare CREATE:\n%s", text)
	}
}

func TestPathwayStatementsOmitEmptyBatches(t *testing.T) {
	rows := prepareRows(&kgml.Pathway{ID: "00001", Name: "Empty"}, nil, testAspectMap, "from KGML")
	stmts := pathwayStatements(rows)
	if len(stmts) != 1 {
		t.Fatalf("expected only the disease upsert for an empty pathway, got %d statements", len(stmts))
	}
	if !strings.Contains(stmts[0].cypher, "MERGE (d:Disease") {
		t.Fatalf("unexpected first statement: %s", stmts[0].cypher)
	}
}

func TestPrepareRowsDeterministic(t *testing.T) {
	bySymbol := indexBySymbol(testAnnotations())
	first := prepareRows(testPathway(), bySymbol, testAspectMap, "from KGML")
	second := prepareRows(testPathway(), bySymbol, testAspectMap, "from KGML")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("row preparation is not deterministic")
	}
}
