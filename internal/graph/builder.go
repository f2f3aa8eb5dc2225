package graph

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/evangelosroutis/hypothesis-generation/internal/gaf"
	"github.com/evangelosroutis/hypothesis-generation/internal/kgml"
	"github.com/evangelosroutis/hypothesis-generation/internal/platform/logger"
	"github.com/evangelosroutis/hypothesis-generation/internal/platform/neo4jdb"
	"github.com/evangelosroutis/hypothesis-generation/internal/platform/openai"
)

// Builder merges pathway files and one annotation file into the graph
// store. All writes are idempotent upserts keyed on the identity resolver's
// merge keys, so re-running an import over the same inputs is a no-op.
type Builder struct {
	client   *neo4jdb.Client
	llm      openai.Client
	log      *logger.Logger
	evidence string
}

func NewBuilder(client *neo4jdb.Client, llm openai.Client, log *logger.Logger, defaultEvidence string) *Builder {
	if defaultEvidence == "" {
		defaultEvidence = "from KGML"
	}
	return &Builder{
		client:   client,
		llm:      llm,
		log:      log.With("service", "GraphBuilder"),
		evidence: defaultEvidence,
	}
}

// ImportReport summarizes one import run. Created counts come from the
// store's own counters, so a second run over identical inputs reports zero
// new nodes and relationships.
type ImportReport struct {
	RunID                uuid.UUID
	Pathways             int
	NodesCreated         int
	RelationshipsCreated int
	PropertiesSet        int
	Skipped              int
	AnnotationsEmbedded  int
	Duration             time.Duration
}

func (b *Builder) Build(ctx context.Context, pathwayFiles []string, gafPath string, aspectMap map[string]string) (*ImportReport, error) {
	if b.client == nil || b.client.Driver == nil {
		return nil, fmt.Errorf("graph builder: store client required")
	}
	if len(pathwayFiles) == 0 {
		return nil, fmt.Errorf("graph builder: no pathway files")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if err := b.client.VerifyWithin(10 * time.Second); err != nil {
		return nil, fmt.Errorf("graph builder: store unreachable: %w", err)
	}

	started := time.Now()
	report := &ImportReport{RunID: uuid.New()}
	log := b.log.With("run_id", report.RunID.String())

	annotations, gafSkipped, err := gaf.ParseFile(gafPath)
	if err != nil {
		return nil, err
	}
	report.Skipped += gafSkipped
	bySymbol := indexBySymbol(annotations)
	log.Info("parsed annotation source", "records", len(annotations), "symbols", len(bySymbol), "skipped_rows", gafSkipped)

	if err := b.ensureConstraints(ctx, log); err != nil {
		return nil, err
	}

	for _, path := range pathwayFiles {
		pathway, err := kgml.ParseFile(path)
		if err != nil {
			return nil, err
		}
		rows := prepareRows(pathway, bySymbol, aspectMap, b.evidence)
		report.Skipped += rows.skipped

		if err := b.writePathway(ctx, rows, report); err != nil {
			return nil, fmt.Errorf("graph builder: write pathway %s: %w", pathway.ID, err)
		}
		report.Pathways++
		log.Info("imported pathway",
			"pathway_id", pathway.ID,
			"genes", len(rows.genes),
			"annotations", len(rows.annotations),
			"interactions", len(rows.interactions),
			"skipped", rows.skipped,
		)
	}

	embedded, err := b.backfillEmbeddings(ctx, log)
	if err != nil {
		return nil, err
	}
	report.AnnotationsEmbedded = embedded

	report.Duration = time.Since(started)
	log.Info("import finished",
		"pathways", report.Pathways,
		"nodes_created", report.NodesCreated,
		"relationships_created", report.RelationshipsCreated,
		"skipped", report.Skipped,
		"annotations_embedded", report.AnnotationsEmbedded,
		"duration", report.Duration.String(),
	)
	return report, nil
}

// pathwayRows is the store-ready shape of one pathway source joined with
// the annotation records. Building it is pure so tests can exercise the
// merge semantics without a store.
type pathwayRows struct {
	disease      map[string]any
	genes        []map[string]any
	annotations  []map[string]any
	goLinks      []map[string]any
	associations []map[string]any
	interactions []map[string]any
	skipped      int
}

func prepareRows(p *kgml.Pathway, bySymbol map[string][]gaf.Record, aspectMap map[string]string, defaultEvidence string) pathwayRows {
	rows := pathwayRows{
		disease: map[string]any{"disease_id": p.ID, "name": p.Name},
	}

	keyByEntry := make(map[string]string, len(p.Genes))
	seenAnnotation := map[string]bool{}
	seenGoLink := map[string]bool{}
	seenMalformed := map[string]bool{}

	for _, entry := range p.Genes {
		key, err := MergeKey(p.ID, entry.ID)
		if err != nil {
			rows.skipped++
			continue
		}
		keyByEntry[entry.ID] = key

		names := newStringSet()
		for _, n := range entry.Names {
			names.add(n)
		}
		synonyms := newStringSet()
		for _, sym := range entry.Symbols {
			synonyms.add(sym)
		}

		evidence := defaultEvidence
		for _, sym := range entry.Symbols {
			for _, rec := range bySymbol[NormalizeSymbol(sym)] {
				if rec.ObjectName != "" {
					names.add(rec.ObjectName)
				}
				synonyms.add(rec.ObjectSymbol)
				for _, syn := range rec.Synonyms {
					synonyms.add(syn)
				}
				if rec.EvidenceCode != "" {
					evidence = rec.EvidenceCode
				}

				// An annotation without a GO id or with an aspect code
				// outside the known vocabulary is malformed: no node, no
				// link, one skip per record regardless of how many
				// symbols it was indexed under.
				aspect, known := aspectMap[rec.Aspect]
				if rec.GOID == "" || !known || aspect == "" {
					mk := rec.ObjectID + "|" + rec.GOID + "|" + rec.Qualifier
					if !seenMalformed[mk] {
						seenMalformed[mk] = true
						rows.skipped++
					}
					continue
				}
				if !seenAnnotation[rec.GOID] {
					seenAnnotation[rec.GOID] = true
					rows.annotations = append(rows.annotations, map[string]any{
						"go_id":       rec.GOID,
						"qualifier":   rec.Qualifier,
						"name":        rec.GOLabel,
						"definition":  rec.GODefinition,
						"aspect":      aspect,
						"object_type": rec.ObjectType,
					})
				}
				linkKey := key + "|" + rec.GOID
				if !seenGoLink[linkKey] {
					seenGoLink[linkKey] = true
					rows.goLinks = append(rows.goLinks, map[string]any{
						"unique_id": key,
						"go_id":     rec.GOID,
					})
				}
			}
		}

		rows.genes = append(rows.genes, map[string]any{
			"unique_id": key,
			"names":     names.sorted(),
			"synonyms":  synonyms.sorted(),
		})
		rows.associations = append(rows.associations, map[string]any{
			"unique_id":  key,
			"disease_id": p.ID,
			"evidence":   evidence,
		})
	}

	seenInteraction := map[string]bool{}
	for _, inter := range p.Interactions {
		from, okFrom := keyByEntry[inter.Entry1]
		to, okTo := keyByEntry[inter.Entry2]
		if !okFrom || !okTo || inter.Type == "" {
			rows.skipped++
			continue
		}
		naturalKey := from + "|" + to + "|" + inter.Type
		if seenInteraction[naturalKey] {
			continue
		}
		seenInteraction[naturalKey] = true
		subtypes := inter.Subtypes
		if subtypes == nil {
			subtypes = []string{}
		}
		rows.interactions = append(rows.interactions, map[string]any{
			"from_id":  from,
			"to_id":    to,
			"type":     inter.Type,
			"subtypes": subtypes,
		})
	}

	return rows
}

// indexBySymbol keys every annotation record by its normalized object
// symbol and each of its synonyms, which is the join surface shared with
// the pathway graphics symbols.
func indexBySymbol(records []gaf.Record) map[string][]gaf.Record {
	out := make(map[string][]gaf.Record)
	add := func(sym string, rec gaf.Record) {
		norm := NormalizeSymbol(sym)
		if norm == "" {
			return
		}
		out[norm] = append(out[norm], rec)
	}
	for _, rec := range records {
		add(rec.ObjectSymbol, rec)
		for _, syn := range rec.Synonyms {
			add(syn, rec)
		}
	}
	return out
}

func (b *Builder) ensureConstraints(ctx context.Context, log *logger.Logger) error {
	session := b.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: b.client.Database,
	})
	defer session.Close(ctx)

	stmts := []string{
		`CREATE CONSTRAINT gene_unique_id IF NOT EXISTS FOR (g:Gene) REQUIRE g.unique_id IS UNIQUE`,
		`CREATE CONSTRAINT disease_id IF NOT EXISTS FOR (d:Disease) REQUIRE d.disease_id IS UNIQUE`,
		`CREATE CONSTRAINT go_annotation_id IF NOT EXISTS FOR (a:GO_Annotation) REQUIRE a.go_id IS UNIQUE`,
	}
	// Best-effort; may fail for restricted users.
	for _, stmt := range stmts {
		if res, err := session.Run(ctx, stmt, nil); err != nil {
			log.Warn("schema init failed (continuing)", "error", err)
		} else {
			_, _ = res.Consume(ctx)
		}
	}
	return nil
}

// statement is one parameterized write of a pathway import.
type statement struct {
	cypher string
	params map[string]any
}

// pathwayStatements lays out the upsert statements for one pathway. Every
// statement MERGEs on its natural key, so replaying the same rows creates
// nothing new. Empty row sets produce no statement.
func pathwayStatements(rows pathwayRows) []statement {
	stmts := []statement{{cypher: `
MERGE (d:Disease {disease_id: $disease_id})
SET d.name = $name
`, params: rows.disease}}

	if len(rows.genes) > 0 {
		stmts = append(stmts, statement{cypher: `
UNWIND $rows AS n
MERGE (g:Gene {unique_id: n.unique_id})
ON CREATE SET g.names = n.names, g.synonyms = n.synonyms
ON MATCH SET g.names = g.names + [x IN n.names WHERE NOT x IN g.names],
             g.synonyms = g.synonyms + [x IN n.synonyms WHERE NOT x IN g.synonyms]
`, params: map[string]any{"rows": rows.genes}})
	}

	if len(rows.annotations) > 0 {
		stmts = append(stmts, statement{cypher: `
UNWIND $rows AS n
MERGE (a:GO_Annotation {go_id: n.go_id})
SET a.qualifier = n.qualifier,
    a.name = n.name,
    a.definition = n.definition,
    a.aspect = n.aspect,
    a.object_type = n.object_type
`, params: map[string]any{"rows": rows.annotations}})
	}

	if len(rows.associations) > 0 {
		stmts = append(stmts, statement{cypher: `
UNWIND $rows AS r
MATCH (g:Gene {unique_id: r.unique_id})
MATCH (d:Disease {disease_id: r.disease_id})
MERGE (g)-[e:ASSOCIATED_WITH]->(d)
SET e.evidence = r.evidence
`, params: map[string]any{"rows": rows.associations}})
	}

	if len(rows.goLinks) > 0 {
		stmts = append(stmts, statement{cypher: `
UNWIND $rows AS r
MATCH (g:Gene {unique_id: r.unique_id})
MATCH (a:GO_Annotation {go_id: r.go_id})
MERGE (g)-[:HAS_GO_ANNOTATION]->(a)
`, params: map[string]any{"rows": rows.goLinks}})
	}

	if len(rows.interactions) > 0 {
		stmts = append(stmts, statement{cypher: `
UNWIND $rows AS r
MATCH (a:Gene {unique_id: r.from_id})
MATCH (b:Gene {unique_id: r.to_id})
MERGE (a)-[e:INTERACTS_WITH {type: r.type}]->(b)
SET e.subtypes = r.subtypes
`, params: map[string]any{"rows": rows.interactions}})
	}

	return stmts
}

func (b *Builder) writePathway(ctx context.Context, rows pathwayRows, report *ImportReport) error {
	session := b.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: b.client.Database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, stmt := range pathwayStatements(rows) {
			res, err := tx.Run(ctx, stmt.cypher, stmt.params)
			if err != nil {
				return nil, err
			}
			summary, err := res.Consume(ctx)
			if err != nil {
				return nil, err
			}
			counters := summary.Counters()
			report.NodesCreated += counters.NodesCreated()
			report.RelationshipsCreated += counters.RelationshipsCreated()
			report.PropertiesSet += counters.PropertiesSet()
		}
		return nil, nil
	})
	return err
}

type stringSet struct {
	seen  map[string]bool
	items []string
}

func newStringSet() *stringSet {
	return &stringSet{seen: map[string]bool{}}
}

func (s *stringSet) add(v string) {
	norm := NormalizeSymbol(v)
	if norm == "" || s.seen[norm] {
		return
	}
	s.seen[norm] = true
	s.items = append(s.items, v)
}

func (s *stringSet) sorted() []string {
	out := append([]string{}, s.items...)
	sort.Strings(out)
	return out
}
