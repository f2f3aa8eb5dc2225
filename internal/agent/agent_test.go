package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/evangelosroutis/hypothesis-generation/internal/graph"
	pkgerrors "github.com/evangelosroutis/hypothesis-generation/internal/pkg/errors"
)

func newTestAgent(t *testing.T, llm *scriptedLLM, store *fakeStore, annotations *fakeAnnotations) *Agent {
	t.Helper()
	log := testLogger(t)
	synth := NewQuerySynthesizer(llm, graph.SchemaDescription, log)
	return New(
		NewClassifier(llm, log),
		synth,
		NewExecutor(store, synth, 1, time.Second, log),
		NewEnricher(annotations, &fakeEmbedder{vector: []float32{1, 0}}, testMeanings(), 2, time.Second, log),
		NewAnswerSynthesizer(llm, log),
		log,
	)
}

func TestAskDiseaseAssociation(t *testing.T) {
	llm := &scriptedLLM{responses: []string{
		"disease_association",
		"MATCH (g:Gene)-[:ASSOCIATED_WITH]->(d:Disease) RETURN g, d",
		"Yes, GNAI1 is associated with Parkinson disease via pathway 05012.",
	}}
	store := &fakeStore{fn: func(string) ([]map[string]any, error) {
		return []map[string]any{{
			"gene":    "GNAI1",
			"disease": "Parkinson disease",
			"pathway": "05012",
		}}, nil
	}}

	a := newTestAgent(t, llm, store, annotatedFixture())
	answer, err := a.Ask(context.Background(), "Is gene GNAI1 associated with Parkinson disease?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if !strings.Contains(answer, "GNAI1") || !strings.Contains(answer, "05012") {
		t.Fatalf("expected answer to affirm the association and name the pathway, got %q", answer)
	}
	// Classification, synthesis, answer rendering: one completion each.
	if len(llm.systems) != 3 {
		t.Fatalf("expected 3 completion calls, got %d", len(llm.systems))
	}
	// The answer prompt must carry the retrieved rows.
	if !strings.Contains(llm.systems[2], "Parkinson disease") {
		t.Fatalf("expected retrieved facts in the answer prompt")
	}
}

func TestAskNoResultsReturnsNotFound(t *testing.T) {
	llm := &scriptedLLM{responses: []string{
		"disease_association",
		"MATCH (g:Gene)-[:ASSOCIATED_WITH]->(d:Disease) RETURN g, d",
	}}
	store := &fakeStore{fn: func(string) ([]map[string]any, error) {
		return []map[string]any{}, nil
	}}

	a := newTestAgent(t, llm, store, annotatedFixture())
	answer, err := a.Ask(context.Background(), "Is gene BRCA1 associated with Alzheimer disease?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if answer != NotFoundAnswer {
		t.Fatalf("expected fixed not-found answer, got %q", answer)
	}
	if len(llm.systems) != 2 {
		t.Fatalf("expected no answer-rendering completion for empty results, got %d calls", len(llm.systems))
	}
}

func TestAskDownstreamEnrichesBeforeAnswer(t *testing.T) {
	llm := &scriptedLLM{responses: []string{
		"downstream_interaction",
		"MATCH path = (g:Gene)-[:INTERACTS_WITH*]->(t:Gene) RETURN collect(...) AS interactions",
		"PARK7 activates GNAI1 (oxidoreductase activity).",
	}}
	store := &fakeStore{fn: func(string) ([]map[string]any, error) {
		return []map[string]any{{
			"interactions": []any{
				[]any{
					map[string]any{
						"start":    map[string]any{"unique_id": "05012_11", "names": []any{"PARK7"}},
						"end":      map[string]any{"unique_id": "05012_10", "names": []any{"GNAI1"}},
						"type":     "PPrel",
						"subtypes": []any{"activation"},
					},
				},
			},
		}}, nil
	}}

	a := newTestAgent(t, llm, store, annotatedFixture())
	answer, err := a.Ask(context.Background(), "What are the downstream interactions of PARK7?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if !strings.Contains(answer, "PARK7") {
		t.Fatalf("unexpected answer: %q", answer)
	}
	// The answer prompt must see the enriched path, not the raw rows: every
	// edge carries its annotation line before rendering.
	prompt := llm.systems[2]
	if !strings.Contains(prompt, "PARK7 -> GNAI1") {
		t.Fatalf("expected formatted path in the answer prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "annotation:") || !strings.Contains(prompt, "oxidoreductase activity") {
		t.Fatalf("expected annotation-derived description in the answer prompt:\n%s", prompt)
	}
}

func TestAskQueryFailureAnswer(t *testing.T) {
	llm := &scriptedLLM{responses: []string{
		"disease_association",
		"MTCH (g) RETURN g",
		"MTCH (g) RETURN g", // correction attempt, still broken
	}}
	store := &fakeStore{fn: func(string) ([]map[string]any, error) {
		return nil, errors.New("Invalid input 'MTCH'")
	}}

	a := newTestAgent(t, llm, store, annotatedFixture())
	answer, err := a.Ask(context.Background(), "Is gene GNAI1 associated with Parkinson disease?")
	if !errors.Is(err, pkgerrors.ErrRetryBudgetExhausted) {
		t.Fatalf("expected ErrRetryBudgetExhausted, got %v", err)
	}
	if answer != QueryFailureAnswer {
		t.Fatalf("expected fixed query-failure answer, got %q", answer)
	}
}

func TestAskAmbiguousQuestion(t *testing.T) {
	llm := &scriptedLLM{responses: []string{"unknown"}}
	store := &fakeStore{fn: func(string) ([]map[string]any, error) {
		t.Fatal("store must not be queried for an unclassifiable question")
		return nil, nil
	}}

	a := newTestAgent(t, llm, store, annotatedFixture())
	if _, err := a.Ask(context.Background(), "What is the meaning of life?"); !errors.Is(err, pkgerrors.ErrClassificationAmbiguous) {
		t.Fatalf("expected ErrClassificationAmbiguous, got %v", err)
	}
}
