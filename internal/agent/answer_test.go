package agent

import (
	"context"
	"strings"
	"testing"
)

func TestRenderEmptyFactsSkipsCompletion(t *testing.T) {
	llm := &scriptedLLM{}
	a := NewAnswerSynthesizer(llm, testLogger(t))

	answer, err := a.Render(context.Background(), CategoryDiseaseAssociation, "Is GNAI1 linked to Parkinson disease?", "  \n")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if answer != NotFoundAnswer {
		t.Fatalf("expected fixed not-found answer, got %q", answer)
	}
	if len(llm.systems) != 0 {
		t.Fatalf("expected no completion call for empty facts, got %d", len(llm.systems))
	}
}

func TestRenderGroundsPromptInFacts(t *testing.T) {
	llm := &scriptedLLM{responses: []string{"Yes, GNAI1 is associated with Parkinson disease (pathway 05012)."}}
	a := NewAnswerSynthesizer(llm, testLogger(t))

	facts := `[{"gene":"GNAI1","disease":"Parkinson disease","pathway":"05012"}]`
	answer, err := a.Render(context.Background(), CategoryDiseaseAssociation, "Is GNAI1 linked to Parkinson disease?", facts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(answer, "GNAI1") {
		t.Fatalf("unexpected answer: %q", answer)
	}
	if len(llm.systems) != 1 {
		t.Fatalf("expected exactly one completion call, got %d", len(llm.systems))
	}
	if !strings.Contains(llm.systems[0], facts) {
		t.Fatalf("expected facts in the answer prompt")
	}
	if !strings.Contains(llm.systems[0], "Is GNAI1 linked to Parkinson disease?") {
		t.Fatalf("expected question in the answer prompt")
	}
}

func TestFormatRows(t *testing.T) {
	if got := FormatRows(nil); got != "" {
		t.Fatalf("expected empty string for no rows, got %q", got)
	}
	got := FormatRows([]map[string]any{{"gene": "GNAI1"}})
	if !strings.Contains(got, `"gene":"GNAI1"`) {
		t.Fatalf("unexpected serialization: %q", got)
	}
}

func TestFormatPaths(t *testing.T) {
	if got := FormatPaths(nil); got != "" {
		t.Fatalf("expected empty string for no paths, got %q", got)
	}

	paths := [][]EnrichedInteraction{{
		{
			Interaction: Interaction{
				StartNames: []string{"PARK7"},
				EndNames:   []string{"GNAI1"},
				Type:       "PPrel",
				Subtypes:   []string{"activation"},
			},
			Description: "enables oxidoreductase activity",
		},
		{
			Interaction: Interaction{
				StartNames: []string{"GNAI1"},
				EndNames:   []string{"ADCY5"},
				Type:       "PPrel",
			},
			Description: NoAnnotationMarker,
		},
	}}

	got := FormatPaths(paths)
	for _, want := range []string{
		"Path 1:",
		"1. PARK7 -> GNAI1 (type: PPrel, subtypes: activation)",
		"annotation: enables oxidoreductase activity",
		"2. GNAI1 -> ADCY5 (type: PPrel)",
		"annotation: " + NoAnnotationMarker,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("formatted paths missing %q:\n%s", want, got)
		}
	}
}
