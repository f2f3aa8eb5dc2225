package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/evangelosroutis/hypothesis-generation/internal/platform/logger"
)

// NotFoundAnswer is the fixed response for questions the graph holds no
// facts for. It is returned without a completion call so an empty result
// can never be embellished.
const NotFoundAnswer = "I could not find the answer in the database. Please try again."

// AnswerSynthesizer renders retrieved facts plus the original question into
// a natural-language answer grounded strictly in those facts.
type AnswerSynthesizer struct {
	llm TextGenerator
	log *logger.Logger
}

func NewAnswerSynthesizer(llm TextGenerator, log *logger.Logger) *AnswerSynthesizer {
	return &AnswerSynthesizer{llm: llm, log: log.With("service", "AnswerSynthesizer")}
}

func (a *AnswerSynthesizer) Render(ctx context.Context, category Category, question, facts string) (string, error) {
	if strings.TrimSpace(facts) == "" {
		return NotFoundAnswer, nil
	}
	bundle, err := bundleFor(category)
	if err != nil {
		return "", err
	}
	system := fmt.Sprintf(bundle.answer, facts, question)
	answer, err := a.llm.GenerateText(ctx, system, question)
	if err != nil {
		return "", fmt.Errorf("render answer: %w", err)
	}
	return answer, nil
}

// FormatRows serializes association query rows for the answer prompt.
// Empty input formats to the empty string, which Render treats as
// not-found.
func FormatRows(rows []map[string]any) string {
	if len(rows) == 0 {
		return ""
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return ""
	}
	return string(data)
}

// FormatPaths renders enriched downstream paths as numbered step lists.
func FormatPaths(paths [][]EnrichedInteraction) string {
	if len(paths) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, path := range paths {
		fmt.Fprintf(&sb, "Path %d:\n", i+1)
		for j, step := range path {
			fmt.Fprintf(&sb, "  %d. %s -> %s (type: %s", j+1,
				strings.Join(step.StartNames, "/"),
				strings.Join(step.EndNames, "/"),
				step.Type)
			if len(step.Subtypes) > 0 {
				fmt.Fprintf(&sb, ", subtypes: %s", strings.Join(step.Subtypes, ", "))
			}
			fmt.Fprintf(&sb, ")\n     annotation: %s\n", step.Description)
		}
	}
	return sb.String()
}
