package agent

import (
	"fmt"
	"strings"

	pkgerrors "github.com/evangelosroutis/hypothesis-generation/internal/pkg/errors"
)

// Category is one of the two question intents the agent supports.
type Category string

const (
	CategoryDiseaseAssociation    Category = "disease_association"
	CategoryDownstreamInteraction Category = "downstream_interaction"
)

// ParseCategory maps a classifier label onto a known category. Labels are
// matched on the distinguishing word so minor phrasing drift in the
// completion does not break routing; anything else is ambiguous and is
// surfaced instead of guessing a default.
func ParseCategory(label string) (Category, error) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	switch {
	case strings.Contains(normalized, "disease"):
		return CategoryDiseaseAssociation, nil
	case strings.Contains(normalized, "downstream"):
		return CategoryDownstreamInteraction, nil
	default:
		return "", fmt.Errorf("label %q: %w", label, pkgerrors.ErrClassificationAmbiguous)
	}
}
