package graph

import (
	"fmt"
	"strings"

	pkgerrors "github.com/evangelosroutis/hypothesis-generation/internal/pkg/errors"
)

// MergeKey returns the canonical Gene merge key for a pathway entry. The
// same (pathway, entry) pair always resolves to the same key, so repeated
// imports upsert instead of duplicating.
func MergeKey(pathwayID, entryID string) (string, error) {
	pathwayID = strings.TrimSpace(pathwayID)
	entryID = strings.TrimSpace(entryID)
	if pathwayID == "" || entryID == "" {
		return "", fmt.Errorf("merge key for pathway %q entry %q: %w", pathwayID, entryID, pkgerrors.ErrMissingIdentifier)
	}
	return pathwayID + "_" + entryID, nil
}

// NormalizeSymbol folds a gene symbol or synonym to its join form. Pathway
// graphics symbols and annotation synonyms are matched through this, so it
// must be applied to both sides.
func NormalizeSymbol(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "...")
	return strings.ToUpper(s)
}
