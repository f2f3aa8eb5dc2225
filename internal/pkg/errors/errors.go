package errors

import "errors"

var (
	// ErrMissingIdentifier marks a source record without the identifiers
	// its merge key needs; the importer skips and counts it.
	ErrMissingIdentifier = errors.New("missing identifier")
	// ErrClassificationAmbiguous marks an intent label outside the known
	// question categories.
	ErrClassificationAmbiguous = errors.New("classification ambiguous")
	// ErrRetryBudgetExhausted marks a query whose correction retries ran out.
	ErrRetryBudgetExhausted = errors.New("retry budget exhausted")
)
