package parser

import (
	"errors"
	"fmt"
)

// ErrMissingReferenceColumn indicates no column name matches the reference-range label.
var ErrMissingReferenceColumn = errors.New("no reference-range column detected")

// ErrAmbiguousReferenceColumn indicates more than one column name matches the reference-range label.
var ErrAmbiguousReferenceColumn = errors.New("more than one reference-range column detected")

// ErrMissingResultsColumn indicates the table has no RESULTADOS column.
var ErrMissingResultsColumn = errors.New("no results column detected")

// ErrTableTooNarrow indicates a table without canonical headers has too few
// columns to synthesize them.
var ErrTableTooNarrow = errors.New("table too narrow for synthesized header")

// ReferenceColumnError reports a violated reference-column precondition.
type ReferenceColumnError struct {
	Candidates []string
	Err        error // ErrMissingReferenceColumn or ErrAmbiguousReferenceColumn
}

func (e *ReferenceColumnError) Error() string {
	if len(e.Candidates) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: candidates %q", e.Err, e.Candidates)
}

func (e *ReferenceColumnError) Unwrap() error {
	return e.Err
}
