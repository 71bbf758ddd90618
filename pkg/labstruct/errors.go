package labstruct

import (
	"errors"
	"fmt"

	"github.com/ukaji3/labstruct-go/pkg/labstruct/parser"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrFileTooLarge indicates the input file exceeds Options.MaxFileSize.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// ErrDocumentOpen indicates the content is not a readable PDF document.
var ErrDocumentOpen = errors.New("document could not be opened")

// Structural errors raised while assembling the exam table.
var (
	ErrMissingReferenceColumn   = parser.ErrMissingReferenceColumn
	ErrAmbiguousReferenceColumn = parser.ErrAmbiguousReferenceColumn
	ErrMissingResultsColumn     = parser.ErrMissingResultsColumn
)

// ReferenceColumnError reports the candidate columns of a violated
// reference-column check.
type ReferenceColumnError = parser.ReferenceColumnError

// ExtractionError represents a page or table that was skipped during extraction.
type ExtractionError struct {
	Page      int    // 1-based
	Table     int    // 1-based detection order within the page, 0 for the whole page
	Component string // "locate" or "reconcile"
	Err       error
}

func (e *ExtractionError) Error() string {
	if e.Table == 0 {
		return fmt.Sprintf("extraction error on page %d (%s): %v", e.Page, e.Component, e.Err)
	}
	return fmt.Sprintf("extraction error on page %d table %d (%s): %v", e.Page, e.Table, e.Component, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError creates a new ExtractionError.
func NewExtractionError(page, table int, component string, err error) *ExtractionError {
	return &ExtractionError{
		Page:      page,
		Table:     table,
		Component: component,
		Err:       err,
	}
}
