package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ukaji3/labstruct-go/pkg/labstruct/models"
)

// CanonicalColumns are the header labels that mark a correctly detected header.
var CanonicalColumns = []string{
	models.ColumnAnalytes,
	models.ColumnResults,
	models.ColumnReference,
}

var placeholderPattern = regexp.MustCompile(`Col\d`)

// HasCanonicalHeader reports whether any name equals a canonical column.
func HasCanonicalHeader(names []string) bool {
	for _, name := range names {
		for _, canonical := range CanonicalColumns {
			if name == canonical {
				return true
			}
		}
	}
	return false
}

// SyntheticColumns returns ANALITOS, RESULTADOS, Col2..Col(n-2) and
// VALORES DE REFERÊNCIA for n columns.
func SyntheticColumns(n int) []string {
	names := []string{models.ColumnAnalytes, models.ColumnResults}
	for i := 2; i < n-1; i++ {
		names = append(names, fmt.Sprintf("Col%d", i))
	}
	return append(names, models.ColumnReference)
}

// ReconcileHeader settles the column names of a normalized frame and promotes
// its first row to the working header.
//
// Column names have newlines replaced by spaces. When none of them is a
// canonical column, the detected header is assumed to be a data row: the
// frame gets synthetic names and the old header (spaces turned back into
// newlines, Col placeholders removed) is pushed in front of the rows.
//
// A frame with no rows left below the working header comes back empty.
func ReconcileHeader(f models.Frame) (models.Frame, error) {
	names := make([]string, len(f.Columns))
	for i, name := range f.Columns {
		names[i] = strings.ReplaceAll(name, "\n", " ")
	}

	rows := f.Rows
	if !HasCanonicalHeader(names) {
		if len(names) < 3 {
			return models.Frame{}, fmt.Errorf("%w: %d columns", ErrTableTooNarrow, len(names))
		}
		demoted := make([]models.Cell, len(names))
		for i, name := range names {
			restored := strings.ReplaceAll(name, " ", "\n")
			demoted[i] = models.Text(placeholderPattern.ReplaceAllString(restored, ""))
		}
		log.Debug("synthesizing header", "columns", len(names), "demoted", names)
		names = SyntheticColumns(len(names))
		rows = append([][]models.Cell{demoted}, rows...)
	}

	if len(rows) < 2 {
		return models.Frame{}, nil
	}
	return models.Frame{
		Columns: names,
		Header:  rows[0],
		Rows:    rows[1:],
	}, nil
}
