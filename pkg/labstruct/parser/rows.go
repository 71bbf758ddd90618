package parser

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/ukaji3/labstruct-go/pkg/labstruct/models"
)

// referenceLabel is matched case-insensitively against column names.
const referenceLabel = "valores de referência"

// foldText lower-cases s with Portuguese rules. Casers keep state, so each
// call gets its own.
func foldText(s string) string {
	return cases.Lower(language.BrazilianPortuguese).String(norm.NFC.String(s))
}

// ReferenceColumns returns the column names containing the reference-range label.
func ReferenceColumns(columns []string) []string {
	want := foldText(referenceLabel)
	var out []string
	for _, name := range columns {
		if strings.Contains(foldText(name), want) {
			out = append(out, name)
		}
	}
	return out
}

// ResolveReferenceColumn returns the single reference-range column, or a
// *ReferenceColumnError when there is none or more than one.
func ResolveReferenceColumn(columns []string) (string, error) {
	candidates := ReferenceColumns(columns)
	switch len(candidates) {
	case 1:
		return candidates[0], nil
	case 0:
		return "", &ReferenceColumnError{Err: ErrMissingReferenceColumn}
	default:
		return "", &ReferenceColumnError{Candidates: candidates, Err: ErrAmbiguousReferenceColumn}
	}
}

// Prune keeps the records whose analyte, result and reference cells are all present.
func Prune(records []models.Record, referenceColumn string) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, rec := range records {
		if rec.Get(models.ColumnAnalytes).IsMissing() ||
			rec.Get(models.ColumnResults).IsMissing() ||
			rec.Get(referenceColumn).IsMissing() {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// SortByVisit orders records by date then ficha, ascending. Records without
// a date or ficha sort after those with one. Ties keep their order.
func SortByVisit(records []models.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return visitLess(records[i], records[j])
	})
}

func visitLess(a, b models.Record) bool {
	switch {
	case a.Date == nil && b.Date == nil:
	case a.Date == nil:
		return false
	case b.Date == nil:
		return true
	case !a.Date.Equal(*b.Date):
		return a.Date.Before(*b.Date)
	}

	switch {
	case a.Ficha.IsMissing():
		return false
	case b.Ficha.IsMissing():
		return true
	}
	return a.Ficha.Text < b.Ficha.Text
}
