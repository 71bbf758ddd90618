package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/ukaji3/labstruct-go/pkg/labstruct/models"
)

// Result cell markers.
const (
	footnoteMarker   = "(1)"
	ageVariantMarker = "(*)"
	noValueMarker    = "----"
)

// ParseLocaleNumber converts a number written with "." thousands separators
// and a "," decimal separator. It reports false when s is not a finite number.
func ParseLocaleNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseResult parses a RESULTADOS cell. Footnote, age-variance and no-value
// markers are stripped first; ageVariant reports whether the (*) marker was
// present. value is nil for missing or non-numeric cells.
func ParseResult(cell models.Cell) (value *float64, ageVariant bool) {
	if cell.IsMissing() {
		return nil, false
	}
	text := strings.ReplaceAll(cell.Text, footnoteMarker, "")
	if strings.Contains(text, ageVariantMarker) {
		text = strings.ReplaceAll(text, ageVariantMarker, "")
		ageVariant = true
	}
	text = strings.ReplaceAll(text, noValueMarker, "")

	if f, ok := ParseLocaleNumber(text); ok {
		value = &f
	}
	return value, ageVariant
}
