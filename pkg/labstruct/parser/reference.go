package parser

import (
	"errors"
	"strings"

	"github.com/ukaji3/labstruct-go/pkg/labstruct/models"
)

// Unit texts produced by the reference parser.
const (
	UnitNotFound          = "Não encontrado pela IA..."
	UnitTraditionalResult = "Ver resultado tradicional"
)

var errReferenceFormat = errors.New("unexpected reference text layout")

// ReferenceText is the textual form of a parsed reference range.
type ReferenceText struct {
	Lower models.Cell
	Upper models.Cell
	Unit  models.Cell
}

// Reference is a reference range with numeric bounds.
type Reference struct {
	Lower *float64
	Upper *float64
	Unit  *string
}

// referenceRule pairs a predicate over the cleaned cell text with the
// extractor that reads bounds from it.
type referenceRule struct {
	name    string
	match   func(text string) bool
	extract func(text string) (ReferenceText, error)
}

// referenceRules are evaluated in order; the first match wins.
var referenceRules = []referenceRule{
	{"inferior a", containsFn("inferior a "), extractInferiorA},
	{"interval", containsFn(" a "), extractInterval},
	{"traditional result", containsFn(UnitTraditionalResult), extractTraditional},
	{"fasting", containsFn("jejum"), extractFasting},
	{"menor que", containsFoldFn("menor que "), lowerAfter("enor que ")},
	{"maior que", containsFoldFn("maior que "), upperAfter("aior que ")},
	{"less than", containsFn("< "), lowerAfter("< ")},
	{"greater than", containsFn("> "), upperAfter("> ")},
	{"até", containsFoldFn("até"), upperAfter("té ")},
}

// ParseReferenceText reads lower bound, upper bound and unit from a
// reference-range text. Missing cells and the "----" placeholder yield three
// missing values; text no rule recognizes yields the not-found unit. A text
// a rule recognizes but cannot split as expected yields three missing values.
func ParseReferenceText(cell models.Cell) ReferenceText {
	if cell.IsMissing() || cell.Text == noValueMarker {
		return ReferenceText{}
	}
	text := strings.ReplaceAll(cell.Text, "De", "")

	for _, rule := range referenceRules {
		if !rule.match(text) {
			continue
		}
		ref, err := rule.extract(text)
		if err != nil {
			log.Debug("reference text not parsed", "rule", rule.name, "text", cell.Text, "error", err)
			return ReferenceText{}
		}
		return ref
	}
	return ReferenceText{Unit: models.Text(UnitNotFound)}
}

// ParseReference parses a reference-range text and converts its bounds with
// ParseLocaleNumber. Non-numeric bounds become nil.
func ParseReference(cell models.Cell) Reference {
	text := ParseReferenceText(cell)
	return Reference{
		Lower: numericBound(text.Lower),
		Upper: numericBound(text.Upper),
		Unit:  text.Unit.Ptr(),
	}
}

func numericBound(c models.Cell) *float64 {
	if c.IsMissing() {
		return nil
	}
	f, ok := ParseLocaleNumber(c.Text)
	if !ok {
		return nil
	}
	return &f
}

func extractInferiorA(text string) (ReferenceText, error) {
	return lowerAfter("inferior a ")(text)
}

func extractInterval(text string) (ReferenceText, error) {
	lower, rest, err := splitPair(text, " a ")
	if err != nil {
		return ReferenceText{}, err
	}
	lower = strings.TrimSpace(lower)
	if strings.Contains(lower, ":") {
		if lower, err = field(lower, ":", 1); err != nil {
			return ReferenceText{}, err
		}
	}

	ref := ReferenceText{Lower: models.Text(lower), Unit: models.Text(UnitNotFound)}
	switch {
	case strings.Contains(rest, " "):
		upper, unit, err := splitPair(rest, " ")
		if err != nil {
			return ReferenceText{}, err
		}
		ref.Upper = models.Text(strings.TrimSpace(upper))
		ref.Unit = models.Text(unit)
	case strings.Contains(rest, "/"):
		upper, unit, err := splitPair(rest, "/")
		if err != nil {
			return ReferenceText{}, err
		}
		ref.Upper = models.Text(strings.TrimSpace(upper))
		ref.Unit = models.Text("/" + unit)
	}
	return ref, nil
}

func extractTraditional(string) (ReferenceText, error) {
	return ReferenceText{Unit: models.Text(UnitTraditionalResult)}, nil
}

// extractFasting handles texts with separate fasting and non-fasting lines.
// Two lines: the non-fasting line is checked for "<" phrasing before the
// fasting line, then the same for ">". Four lines: lower, unit, upper and a
// trailing line, with operators stripped only when both bound lines share
// one; bound lines using different operators are returned as they are.
// Bound lines that both say "maior que" are split on "enor que", which never
// matches, so such texts come back empty.
func extractFasting(text string) (ReferenceText, error) {
	lines := strings.Split(text, "\n")
	switch len(lines) {
	case 2:
		return extractFastingPair(lines[0], lines[1])
	case 4:
		return extractFastingBlock(lines)
	default:
		return ReferenceText{}, errReferenceFormat
	}
}

func extractFastingPair(fasting, nonFasting string) (ReferenceText, error) {
	switch {
	case containsFold(nonFasting, "menor que ") || strings.Contains(nonFasting, "< "):
		if strings.Contains(nonFasting, "< ") {
			return lowerAfter("< ")(nonFasting)
		}
		return lowerAfter("enor que ")(nonFasting)
	case containsFold(fasting, "menor que ") || strings.Contains(fasting, "< "):
		return upperAfter("enor que ")(fasting)
	case containsFold(nonFasting, "maior que ") || strings.Contains(nonFasting, "> "):
		if strings.Contains(nonFasting, "> ") {
			return lowerAfter("> ")(nonFasting)
		}
		return lowerAfter("aior que ")(nonFasting)
	case containsFold(fasting, "maior que ") || strings.Contains(fasting, "> "):
		return upperAfter("aior que ")(fasting)
	}
	return ReferenceText{Unit: models.Text(UnitNotFound)}, nil
}

func extractFastingBlock(lines []string) (ReferenceText, error) {
	lower, unit, upper := lines[0], lines[1], lines[2]
	var err error

	strip := func(sep string) error {
		if lower, err = field(lower, sep, 1); err != nil {
			return err
		}
		if upper, err = field(upper, sep, 1); err != nil {
			return err
		}
		lower, upper = strings.TrimSpace(lower), strings.TrimSpace(upper)
		return nil
	}

	if containsFold(lower, "menor que ") && containsFold(upper, "menor que ") {
		if err := strip("enor que "); err != nil {
			return ReferenceText{}, err
		}
	}
	if containsFold(lower, "maior que ") && containsFold(upper, "maior que ") {
		if err := strip("enor que "); err != nil {
			return ReferenceText{}, err
		}
	}
	if strings.Contains(lower, "< ") && strings.Contains(upper, "< ") {
		if err := strip("< "); err != nil {
			return ReferenceText{}, err
		}
	}
	if strings.Contains(lower, "> ") && strings.Contains(upper, "> ") {
		if err := strip("> "); err != nil {
			return ReferenceText{}, err
		}
	}
	return ReferenceText{
		Lower: models.Text(lower),
		Upper: models.Text(upper),
		Unit:  models.Text(unit),
	}, nil
}

// lowerAfter reads "<value> <unit>" following sep into the lower bound.
func lowerAfter(sep string) func(string) (ReferenceText, error) {
	return func(text string) (ReferenceText, error) {
		value, unit, err := valueAndUnit(text, sep)
		if err != nil {
			return ReferenceText{}, err
		}
		return ReferenceText{Lower: models.Text(value), Unit: models.Text(unit)}, nil
	}
}

// upperAfter reads "<value> <unit>" following sep into the upper bound.
func upperAfter(sep string) func(string) (ReferenceText, error) {
	return func(text string) (ReferenceText, error) {
		value, unit, err := valueAndUnit(text, sep)
		if err != nil {
			return ReferenceText{}, err
		}
		return ReferenceText{Upper: models.Text(value), Unit: models.Text(unit)}, nil
	}
}

func valueAndUnit(text, sep string) (string, string, error) {
	rest, err := field(text, sep, 1)
	if err != nil {
		return "", "", err
	}
	return splitPair(rest, " ")
}

// field returns the i-th piece of s split on sep.
func field(s, sep string, i int) (string, error) {
	parts := strings.Split(s, sep)
	if i >= len(parts) {
		return "", errReferenceFormat
	}
	return parts[i], nil
}

// splitPair splits s on sep into exactly two pieces.
func splitPair(s, sep string) (string, string, error) {
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return "", "", errReferenceFormat
	}
	return parts[0], parts[1], nil
}

func containsFn(substr string) func(string) bool {
	return func(s string) bool { return strings.Contains(s, substr) }
}

func containsFoldFn(substr string) func(string) bool {
	return func(s string) bool { return containsFold(s, substr) }
}

// containsFold reports whether the lower-cased s contains substr.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
