package parser

import (
	"github.com/ukaji3/labstruct-go/pkg/labstruct/models"
)

// row builds a cell row; nil entries are missing cells.
func row(values ...any) []models.Cell {
	out := make([]models.Cell, len(values))
	for i, v := range values {
		if s, ok := v.(string); ok {
			out[i] = models.Text(s)
		}
	}
	return out
}

func texts(cells []models.Cell) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		if c.Valid {
			out[i] = c.Text
		}
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}
