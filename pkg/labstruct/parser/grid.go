package parser

import (
	"github.com/ukaji3/labstruct-go/pkg/labstruct/models"
)

// DropEmptyColumns removes columns whose body cells are all missing.
func DropEmptyColumns(f models.Frame) models.Frame {
	keep := make([]int, 0, len(f.Columns))
	for col := range f.Columns {
		if countPresent(f.Rows, col) > 0 {
			keep = append(keep, col)
		}
	}
	if len(keep) == len(f.Columns) {
		return f
	}
	return f.SelectColumns(keep)
}

// JunkColumnCount returns how many trailing columns are padding, judged by
// the most frequent present value in row. A value seen once means no padding;
// a value seen n > 1 times means n+1 padding columns. A row with no present
// value yields 1.
func JunkColumnCount(row []models.Cell) int {
	counts := make(map[string]int, len(row))
	most := 0
	for _, cell := range row {
		if cell.IsMissing() {
			continue
		}
		counts[cell.Text]++
		if counts[cell.Text] > most {
			most = counts[cell.Text]
		}
	}
	if most == 0 {
		return 1
	}
	if most != 1 {
		most++
	}
	return most
}

// DropJunkColumns removes the trailing padding columns found by
// JunkColumnCount on the first body row. The last column always survives.
func DropJunkColumns(f models.Frame) models.Frame {
	n := len(f.Columns)
	if n == 0 || len(f.Rows) == 0 {
		return f
	}
	count := JunkColumnCount(f.Rows[0])
	if count <= 1 {
		return f
	}

	keep := make([]int, 0, n)
	for col := 0; col < n-count; col++ {
		keep = append(keep, col)
	}
	keep = append(keep, n-1)

	log.Debug("dropping junk columns", "count", count, "columns", n, "kept", len(keep))
	return f.SelectColumns(keep)
}

// countPresent counts present cells of one column.
func countPresent(rows [][]models.Cell, col int) int {
	count := 0
	for _, row := range rows {
		if col < len(row) && !row[col].IsMissing() {
			count++
		}
	}
	return count
}
