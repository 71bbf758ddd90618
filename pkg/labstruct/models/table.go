package models

import (
	"fmt"
)

// RawTable is a grid of cells as detected on one page. Row 0 is the header
// row reported by the layout engine.
type RawTable struct {
	// Page is the 0-based page index the table was found on.
	Page int `json:"page"`
	// Index is the detection order within the page.
	Index int `json:"index"`
	// Rows holds the detected cells, header row first.
	Rows [][]Cell `json:"-"`
}

// Width returns the widest row length.
func (t RawTable) Width() int {
	w := 0
	for _, row := range t.Rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// Frame converts the grid into a column-labelled frame. Header texts become
// column names: empty names are replaced with Col{i}, and when any name is
// repeated every non-placeholder name is prefixed with its position.
// Ragged rows are padded with missing cells.
func (t RawTable) Frame() Frame {
	if len(t.Rows) == 0 {
		return Frame{}
	}
	width := t.Width()

	names := make([]string, width)
	seen := make(map[string]int, width)
	duplicated := false
	for i := 0; i < width; i++ {
		var name string
		if i < len(t.Rows[0]) && t.Rows[0][i].Valid {
			name = t.Rows[0][i].Text
		}
		if name == "" {
			name = fmt.Sprintf("Col%d", i)
		}
		names[i] = name
		seen[name]++
		if seen[name] > 1 {
			duplicated = true
		}
	}
	if duplicated {
		for i, name := range names {
			if name != fmt.Sprintf("Col%d", i) {
				names[i] = fmt.Sprintf("%d-%s", i, name)
			}
		}
	}

	body := make([][]Cell, 0, len(t.Rows)-1)
	for _, row := range t.Rows[1:] {
		body = append(body, padRow(row, width))
	}
	return Frame{Columns: names, Rows: body}
}

// Frame is a table with named columns. Header holds the working header row
// once reconciliation has promoted it out of the body.
type Frame struct {
	Columns []string
	Header  []Cell
	Rows    [][]Cell
}

// Empty reports whether the frame has no body rows or no columns.
func (f Frame) Empty() bool {
	return len(f.Rows) == 0 || len(f.Columns) == 0
}

// Index returns the position of the named column, or -1.
func (f Frame) Index(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// SelectColumns returns a frame restricted to the given column positions.
func (f Frame) SelectColumns(idx []int) Frame {
	out := Frame{Columns: make([]string, len(idx))}
	for j, i := range idx {
		out.Columns[j] = f.Columns[i]
	}
	if f.Header != nil {
		out.Header = make([]Cell, len(idx))
		for j, i := range idx {
			out.Header[j] = f.Header[i]
		}
	}
	out.Rows = make([][]Cell, len(f.Rows))
	for r, row := range f.Rows {
		sel := make([]Cell, len(idx))
		for j, i := range idx {
			sel[j] = row[i]
		}
		out.Rows[r] = sel
	}
	return out
}

func padRow(row []Cell, width int) []Cell {
	out := make([]Cell, width)
	copy(out, row)
	return out
}
