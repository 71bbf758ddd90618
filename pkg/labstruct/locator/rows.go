package locator

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/ukaji3/labstruct-go/pkg/labstruct/models"
)

// wrapLeading is the largest baseline distance, in font sizes, between a
// line and the wrapped line below it.
const wrapLeading = 1.25

// RowsEngine detects whitespace-aligned tables from the positioned glyphs of
// each page. A line with fewer cells than a table row, set tight below a
// row, is wrapped text of that row.
type RowsEngine struct {
	config Config
}

// NewRowsEngine creates a rows engine.
func NewRowsEngine(cfg Config) *RowsEngine {
	return &RowsEngine{config: cfg}
}

func (e *RowsEngine) Name() string { return EngineRows }

func (e *RowsEngine) Open(content []byte) (Document, error) {
	if len(content) == 0 {
		return nil, ErrEmptyDocument
	}
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}
	return &rowsDocument{reader: r, config: e.config}, nil
}

type rowsDocument struct {
	reader *pdf.Reader
	config Config
}

func (d *rowsDocument) PageCount() int {
	return d.reader.NumPage()
}

func (d *rowsDocument) FindTables(index int) (tables []models.RawTable, err error) {
	// The reader panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			tables, err = nil, fmt.Errorf("page %d: %v", index+1, r)
		}
	}()

	page := d.reader.Page(index + 1)
	if page.V.IsNull() {
		return nil, nil
	}

	content := page.Content()
	glyphs := make([]glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, glyph{x: t.X, y: t.Y, w: t.W, size: t.FontSize, text: t.S})
	}
	lines := textLines(visible(glyphs), d.config.AlignmentTolerance, d.config.MaxCellGap)

	tables = groupTables(lines, d.config)
	for i := range tables {
		tables[i].Page = index
		tables[i].Index = i
	}
	log.Debug("tables detected", "engine", EngineRows, "page", index+1, "tables", len(tables), "lines", len(lines))
	return tables, nil
}

func (d *rowsDocument) Close() error {
	return nil
}

// groupTables turns runs of consecutive multi-cell lines into tables. Short
// lines set tight below a row are folded into it; any other short line ends
// the run.
func groupTables(lines []textLine, cfg Config) []models.RawTable {
	minCols := max(cfg.MinCols, 2)
	minRows := max(cfg.MinRows, 2)

	var tables []models.RawTable
	var rows [][]textLine
	flush := func() {
		if len(rows) >= minRows {
			tables = append(tables, buildTable(rows))
		}
		rows = nil
	}
	for _, line := range lines {
		if len(line.spans) >= minCols {
			rows = append(rows, []textLine{line})
			continue
		}
		if n := len(rows); n > 0 && wraps(rows[n-1], line) {
			rows[n-1] = append(rows[n-1], line)
			continue
		}
		flush()
	}
	flush()
	return tables
}

// wraps reports whether line sits directly below the last line of row.
func wraps(row []textLine, line textLine) bool {
	last := row[len(row)-1]
	return last.y-line.y <= wrapLeading*math.Max(last.size, line.size)
}

// buildTable lays rows out on column anchors taken from the widest first
// line. Every span goes to the column whose start is nearest; spans meeting
// in one cell are joined by spaces on a line and by newlines across lines.
func buildTable(rows [][]textLine) models.RawTable {
	widest := rows[0][0].spans
	for _, row := range rows[1:] {
		if len(row[0].spans) > len(widest) {
			widest = row[0].spans
		}
	}
	anchors := make([]float64, len(widest))
	for i, s := range widest {
		anchors[i] = s.x0
	}

	out := make([][]models.Cell, len(rows))
	for r, row := range rows {
		cells := make([][]string, len(anchors))
		for _, line := range row {
			parts := make([]string, len(anchors))
			for _, s := range line.spans {
				col := nearest(anchors, s.x0)
				if parts[col] != "" {
					parts[col] += " "
				}
				parts[col] += s.text
			}
			for col, part := range parts {
				if part != "" {
					cells[col] = append(cells[col], part)
				}
			}
		}
		out[r] = make([]models.Cell, len(anchors))
		for col, lines := range cells {
			out[r][col] = textCell(strings.Join(lines, "\n"))
		}
	}
	return models.RawTable{Rows: out}
}

func nearest(anchors []float64, x float64) int {
	best := 0
	for i, a := range anchors {
		if math.Abs(a-x) < math.Abs(anchors[best]-x) {
			best = i
		}
	}
	return best
}
