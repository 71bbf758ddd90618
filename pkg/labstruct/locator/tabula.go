package locator

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tsawler/tabula/core"
	"github.com/tsawler/tabula/graphicsstate"
	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/reader"
	"github.com/tsawler/tabula/tables"

	"github.com/ukaji3/labstruct-go/pkg/labstruct/models"
)

// TabulaEngine detects tables from ruling lines, falling back to the
// geometric detector for tables drawn without rules.
type TabulaEngine struct {
	config Config
}

// NewTabulaEngine creates a tabula engine.
func NewTabulaEngine(cfg Config) *TabulaEngine {
	return &TabulaEngine{config: cfg}
}

func (e *TabulaEngine) Name() string { return EngineTabula }

// Open spools content to a temporary file, which the reader requires, and
// parses it. The file is removed by Close.
func (e *TabulaEngine) Open(content []byte) (Document, error) {
	if len(content) == 0 {
		return nil, ErrEmptyDocument
	}

	f, err := os.CreateTemp("", "labstruct-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	cleanup := func() {
		f.Close()
		os.Remove(f.Name())
	}
	if _, err := f.Write(content); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to spool document: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to rewind document: %w", err)
	}

	r, err := reader.NewReader(f)
	if err != nil {
		cleanup()
		return nil, err
	}
	count, err := r.PageCount()
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to read page tree: %w", err)
	}

	detector := tables.NewGeometricDetector()
	if err := detector.Configure(e.config.detectorConfig()); err != nil {
		cleanup()
		return nil, err
	}

	return &tabulaDocument{
		reader:   r,
		path:     f.Name(),
		pages:    count,
		config:   e.config,
		detector: detector,
	}, nil
}

type tabulaDocument struct {
	reader   *reader.Reader
	path     string
	pages    int
	config   Config
	detector tables.Detector
}

func (d *tabulaDocument) PageCount() int {
	return d.pages
}

func (d *tabulaDocument) FindTables(index int) ([]models.RawTable, error) {
	page, err := d.reader.GetPage(index)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", index+1, err)
	}

	fragments, err := d.reader.ExtractTextFragments(page)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", index+1, err)
	}
	glyphs := make([]glyph, 0, len(fragments))
	for _, frag := range fragments {
		glyphs = append(glyphs, glyph{x: frag.X, y: frag.Y, w: frag.Width, size: frag.FontSize, text: frag.Text})
	}
	glyphs = visible(glyphs)
	if len(glyphs) == 0 {
		return nil, nil
	}

	lines, err := rulingLines(page.Contents)
	if err != nil {
		log.Debug("ruling lines unavailable", "page", index+1, "error", err)
	}

	out := ruledTables(glyphs, lines, d.config)
	if len(out) == 0 {
		width, _ := page.Width()
		height, _ := page.Height()
		modelPage := model.NewPage(width, height)
		modelPage.Number = index + 1
		for _, frag := range fragments {
			modelPage.RawText = append(modelPage.RawText, model.TextFragment{
				Text:     frag.Text,
				BBox:     model.BBox{X: frag.X, Y: frag.Y, Width: frag.Width, Height: frag.Height},
				FontSize: frag.FontSize,
				FontName: frag.FontName,
			})
		}
		modelPage.RawLines = append(modelPage.RawLines, lines...)

		detected, err := d.detector.Detect(modelPage)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", index+1, err)
		}
		for _, table := range detected {
			out = append(out, d.regionTables(glyphs, table)...)
		}
	}

	for i := range out {
		out[i].Page = index
		out[i].Index = i
	}
	log.Debug("tables detected", "engine", EngineTabula, "page", index+1, "tables", len(out), "fragments", len(fragments))
	return out, nil
}

// regionTables rebuilds a detected table from the glyphs inside its bounds
// so that wrapped cell text stays in its row. The detector's own cells are
// used when the region does not form rows.
func (d *tabulaDocument) regionTables(glyphs []glyph, table *model.Table) []models.RawTable {
	tol := d.config.AlignmentTolerance
	box := table.BBox
	var inside []glyph
	for _, g := range glyphs {
		if g.x >= box.X-tol && g.x <= box.X+box.Width+tol && g.y >= box.Y-tol && g.y <= box.Y+box.Height+tol {
			inside = append(inside, g)
		}
	}
	if found := groupTables(textLines(inside, tol, d.config.MaxCellGap), d.config); len(found) > 0 {
		return found
	}

	raw := models.RawTable{Rows: make([][]models.Cell, len(table.Rows))}
	for r, cells := range table.Rows {
		row := make([]models.Cell, len(cells))
		for c, cell := range cells {
			row[c] = textCell(cell.Text)
		}
		raw.Rows[r] = row
	}
	return []models.RawTable{raw}
}

func (d *tabulaDocument) Close() error {
	return errors.Join(d.reader.Close(), os.Remove(d.path))
}

// rulingLines extracts stroked lines and rectangle edges from the page's
// content streams.
func rulingLines(contents func() ([]core.Object, error)) ([]model.Line, error) {
	streams, err := contents()
	if err != nil {
		return nil, err
	}

	var data []byte
	for _, obj := range streams {
		stream, ok := obj.(*core.Stream)
		if !ok {
			continue
		}
		decoded, err := stream.Decode()
		if err != nil {
			return nil, err
		}
		data = append(data, decoded...)
		data = append(data, '\n')
	}
	if len(data) == 0 {
		return nil, nil
	}

	extractor := graphicsstate.NewGraphicsExtractor()
	if err := extractor.ExtractFromBytes(data); err != nil {
		return nil, err
	}
	return append(extractor.ToModelLines(), extractor.ToModelRectangles()...), nil
}
