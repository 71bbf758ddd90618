// Package testutil builds small PDF documents for tests.
package testutil

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Page size of generated documents (A4, in points).
const (
	PageWidth  = 595
	PageHeight = 842
)

// Table layout in text units: padding around cell text and line spacing,
// both as a fraction of the font size.
const (
	cellPadding = 0.4
	lineLeading = 1.2
)

// Page collects the content stream operations of one page. Text is drawn in
// Courier, whose glyphs are all 600/1000 of the font size wide.
type Page struct {
	ops bytes.Buffer
}

// NewPage returns an empty page.
func NewPage() *Page {
	return &Page{}
}

// Text draws s with its baseline origin at x, y.
func (p *Page) Text(x, y, size float64, s string) *Page {
	fmt.Fprintf(&p.ops, "BT /F1 %s Tf 1 0 0 1 %s %s Tm (%s) Tj ET\n", num(size), num(x), num(y), literal(s))
	return p
}

// Line strokes a straight segment.
func (p *Page) Line(x0, y0, x1, y1 float64) *Page {
	fmt.Fprintf(&p.ops, "%s %s m %s %s l S\n", num(x0), num(y0), num(x1), num(y1))
	return p
}

// Rect strokes a rectangle outline.
func (p *Page) Rect(x, y, w, h float64) *Page {
	fmt.Fprintf(&p.ops, "%s %s %s %s re S\n", num(x), num(y), num(w), num(h))
	return p
}

// Table draws a table whose top-left corner is at x, top, with every row
// and column boundary ruled. Cell text may span several lines separated by
// "\n"; rows grow to fit their tallest cell. It returns the y of the table's
// bottom edge.
func (p *Page) Table(x, top, size float64, widths []float64, rows [][]string) float64 {
	xs, ys := p.layout(x, top, size, widths, rows)
	for _, y := range ys {
		p.Line(xs[0], y, xs[len(xs)-1], y)
	}
	for _, cx := range xs {
		p.Line(cx, ys[0], cx, ys[len(ys)-1])
	}
	return ys[len(ys)-1]
}

// TextTable draws the same layout as Table without any rules.
func (p *Page) TextTable(x, top, size float64, widths []float64, rows [][]string) float64 {
	_, ys := p.layout(x, top, size, widths, rows)
	return ys[len(ys)-1]
}

// layout writes the cell text and returns the column and row boundaries.
func (p *Page) layout(x, top, size float64, widths []float64, rows [][]string) (xs, ys []float64) {
	pad := size * cellPadding
	leading := size * lineLeading

	xs = []float64{x}
	for _, w := range widths {
		xs = append(xs, xs[len(xs)-1]+w)
	}

	ys = []float64{top}
	y := top
	for _, row := range rows {
		lines := 1
		for c, cell := range row {
			if c >= len(widths) || cell == "" {
				continue
			}
			parts := strings.Split(cell, "\n")
			lines = max(lines, len(parts))
			for i, part := range parts {
				p.Text(xs[c]+pad, y-pad-size-float64(i)*leading, size, part)
			}
		}
		y -= 2*pad + size + float64(lines-1)*leading
		ys = append(ys, y)
	}
	return xs, ys
}

// PDF renders the pages into a complete document with a classic xref table.
func PDF(pages ...*Page) []byte {
	var objects []string
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 255 /Widths [%s] >>",
			strings.TrimSpace(strings.Repeat("600 ", 224))),
	)
	for i, page := range pages {
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
				PageWidth, PageHeight, 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", page.ops.Len(), page.ops.String()),
		)
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return out.Bytes()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// literal encodes s as the body of a WinAnsi PDF string literal.
func literal(s string) string {
	encoded, err := charmap.Windows1252.NewEncoder().String(s)
	if err != nil {
		panic(fmt.Sprintf("testutil: %q is not WinAnsi text: %v", s, err))
	}
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(encoded)
}
