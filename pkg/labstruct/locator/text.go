package locator

import (
	"math"
	"slices"
	"sort"
	"strings"
)

// glyph is a piece of text placed on the page. x, y is its baseline origin
// in page space, y growing upwards.
type glyph struct {
	x, y float64
	w    float64
	size float64
	text string
}

// center returns a point inside the glyph's ink box.
func (g glyph) center() (float64, float64) {
	return g.x + g.w/2, g.y + g.size*0.3
}

// span is a run of text on one line between two column gaps.
type span struct {
	x0, x1 float64
	text   string
}

// textLine is the text sharing one baseline, split into spans.
type textLine struct {
	y     float64
	size  float64
	spans []span
}

// textLines groups glyphs whose baselines lie within tolerance of each other
// into lines, top to bottom, and splits each line into spans.
func textLines(glyphs []glyph, tolerance, cellGap float64) []textLine {
	if len(glyphs) == 0 {
		return nil
	}
	sorted := slices.Clone(glyphs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].y > sorted[j].y })

	var lines []textLine
	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[start].y-sorted[i].y <= tolerance {
			continue
		}
		group := sorted[start:i]
		line := textLine{y: group[0].y, spans: splitCells(group, cellGap)}
		for _, g := range group {
			line.size = math.Max(line.size, g.size)
		}
		if len(line.spans) > 0 {
			lines = append(lines, line)
		}
		start = i
	}
	return lines
}

// splitCells joins the glyphs of one line into spans. A horizontal gap
// wider than the cell gap (or the font size, if larger) starts a new span;
// a gap wider than a quarter of the font size becomes a space.
func splitCells(glyphs []glyph, cellGap float64) []span {
	if len(glyphs) == 0 {
		return nil
	}
	sorted := slices.Clone(glyphs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].x < sorted[j].x })

	var spans []span
	var b strings.Builder
	cur := span{x0: sorted[0].x, x1: sorted[0].x + sorted[0].w}
	b.WriteString(sorted[0].text)

	for _, g := range sorted[1:] {
		gap := g.x - cur.x1
		if gap > math.Max(cellGap, g.size) {
			cur.text = b.String()
			spans = append(spans, cur)
			b.Reset()
			cur = span{x0: g.x}
		} else if gap > g.size*0.25 && !strings.HasSuffix(b.String(), " ") && !strings.HasPrefix(g.text, " ") {
			b.WriteByte(' ')
		}
		b.WriteString(g.text)
		if end := g.x + g.w; end > cur.x1 {
			cur.x1 = end
		}
	}
	cur.text = b.String()
	spans = append(spans, cur)

	out := spans[:0]
	for _, s := range spans {
		s.text = strings.TrimSpace(s.text)
		if s.text != "" {
			out = append(out, s)
		}
	}
	return out
}

// joinLines renders lines as cell text: spans joined by spaces, lines by
// newlines.
func joinLines(lines []textLine) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		texts := make([]string, len(line.spans))
		for i, s := range line.spans {
			texts[i] = s.text
		}
		parts = append(parts, strings.Join(texts, " "))
	}
	return strings.Join(parts, "\n")
}

// visible drops whitespace-only glyphs; spacing is recovered from gaps.
func visible(glyphs []glyph) []glyph {
	out := glyphs[:0]
	for _, g := range glyphs {
		if strings.TrimSpace(g.text) != "" {
			out = append(out, g)
		}
	}
	return out
}
