package locator

import (
	"math"
	"sort"

	"github.com/tsawler/tabula/model"

	"github.com/ukaji3/labstruct-go/pkg/labstruct/models"
)

// segment is an axis-aligned rule. For a horizontal rule pos is its y and
// lo, hi its x extent; for a vertical rule pos is its x and lo, hi its y
// extent.
type segment struct {
	pos, lo, hi float64
}

func (s segment) covers(v, tol float64) bool {
	return v >= s.lo-tol && v <= s.hi+tol
}

// rulings splits stroked lines and rectangles into horizontal and vertical
// rules. Thin rectangles count as a single rule, other rectangles as their
// four edges. Diagonal lines are dropped.
func rulings(lines []model.Line, tol float64) (hs, vs []segment) {
	addH := func(y, x0, x1 float64) {
		if math.Abs(x1-x0) > tol {
			hs = append(hs, segment{pos: y, lo: math.Min(x0, x1), hi: math.Max(x0, x1)})
		}
	}
	addV := func(x, y0, y1 float64) {
		if math.Abs(y1-y0) > tol {
			vs = append(vs, segment{pos: x, lo: math.Min(y0, y1), hi: math.Max(y0, y1)})
		}
	}

	for _, l := range lines {
		x0, y0, x1, y1 := l.Start.X, l.Start.Y, l.End.X, l.End.Y
		dx, dy := math.Abs(x1-x0), math.Abs(y1-y0)
		switch {
		case l.IsRect && dy <= tol:
			addH((y0+y1)/2, x0, x1)
		case l.IsRect && dx <= tol:
			addV((x0+x1)/2, y0, y1)
		case l.IsRect:
			addH(y0, x0, x1)
			addH(y1, x0, x1)
			addV(x0, y0, y1)
			addV(x1, y0, y1)
		case dy <= tol:
			addH((y0+y1)/2, x0, x1)
		case dx <= tol:
			addV((x0+x1)/2, y0, y1)
		}
	}
	return hs, vs
}

// grid is one connected set of rules. ys runs top to bottom, xs left to
// right; row r lies between ys[r] and ys[r+1], column c between xs[c] and
// xs[c+1].
type grid struct {
	hs, vs []segment
	ys, xs []float64
	tol    float64
}

// grids groups the rules into connected components, each a candidate table.
func grids(hs, vs []segment, tol float64) []*grid {
	parent := make([]int, len(hs)+len(vs))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	for i, h := range hs {
		for j, v := range vs {
			if h.covers(v.pos, tol) && v.covers(h.pos, tol) {
				parent[find(i)] = find(len(hs) + j)
			}
		}
	}

	byRoot := map[int]*grid{}
	var order []*grid
	component := func(i int) *grid {
		root := find(i)
		g, ok := byRoot[root]
		if !ok {
			g = &grid{tol: tol}
			byRoot[root] = g
			order = append(order, g)
		}
		return g
	}
	for i, h := range hs {
		g := component(i)
		g.hs = append(g.hs, h)
	}
	for j, v := range vs {
		g := component(len(hs) + j)
		g.vs = append(g.vs, v)
	}

	for _, g := range order {
		g.ys = cluster(positions(g.hs), tol)
		sort.Sort(sort.Reverse(sort.Float64Slice(g.ys)))
		g.xs = cluster(positions(g.vs), tol)
	}
	return order
}

func positions(segments []segment) []float64 {
	out := make([]float64, len(segments))
	for i, s := range segments {
		out[i] = s.pos
	}
	return out
}

// cluster merges values lying within tol of the first value of their run,
// returning the run means in ascending order.
func cluster(values []float64, tol float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sort.Float64s(values)
	var out []float64
	start, sum := 0, 0.0
	for i, v := range values {
		if v-values[start] > tol {
			out = append(out, sum/float64(i-start))
			start, sum = i, 0
		}
		sum += v
	}
	return append(out, sum/float64(len(values)-start))
}

func (g *grid) rows() int { return max(len(g.ys)-1, 0) }
func (g *grid) cols() int { return max(len(g.xs)-1, 0) }

// ruledAt reports whether a rule in segments lies at pos and crosses at.
func (g *grid) ruledAt(segments []segment, pos, at float64) bool {
	for _, s := range segments {
		if math.Abs(s.pos-pos) <= g.tol && s.covers(at, g.tol) {
			return true
		}
	}
	return false
}

// origin returns the top-left cell of the merged region holding r, c. A
// missing rule between two cells merges them.
func (g *grid) origin(r, c int) (int, int) {
	ymid := (g.ys[r] + g.ys[r+1]) / 2
	xmid := (g.xs[c] + g.xs[c+1]) / 2
	oc := c
	for oc > 0 && !g.ruledAt(g.vs, g.xs[oc], ymid) {
		oc--
	}
	or := r
	for or > 0 && !g.ruledAt(g.hs, g.ys[or], xmid) {
		or--
	}
	return or, oc
}

// locate returns the cell holding the point, or false when it is outside
// the grid.
func (g *grid) locate(x, y float64) (int, int, bool) {
	r := -1
	for i := 0; i < g.rows(); i++ {
		if y <= g.ys[i] && y > g.ys[i+1] {
			r = i
			break
		}
	}
	c := -1
	for i := 0; i < g.cols(); i++ {
		if x >= g.xs[i] && x < g.xs[i+1] {
			c = i
			break
		}
	}
	return r, c, r >= 0 && c >= 0
}

// ruledTables builds a table for every ruled grid on the page. Each glyph
// goes to the cell containing its centre; cells covered by a merged region
// other than its top-left one are missing.
func ruledTables(glyphs []glyph, lines []model.Line, cfg Config) []models.RawTable {
	tol := math.Max(cfg.AlignmentTolerance, 1)
	hs, vs := rulings(lines, tol)

	var found []*grid
	for _, g := range grids(hs, vs, tol) {
		if g.rows() >= max(cfg.MinRows, 1) && g.cols() >= max(cfg.MinCols, 1) {
			found = append(found, g)
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		if math.Abs(found[i].ys[0]-found[j].ys[0]) > tol {
			return found[i].ys[0] > found[j].ys[0]
		}
		return found[i].xs[0] < found[j].xs[0]
	})

	out := make([]models.RawTable, 0, len(found))
	for _, g := range found {
		cells := make([][][]glyph, g.rows())
		for r := range cells {
			cells[r] = make([][]glyph, g.cols())
		}
		for _, gl := range glyphs {
			r, c, ok := g.locate(gl.center())
			if !ok {
				continue
			}
			r, c = g.origin(r, c)
			cells[r][c] = append(cells[r][c], gl)
		}

		rows := make([][]models.Cell, g.rows())
		for r := range rows {
			rows[r] = make([]models.Cell, g.cols())
			for c := range rows[r] {
				if or, oc := g.origin(r, c); or != r || oc != c {
					rows[r][c] = models.Missing
					continue
				}
				rows[r][c] = textCell(joinLines(textLines(cells[r][c], tol, cfg.MaxCellGap)))
			}
		}
		out = append(out, models.RawTable{Rows: rows})
	}
	return out
}
