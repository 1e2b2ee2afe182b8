package render

import (
	"math"
	"strings"

	"github.com/rendis/flowedit/internal/geometry"
	"github.com/rendis/flowedit/pkg/schema"
)

// Screen units covered by one terminal cell. Cells are roughly twice as tall
// as they are wide.
const (
	CellWidth  = 10
	CellHeight = 20
)

// Grid is a character raster.
type Grid struct {
	Cols, Rows int
	cells      [][]rune
}

// NewGrid returns a blank grid.
func NewGrid(cols, rows int) *Grid {
	g := &Grid{Cols: max(cols, 0), Rows: max(rows, 0)}
	g.cells = make([][]rune, g.Rows)
	for r := range g.cells {
		g.cells[r] = []rune(strings.Repeat(" ", g.Cols))
	}
	return g
}

// Set writes ch at (col, row). Out-of-range writes are dropped.
func (g *Grid) Set(col, row int, ch rune) {
	if col < 0 || row < 0 || col >= g.Cols || row >= g.Rows {
		return
	}
	g.cells[row][col] = ch
}

// At returns the rune at (col, row), or a space when out of range.
func (g *Grid) At(col, row int) rune {
	if col < 0 || row < 0 || col >= g.Cols || row >= g.Rows {
		return ' '
	}
	return g.cells[row][col]
}

// String returns the grid rows joined by newlines, trailing blanks trimmed.
func (g *Grid) String() string {
	lines := make([]string, len(g.cells))
	for i, row := range g.cells {
		lines[i] = strings.TrimRight(string(row), " ")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// CellAt maps a canvas point to the grid cell that shows it at scale.
func CellAt(p geometry.Point, scale float64) (col, row int) {
	if scale <= 0 {
		scale = 1
	}
	return int(math.Floor(p.X * scale / CellWidth)), int(math.Floor(p.Y * scale / CellHeight))
}

// ScreenPoint returns the screen position at the center of a grid cell,
// ready to be handed to the editor's pointer methods.
func ScreenPoint(col, row int) geometry.Point {
	return geometry.Pt(float64(col*CellWidth)+CellWidth/2, float64(row*CellHeight)+CellHeight/2)
}

type boxChars struct {
	h, v, tl, tr, bl, br rune
}

var (
	lightBox  = boxChars{'─', '│', '┌', '┐', '└', '┘'}
	heavyBox  = boxChars{'━', '┃', '┏', '┓', '┗', '┛'}
	dottedBox = boxChars{'┄', '┆', '┌', '┐', '└', '┘'}
	doubleBox = boxChars{'═', '║', '╔', '╗', '╚', '╝'}
)

// Raster draws s onto a cols×rows grid. Links go under nodes; arrowheads
// and the marquee go on top.
func Raster(s *Snapshot, cols, rows int) *Grid {
	g := NewGrid(cols, rows)
	scale := s.Scale
	if scale <= 0 {
		scale = 1
	}

	if s.Envelope != nil {
		drawRect(g, *s.Envelope, scale, doubleBox)
	}
	for _, l := range s.Links {
		drawLink(g, l, scale)
	}
	for _, n := range s.Nodes {
		drawNode(g, n, scale)
	}
	for _, l := range s.Links {
		col, row := CellAt(l.Arrow[0], scale)
		g.Set(col, row, arrowGlyph(l.Arrow))
	}
	if s.Marquee != nil {
		drawRect(g, *s.Marquee, scale, dottedBox)
	}
	return g
}

// RenderASCII renders s as a text raster of the given size.
func RenderASCII(s *Snapshot, cols, rows int) string {
	return Raster(s, cols, rows).String()
}

func drawRect(g *Grid, r geometry.Rect, scale float64, bc boxChars) {
	c0, r0 := CellAt(r.Origin(), scale)
	c1, r1 := CellAt(geometry.Pt(r.Right(), r.Bottom()), scale)
	for c := c0 + 1; c < c1; c++ {
		g.Set(c, r0, bc.h)
		g.Set(c, r1, bc.h)
	}
	for row := r0 + 1; row < r1; row++ {
		g.Set(c0, row, bc.v)
		g.Set(c1, row, bc.v)
	}
	g.Set(c0, r0, bc.tl)
	g.Set(c1, r0, bc.tr)
	g.Set(c0, r1, bc.bl)
	g.Set(c1, r1, bc.br)
}

func drawNode(g *Grid, n *Node, scale float64) {
	bc := lightBox
	if n.Selected {
		bc = heavyBox
	}
	c0, r0 := CellAt(n.Bounds.Origin(), scale)
	c1, r1 := CellAt(geometry.Pt(n.Bounds.Right(), n.Bounds.Bottom()), scale)

	// clear the interior so links underneath do not show through
	for row := r0 + 1; row < r1; row++ {
		for c := c0 + 1; c < c1; c++ {
			g.Set(c, row, ' ')
		}
	}

	if n.Shape == schema.ShapeRectangle || len(n.Outline) < 3 {
		drawRect(g, n.Bounds, scale, bc)
	} else {
		for i := range n.Outline {
			a, b := n.Outline[i], n.Outline[(i+1)%len(n.Outline)]
			drawSegment(g, a, b, scale, segmentGlyph(a, b, bc))
		}
	}

	label := []rune(n.Label)
	width := c1 - c0 - 1
	if width > 0 && len(label) > width {
		label = label[:width]
	}
	center := n.Bounds.Center()
	cc, cr := CellAt(center, scale)
	start := cc - len(label)/2
	for i, ch := range label {
		g.Set(start+i, cr, ch)
	}

	for _, a := range n.Anchors {
		if !a.Visible {
			continue
		}
		ch := 'o'
		if a.Connected {
			ch = '●'
		}
		col, row := CellAt(a.Center, scale)
		// anchors on the far edges land one cell outside the box otherwise
		if a.Side == schema.SideRight {
			col = min(col, c1)
		}
		if a.Side == schema.SideBottom {
			row = min(row, r1)
		}
		g.Set(col, row, ch)
	}
}

func drawLink(g *Grid, l *Link, scale float64) {
	ch := '·'
	switch {
	case l.Transient:
		ch = '∙'
	case l.Selected:
		ch = '•'
	}
	p := l.Points
	c0, r0 := CellAt(p[0], scale)
	c3, r3 := CellAt(p[3], scale)
	samples := 4*(abs(c3-c0)+abs(r3-r0)) + 8
	for i := 0; i <= samples; i++ {
		pt := geometry.BezierPoint(p[0], p[1], p[2], p[3], float64(i)/float64(samples))
		col, row := CellAt(pt, scale)
		g.Set(col, row, ch)
	}
}

func drawSegment(g *Grid, a, b geometry.Point, scale float64, ch rune) {
	ca, ra := CellAt(a, scale)
	cb, rb := CellAt(b, scale)
	steps := max(abs(cb-ca), abs(rb-ra), 1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pt := geometry.Pt(a.X+(b.X-a.X)*t, a.Y+(b.Y-a.Y)*t)
		col, row := CellAt(pt, scale)
		g.Set(col, row, ch)
	}
}

func segmentGlyph(a, b geometry.Point, bc boxChars) rune {
	dx, dy := b.X-a.X, b.Y-a.Y
	switch {
	case dy == 0:
		return bc.h
	case dx == 0:
		return bc.v
	case (dx > 0) == (dy > 0):
		return '\\'
	default:
		return '/'
	}
}

func arrowGlyph(arrow [3]geometry.Point) rune {
	back := geometry.Mid(arrow[1], arrow[2])
	d := arrow[0].Sub(back)
	if math.Abs(d.X) >= math.Abs(d.Y) {
		if d.X >= 0 {
			return '▶'
		}
		return '◀'
	}
	if d.Y >= 0 {
		return '▼'
	}
	return '▲'
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
