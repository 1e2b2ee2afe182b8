package canvas

import (
	"slices"

	"github.com/rendis/flowedit/internal/geometry"
	"github.com/rendis/flowedit/pkg/schema"
)

const (
	// ArrowLength is the distance from the arrow tip to its wings.
	ArrowLength = 14
	// ArrowHalfWidth is the perpendicular offset of each wing.
	ArrowHalfWidth = 5
)

// Link is a directed cubic curve between two anchors. Control points are kept
// in local space relative to StartPoint, the top-left corner of the curve's
// bounding box.
type Link struct {
	id        LinkID
	start     AnchorRef
	end       AnchorRef
	origin    geometry.Point
	extent    geometry.Point
	points    [4]geometry.Point
	arrow     [3]geometry.Point
	curved    bool
	selected  bool
	transient bool
}

// ID returns the link handle.
func (l *Link) ID() LinkID { return l.id }

// Start returns the source anchor.
func (l *Link) Start() AnchorRef { return l.start }

// End returns the target anchor. Transient links have no end anchor.
func (l *Link) End() AnchorRef { return l.end }

// StartPoint is the component-wise minimum of the endpoints.
func (l *Link) StartPoint() geometry.Point { return l.origin }

// EndPoint is the component-wise maximum of the endpoints.
func (l *Link) EndPoint() geometry.Point { return l.extent }

// LocalPoints returns the control points relative to StartPoint.
func (l *Link) LocalPoints() [4]geometry.Point { return l.points }

// Curved reports the drawing mode.
func (l *Link) Curved() bool { return l.curved }

// Selected reports the selection flag.
func (l *Link) Selected() bool { return l.selected }

// Transient reports whether l is the in-progress link of a drawing gesture.
func (l *Link) Transient() bool { return l.transient }

// Points returns the control points in canvas coordinates.
func (l *Link) Points() [4]geometry.Point {
	var out [4]geometry.Point
	for i, p := range l.points {
		out[i] = p.Add(l.origin.Vec())
	}
	return out
}

// Arrow returns the arrowhead tip and wings in canvas coordinates.
func (l *Link) Arrow() [3]geometry.Point {
	var out [3]geometry.Point
	for i, p := range l.arrow {
		out[i] = p.Add(l.origin.Vec())
	}
	return out
}

// Layout recomputes the curve between start and end, given in canvas
// coordinates.
func (l *Link) Layout(start, end geometry.Point) {
	l.origin = geometry.Min(start, end)
	l.extent = geometry.Max(start, end)

	s := start.Minus(l.origin.Vec())
	e := end.Minus(l.origin.Vec())

	var p1, p2 geometry.Point
	if l.curved {
		mid := geometry.Mid(s, e)
		p1 = geometry.Point{X: mid.X, Y: e.Y}
		p2 = geometry.Point{X: mid.X, Y: s.Y}
	} else {
		d := e.Sub(s)
		p1 = s.Add(d)
		p2 = e.Minus(d)
	}
	l.points = [4]geometry.Point{s, p1, p2, e}

	dir := e.Sub(p2).Normalize()
	back := e.Minus(dir.Scale(ArrowLength))
	perp := dir.Perp().Scale(ArrowHalfWidth)
	l.arrow = [3]geometry.Point{e, back.Add(perp), back.Minus(perp)}
}

// Distance returns the approximate distance from p to the curve, sampled in
// canvas coordinates.
func (l *Link) Distance(p geometry.Point) float64 {
	const samples = 24
	pts := l.Points()
	best := -1.0
	prev := pts[0]
	for i := 1; i <= samples; i++ {
		cur := geometry.BezierPoint(pts[0], pts[1], pts[2], pts[3], float64(i)/samples)
		if d := geometry.SegmentDistance(p, prev, cur); best < 0 || d < best {
			best = d
		}
		prev = cur
	}
	return best
}

func (c *Canvas) mustLink(id LinkID) (*Link, error) {
	l, ok := c.Link(id)
	if !ok {
		return nil, schema.NewErrorf(schema.ErrCodeNotFound, "link %s not found", id)
	}
	return l, nil
}

// DeleteLink removes a link. For committed links the relation it draws is
// cleared on both nodes as well.
func (c *Canvas) DeleteLink(id LinkID) error {
	l, err := c.mustLink(id)
	if err != nil {
		return err
	}
	if l.transient {
		c.removeLink(id)
		return nil
	}
	from := l.start.Node
	kind := edgeForSide(l.start.Side)
	if to, ok := c.graph.target(from, kind); ok && to == l.end.Node {
		c.unlink(from, kind)
		return nil
	}
	c.removeLink(id)
	return nil
}

// removeLink detaches a link from both anchors and drops it.
func (c *Canvas) removeLink(id LinkID) {
	l, ok := c.Link(id)
	if !ok {
		return
	}
	for _, ref := range []AnchorRef{l.start, l.end} {
		if n, ok := c.Node(ref.Node); ok {
			if a := n.Anchor(ref.Side); a.link == id {
				a.link = LinkID{}
			}
		}
	}
	start, end := l.start, l.end
	l.start, l.end = AnchorRef{}, AnchorRef{}
	c.links.remove(id.index, id.gen)
	c.linkOrder = slices.DeleteFunc(c.linkOrder, func(o LinkID) bool { return o == id })
	if !l.transient {
		c.emit(Event{Type: schema.EventLinkDeleted, Node: start.Node, Partner: end.Node, Link: id})
	}
}

// SetLinkCurved switches the drawing mode and relayouts from the current
// anchor centers.
func (c *Canvas) SetLinkCurved(id LinkID, curved bool) error {
	l, err := c.mustLink(id)
	if err != nil {
		return err
	}
	l.curved = curved
	if l.transient {
		l.Layout(l.Points()[0], l.Points()[3])
		return nil
	}
	start, err := c.AnchorCenter(l.start)
	if err != nil {
		return err
	}
	end, err := c.AnchorCenter(l.end)
	if err != nil {
		return err
	}
	l.Layout(start, end)
	return nil
}

// BeginTransient creates the in-progress link of a drawing gesture, starting
// at the anchor from. It is not attached to any anchor.
func (c *Canvas) BeginTransient(from AnchorRef) (LinkID, error) {
	start, err := c.AnchorCenter(from)
	if err != nil {
		return LinkID{}, err
	}
	l := &Link{start: from, curved: c.curved, transient: true}
	index, gen := c.links.insert(l)
	l.id = LinkID{index: index, gen: gen}
	c.linkOrder = append(c.linkOrder, l.id)
	l.Layout(start, start)
	return l.id, nil
}

// DragTransient relayouts a transient link between its source anchor and p.
func (c *Canvas) DragTransient(id LinkID, p geometry.Point) error {
	l, err := c.mustLink(id)
	if err != nil {
		return err
	}
	start, err := c.AnchorCenter(l.start)
	if err != nil {
		return err
	}
	l.Layout(start, p)
	return nil
}
