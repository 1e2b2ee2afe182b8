package canvas

import (
	"math"

	"github.com/rendis/flowedit/internal/geometry"
	"github.com/rendis/flowedit/pkg/schema"
)

const (
	// DefaultNodeWidth and DefaultNodeHeight size nodes whose spec leaves
	// the dimensions unset.
	DefaultNodeWidth  = 200
	DefaultNodeHeight = 80

	// ParallelogramShear is the horizontal offset between the top and bottom
	// edges of a parallelogram outline.
	ParallelogramShear = 20
)

// NodeSpec describes how an item is placed when it is realized on a canvas.
type NodeSpec struct {
	Kind   schema.StepKind
	Shape  schema.Shape // empty selects schema.DefaultShape(Kind)
	X, Y   float64
	Width  float64 // <= 0 selects DefaultNodeWidth
	Height float64 // <= 0 selects DefaultNodeHeight
	Locked bool    // locked nodes cannot be dragged
}

// Describer is implemented by items that know their own placement.
type Describer interface {
	NodeSpec() NodeSpec
}

// Linked is implemented by items that carry their own relation fields.
// The canvas writes every relation change back through SetRelation, and the
// collection adapter seeds the graph from Relation on load. Relation
// targets are matched against node items with SameItem.
type Linked interface {
	Relation(slot schema.Relation) any
	SetRelation(slot schema.Relation, target any)
}

// SpecFor returns the placement for item, falling back to a Normal node at
// the origin when item does not implement Describer.
func SpecFor(item any) NodeSpec {
	if d, ok := item.(Describer); ok {
		return d.NodeSpec()
	}
	return NodeSpec{Kind: schema.StepKindNormal}
}

func (s NodeSpec) normalized() NodeSpec {
	if !s.Kind.Valid() {
		s.Kind = schema.StepKindNormal
	}
	if s.Shape == "" {
		s.Shape = schema.DefaultShape(s.Kind)
	}
	if s.Width <= 0 || math.IsNaN(s.Width) {
		s.Width = DefaultNodeWidth
	}
	if s.Height <= 0 || math.IsNaN(s.Height) {
		s.Height = DefaultNodeHeight
	}
	return s
}

// Node is a workflow item placed on a canvas. Relations are not stored on the
// node; they live in the canvas relation graph.
type Node struct {
	id          NodeID
	item        any
	kind        schema.StepKind
	shape       schema.Shape
	bounds      geometry.Rect
	draggable   bool
	selected    bool
	realized    bool
	dirty       bool
	placeholder bool
	anchors     [4]Anchor
}

func newNode(item any, spec NodeSpec) *Node {
	spec = spec.normalized()
	n := &Node{
		item:      item,
		kind:      spec.Kind,
		shape:     spec.Shape,
		bounds:    geometry.Rect{X: spec.X, Y: spec.Y, Width: spec.Width, Height: spec.Height},
		draggable: !spec.Locked,
	}
	for _, side := range schema.Sides {
		n.anchors[side] = Anchor{side: side}
	}
	return n
}

// ID returns the node handle. Placeholders return the zero handle.
func (n *Node) ID() NodeID { return n.id }

// Item returns the backing data object.
func (n *Node) Item() any { return n.item }

// Kind returns the step kind.
func (n *Node) Kind() schema.StepKind { return n.kind }

// Shape returns the outline shape.
func (n *Node) Shape() schema.Shape { return n.shape }

// Bounds returns the node rectangle in canvas coordinates.
func (n *Node) Bounds() geometry.Rect { return n.bounds }

// Position returns the top-left corner.
func (n *Node) Position() geometry.Point { return n.bounds.Origin() }

// Draggable reports whether gestures may move the node.
func (n *Node) Draggable() bool { return n.draggable }

// Selected reports the selection flag.
func (n *Node) Selected() bool { return n.selected }

// Realized reports whether the node's anchors are live.
func (n *Node) Realized() bool { return n.realized }

// Dirty reports whether the node waits for the next Flush.
func (n *Node) Dirty() bool { return n.dirty }

// IsPlaceholder reports whether n was synthesized for an unresolved item.
func (n *Node) IsPlaceholder() bool { return n.placeholder }

// Anchor returns the anchor on side.
func (n *Node) Anchor(side schema.Side) *Anchor {
	return &n.anchors[side]
}

// Anchors returns the four anchors in Left, Top, Right, Bottom order.
func (n *Node) Anchors() []*Anchor {
	out := make([]*Anchor, 0, len(n.anchors))
	for i := range n.anchors {
		out = append(out, &n.anchors[i])
	}
	return out
}

func (n *Node) shear() float64 {
	if n.shape != schema.ShapeParallelogram {
		return 0
	}
	return math.Min(ParallelogramShear, n.bounds.Width)
}

// Outline returns the polygon the node is drawn with, in canvas coordinates.
func (n *Node) Outline() []geometry.Point {
	b := n.bounds
	switch n.shape {
	case schema.ShapeDiamond:
		c := b.Center()
		return []geometry.Point{
			{X: c.X, Y: b.Y},
			{X: b.Right(), Y: c.Y},
			{X: c.X, Y: b.Bottom()},
			{X: b.X, Y: c.Y},
		}
	case schema.ShapeParallelogram:
		s := n.shear()
		return []geometry.Point{
			{X: b.X + s, Y: b.Y},
			{X: b.Right(), Y: b.Y},
			{X: b.Right() - s, Y: b.Bottom()},
			{X: b.X, Y: b.Bottom()},
		}
	default:
		return []geometry.Point{
			{X: b.X, Y: b.Y},
			{X: b.Right(), Y: b.Y},
			{X: b.Right(), Y: b.Bottom()},
			{X: b.X, Y: b.Bottom()},
		}
	}
}

// AnchorCenter returns the center of the anchor on side, computed from the
// current bounds.
func (n *Node) AnchorCenter(side schema.Side) geometry.Point {
	b := n.bounds
	half := n.shear() / 2
	switch side {
	case schema.SideLeft:
		return geometry.Point{X: b.X + half, Y: b.Y + b.Height/2}
	case schema.SideTop:
		return geometry.Point{X: b.X + b.Width/2, Y: b.Y}
	case schema.SideRight:
		return geometry.Point{X: b.Right() - half, Y: b.Y + b.Height/2}
	default:
		return geometry.Point{X: b.X + b.Width/2, Y: b.Bottom()}
	}
}

// AnchorVisible reports whether the anchor on side is shown for this node.
func (n *Node) AnchorVisible(side schema.Side) bool {
	return AnchorVisible(n.kind, side)
}

func (n *Node) resize(dw, dh float64) bool {
	changed := false
	if w := n.bounds.Width + dw; w > 0 && dw != 0 {
		n.bounds.Width = w
		changed = true
	}
	if h := n.bounds.Height + dh; h > 0 && dh != 0 {
		n.bounds.Height = h
		changed = true
	}
	return changed
}
