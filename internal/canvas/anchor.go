package canvas

import (
	"github.com/rendis/flowedit/internal/geometry"
	"github.com/rendis/flowedit/pkg/schema"
)

// Anchor is a docking point on one side of a node. It holds at most one
// incident link.
type Anchor struct {
	side schema.Side
	node NodeID
	link LinkID
}

// AnchorRef addresses an anchor by owning node and side.
type AnchorRef struct {
	Node NodeID
	Side schema.Side
}

// Side returns the side the anchor sits on.
func (a *Anchor) Side() schema.Side { return a.side }

// Node returns the owning node handle.
func (a *Anchor) Node() NodeID { return a.node }

// Link returns the incident link handle, zero when unconnected.
func (a *Anchor) Link() LinkID { return a.link }

// Connected reports whether a link ends at this anchor.
func (a *Anchor) Connected() bool { return !a.link.IsZero() }

// Ref returns the address of a.
func (a *Anchor) Ref() AnchorRef { return AnchorRef{Node: a.node, Side: a.side} }

// AnchorVisible reports whether a node of kind shows its anchor on side.
// Begin nodes only expose Bottom; End nodes only Top and Left.
func AnchorVisible(kind schema.StepKind, side schema.Side) bool {
	switch kind {
	case schema.StepKindBegin:
		return side == schema.SideBottom
	case schema.StepKindEnd:
		return side == schema.SideTop || side == schema.SideLeft
	default:
		return true
	}
}

// slotForSide is the relation slot whose edge is drawn from side.
func slotForSide(side schema.Side) schema.Relation {
	switch side {
	case schema.SideTop:
		return schema.RelationPrevious
	case schema.SideBottom:
		return schema.RelationNext
	case schema.SideLeft:
		return schema.RelationJumpSource
	default:
		return schema.RelationJumpTarget
	}
}

// Anchor returns the anchor addressed by ref.
func (c *Canvas) Anchor(ref AnchorRef) (*Anchor, error) {
	n, err := c.mustNode(ref.Node)
	if err != nil {
		return nil, err
	}
	return n.Anchor(ref.Side), nil
}

// AnchorCenter returns the center of the anchor addressed by ref.
func (c *Canvas) AnchorCenter(ref AnchorRef) (geometry.Point, error) {
	n, err := c.mustNode(ref.Node)
	if err != nil {
		return geometry.Point{}, err
	}
	return n.AnchorCenter(ref.Side), nil
}

// Disconnect clears the relation carried by the anchor at ref on both nodes
// and deletes its link. Right clears the jump, Bottom the next edge, Left the
// incoming jump and Top the incoming next edge.
func (c *Canvas) Disconnect(ref AnchorRef) error {
	return c.SetRelation(ref.Node, slotForSide(ref.Side), nil)
}
