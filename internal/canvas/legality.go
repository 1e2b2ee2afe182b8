package canvas

import (
	"github.com/rendis/flowedit/pkg/schema"
)

// CheckConnection reports whether a drag from anchor from released over
// anchor to may create a relation. Rules are evaluated in order and the first
// failing one is returned. from == to is not a connection attempt and yields
// nil; Connect treats it as a no-op.
func (c *Canvas) CheckConnection(from, to AnchorRef) error {
	if from == to {
		return nil
	}
	a, err := c.Anchor(from)
	if err != nil {
		return err
	}
	b, err := c.Anchor(to)
	if err != nil {
		return err
	}
	node := from.Node.String()

	switch sa, sb := from.Side, to.Side; {
	case from.Node == to.Node:
		return schema.NewError(schema.ErrCodeSelfConnection, "cannot target self").WithNode(node)
	case a.Connected() || b.Connected():
		return schema.NewError(schema.ErrCodeConnectionExists, "connection exists, delete it first").WithNode(node)
	case sa == schema.SideLeft || sb == schema.SideRight:
		return schema.NewError(schema.ErrCodeInvalidSource, "target anchor cannot be a connection source").WithNode(node)
	case sa == schema.SideTop || sb == schema.SideBottom:
		return schema.NewError(schema.ErrCodeInvalidPairing, "previous/next must be set from Bottom to Top").WithNode(node)
	case sa == schema.SideRight && sb == schema.SideTop:
		return schema.NewError(schema.ErrCodeInvalidJumpTarget, "jump source may only target a jump-target anchor").WithNode(node)
	case sa == schema.SideBottom && sb == schema.SideLeft:
		return schema.NewError(schema.ErrCodeInvalidNextTarget, "next may only target a previous anchor").WithNode(node)
	}

	src, _ := c.Node(from.Node)
	dst, _ := c.Node(to.Node)
	if !src.AnchorVisible(from.Side) || !dst.AnchorVisible(to.Side) {
		return schema.NewError(schema.ErrCodeHidden, "anchor is hidden for this step kind").WithNode(node)
	}
	return nil
}

// Connect checks the drag from anchor from to anchor to and, when legal,
// sets the relation it describes: Right to Left sets a jump, Bottom to Top
// sets next. It reports whether a relation was created. A rejected
// connection leaves the canvas unchanged.
func (c *Canvas) Connect(from, to AnchorRef) (bool, error) {
	if from == to {
		return false, nil
	}
	if err := c.CheckConnection(from, to); err != nil {
		return false, err
	}
	src, _ := c.Node(from.Node)
	dst, _ := c.Node(to.Node)
	c.link(src, dst, edgeForSide(from.Side))
	return true, nil
}
