package canvas

import (
	"github.com/rendis/flowedit/internal/geometry"
	"github.com/rendis/flowedit/pkg/schema"
)

// Capability selects what a hit-test may return.
type Capability int

const (
	CapAnchor Capability = 1 << iota
	CapNode
	CapLink

	// CapSelectable matches anything that carries a selection flag.
	CapSelectable = CapNode | CapLink
)

const (
	// AnchorRadius is the hit radius around an anchor center.
	AnchorRadius = 6
	// LinkTolerance is the hit distance around a link curve.
	LinkTolerance = 4
)

// HitKind tells which element a Hit refers to.
type HitKind int

const (
	HitNone HitKind = iota
	HitAnchor
	HitNode
	HitLink
)

// Hit is the result of a hit-test.
type Hit struct {
	Kind HitKind
	Node NodeID
	Side schema.Side
	Link LinkID
}

// Anchor returns the anchor address of an anchor hit.
func (h Hit) Anchor() AnchorRef { return AnchorRef{Node: h.Node, Side: h.Side} }

// TopmostAt returns the topmost element under p matching caps. Links are
// stacked above nodes, later elements above earlier ones, and a node's
// anchors above its body. A node body covering p stops the search, so
// elements it hides are never returned. Transient links and unrealized
// anchors are never hit.
func (c *Canvas) TopmostAt(p geometry.Point, caps Capability) (Hit, bool) {
	if caps&CapLink != 0 {
		for i := len(c.linkOrder) - 1; i >= 0; i-- {
			l, ok := c.Link(c.linkOrder[i])
			if !ok || l.transient {
				continue
			}
			if l.Distance(p) <= LinkTolerance {
				return Hit{Kind: HitLink, Link: l.id}, true
			}
		}
	}
	if caps&(CapAnchor|CapNode) == 0 {
		return Hit{}, false
	}
	for i := len(c.order) - 1; i >= 0; i-- {
		n, ok := c.Node(c.order[i])
		if !ok {
			continue
		}
		if caps&CapAnchor != 0 && n.realized {
			for _, side := range schema.Sides {
				if !n.AnchorVisible(side) {
					continue
				}
				if n.AnchorCenter(side).Sub(p).Len() <= AnchorRadius {
					return Hit{Kind: HitAnchor, Node: n.id, Side: side}, true
				}
			}
		}
		if n.bounds.Contains(p) {
			// the body hides everything stacked below it
			if caps&CapNode != 0 {
				return Hit{Kind: HitNode, Node: n.id}, true
			}
			return Hit{}, false
		}
	}
	return Hit{}, false
}

// NodesIn returns the nodes whose outline lies fully inside r, boundary
// inclusive, in canvas order.
func (c *Canvas) NodesIn(r geometry.Rect) []*Node {
	var out []*Node
	for _, n := range c.Nodes() {
		if r.ContainsAll(n.Outline()) {
			out = append(out, n)
		}
	}
	return out
}
