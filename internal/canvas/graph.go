package canvas

import (
	"reflect"

	"github.com/rendis/flowedit/pkg/schema"
)

// edgeKind distinguishes the two relation families of a node.
type edgeKind int

const (
	edgeNext edgeKind = iota
	edgeJump
)

func (k edgeKind) String() string {
	if k == edgeJump {
		return "jump"
	}
	return "next"
}

// sides returns the source and target anchor sides that carry an edge.
func (k edgeKind) sides() (from, to schema.Side) {
	if k == edgeJump {
		return schema.SideRight, schema.SideLeft
	}
	return schema.SideBottom, schema.SideTop
}

// slots returns the relation slots written on the source and target items.
func (k edgeKind) slots() (from, to schema.Relation) {
	if k == edgeJump {
		return schema.RelationJumpTarget, schema.RelationJumpSource
	}
	return schema.RelationNext, schema.RelationPrevious
}

// edgeForSlot maps a relation slot to its edge kind and whether the slot
// owner is the source of the edge.
func edgeForSlot(slot schema.Relation) (kind edgeKind, outgoing bool) {
	switch slot {
	case schema.RelationNext:
		return edgeNext, true
	case schema.RelationPrevious:
		return edgeNext, false
	case schema.RelationJumpTarget:
		return edgeJump, true
	default:
		return edgeJump, false
	}
}

// edgeForSide maps a source anchor side to the edge it starts.
func edgeForSide(side schema.Side) edgeKind {
	if side == schema.SideRight || side == schema.SideLeft {
		return edgeJump
	}
	return edgeNext
}

type edgeEnd struct {
	node NodeID
	kind edgeKind
}

// Edge is a directed relation between two nodes.
type Edge struct {
	From NodeID
	To   NodeID
	Jump bool
}

// relationGraph is the adjacency index of relations. out maps a source to its
// target and in maps a target back to its source, per edge kind, so every
// edge is visible from both ends.
type relationGraph struct {
	out map[edgeEnd]NodeID
	in  map[edgeEnd]NodeID
}

func newRelationGraph() relationGraph {
	return relationGraph{
		out: make(map[edgeEnd]NodeID),
		in:  make(map[edgeEnd]NodeID),
	}
}

func (g *relationGraph) target(from NodeID, kind edgeKind) (NodeID, bool) {
	to, ok := g.out[edgeEnd{from, kind}]
	return to, ok
}

func (g *relationGraph) source(to NodeID, kind edgeKind) (NodeID, bool) {
	from, ok := g.in[edgeEnd{to, kind}]
	return from, ok
}

func (g *relationGraph) add(from, to NodeID, kind edgeKind) {
	g.out[edgeEnd{from, kind}] = to
	g.in[edgeEnd{to, kind}] = from
}

func (g *relationGraph) remove(from NodeID, kind edgeKind) (NodeID, bool) {
	to, ok := g.out[edgeEnd{from, kind}]
	if !ok {
		return NodeID{}, false
	}
	delete(g.out, edgeEnd{from, kind})
	delete(g.in, edgeEnd{to, kind})
	return to, true
}

// incident returns every edge touching id, outgoing first.
func (g *relationGraph) incident(id NodeID) []Edge {
	var edges []Edge
	for _, kind := range []edgeKind{edgeNext, edgeJump} {
		if to, ok := g.target(id, kind); ok {
			edges = append(edges, Edge{From: id, To: to, Jump: kind == edgeJump})
		}
	}
	for _, kind := range []edgeKind{edgeNext, edgeJump} {
		if from, ok := g.source(id, kind); ok {
			edges = append(edges, Edge{From: from, To: id, Jump: kind == edgeJump})
		}
	}
	return edges
}

func (g *relationGraph) reset() {
	clear(g.out)
	clear(g.in)
}

// SameItem compares backing items by identity. Items whose dynamic type is
// not comparable never match.
//
// Identity is Go equality: pointers match only themselves, but values of
// comparable non-pointer types (strings, numbers, structs) match whenever
// they are equal. Hosts that may hold two equal values in one collection
// must wrap them in pointers, or the canvas treats them as the same item.
func SameItem(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// Edges returns every relation edge, in node order of the source.
func (c *Canvas) Edges() []Edge {
	var edges []Edge
	for _, id := range c.order {
		for _, kind := range []edgeKind{edgeNext, edgeJump} {
			if to, ok := c.graph.target(id, kind); ok {
				edges = append(edges, Edge{From: id, To: to, Jump: kind == edgeJump})
			}
		}
	}
	return edges
}

// Partner returns the node on the other end of slot.
func (c *Canvas) Partner(id NodeID, slot schema.Relation) (NodeID, bool) {
	kind, outgoing := edgeForSlot(slot)
	if outgoing {
		return c.graph.target(id, kind)
	}
	return c.graph.source(id, kind)
}

// Relation returns the backing item related to id through slot, or nil.
func (c *Canvas) Relation(id NodeID, slot schema.Relation) any {
	partner, ok := c.Partner(id, slot)
	if !ok {
		return nil
	}
	n, ok := c.Node(partner)
	if !ok {
		return nil
	}
	return n.item
}

// SetRelation points slot of node id at the node wrapping target. Both ends
// are updated and the link is created once both anchors are realized and
// visible. A nil target clears the slot on both ends and deletes its link.
// Replacing an existing relation clears the old edge first.
func (c *Canvas) SetRelation(id NodeID, slot schema.Relation, target any) error {
	n, err := c.mustNode(id)
	if err != nil {
		return err
	}
	kind, outgoing := edgeForSlot(slot)

	if target == nil {
		if outgoing {
			c.unlink(n.id, kind)
		} else if from, ok := c.graph.source(n.id, kind); ok {
			c.unlink(from, kind)
		}
		return nil
	}

	partner := c.Resolve(target)
	if partner.IsPlaceholder() {
		return nil
	}
	if partner.id == n.id {
		return schema.NewErrorf(schema.ErrCodeSelfConnection, "cannot set %s of a node to itself", slot).WithNode(n.id.String())
	}
	if outgoing {
		c.link(n, partner, kind)
	} else {
		c.link(partner, n, kind)
	}
	return nil
}

func (c *Canvas) link(from, to *Node, kind edgeKind) {
	if cur, ok := c.graph.target(from.id, kind); ok && cur == to.id {
		c.ensureLink(from, to, kind)
		return
	}
	c.unlink(from.id, kind)
	if prev, ok := c.graph.source(to.id, kind); ok {
		c.unlink(prev, kind)
	}

	c.graph.add(from.id, to.id, kind)
	fromSlot, toSlot := kind.slots()
	mirror(from.item, fromSlot, to.item)
	mirror(to.item, toSlot, from.item)
	c.emit(Event{Type: schema.EventRelationSet, Node: from.id, Partner: to.id, Relation: fromSlot})
	c.log.Debug("relation set", "from", from.id.String(), "to", to.id.String(), "kind", kind.String())

	c.ensureLink(from, to, kind)
}

func (c *Canvas) unlink(from NodeID, kind edgeKind) {
	to, ok := c.graph.remove(from, kind)
	if !ok {
		return
	}
	fromSide, _ := kind.sides()
	if src, ok := c.Node(from); ok {
		if l := src.Anchor(fromSide).link; !l.IsZero() {
			c.removeLink(l)
		}
	}

	fromSlot, toSlot := kind.slots()
	if src, ok := c.Node(from); ok {
		mirror(src.item, fromSlot, nil)
	}
	if dst, ok := c.Node(to); ok {
		mirror(dst.item, toSlot, nil)
	}
	c.emit(Event{Type: schema.EventRelationCleared, Node: from, Partner: to, Relation: fromSlot})
	c.log.Debug("relation cleared", "from", from.String(), "to", to.String(), "kind", kind.String())
}

// ensureLink creates or relayouts the link for an existing edge. Nothing is
// drawn until both nodes are realized and both anchors visible.
func (c *Canvas) ensureLink(from, to *Node, kind edgeKind) {
	if !from.realized || !to.realized {
		return
	}
	fromSide, toSide := kind.sides()
	if !from.AnchorVisible(fromSide) || !to.AnchorVisible(toSide) {
		return
	}
	sa, ta := from.Anchor(fromSide), to.Anchor(toSide)
	if l, ok := c.Link(sa.link); ok {
		l.Layout(from.AnchorCenter(fromSide), to.AnchorCenter(toSide))
		return
	}

	l := &Link{start: sa.Ref(), end: ta.Ref(), curved: c.curved}
	index, gen := c.links.insert(l)
	l.id = LinkID{index: index, gen: gen}
	c.linkOrder = append(c.linkOrder, l.id)
	sa.link = l.id
	ta.link = l.id
	l.Layout(from.AnchorCenter(fromSide), to.AnchorCenter(toSide))
	c.emit(Event{Type: schema.EventLinkCreated, Node: from.id, Partner: to.id, Link: l.id})
}

func mirror(item any, slot schema.Relation, target any) {
	if li, ok := item.(Linked); ok {
		li.SetRelation(slot, target)
	}
}
