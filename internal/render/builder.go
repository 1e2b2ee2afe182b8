package render

import (
	"fmt"

	"github.com/rendis/flowedit/internal/canvas"
	"github.com/rendis/flowedit/internal/editor"
	"github.com/rendis/flowedit/pkg/schema"
)

// Build captures the current state of e. Unrealized nodes are left out;
// call Flush on the canvas first to include them.
func Build(e *editor.Editor) *Snapshot {
	c := e.Canvas()
	s := &Snapshot{
		EditorID: e.ID(),
		Status:   e.Status(),
		Scale:    e.Scale(),
	}

	for _, n := range c.Nodes() {
		if !n.Realized() {
			continue
		}
		s.Nodes = append(s.Nodes, nodeView(n))
	}

	for _, l := range c.Links() {
		s.Links = append(s.Links, &Link{
			ID:        l.ID().String(),
			From:      l.Start().Node.String(),
			To:        l.End().Node.String(),
			Jump:      l.Start().Side == schema.SideRight,
			Points:    l.Points(),
			Arrow:     l.Arrow(),
			Selected:  l.Selected(),
			Transient: l.Transient(),
		})
	}

	if r, ok := e.Marquee(); ok {
		s.Marquee = &r
	}
	if r, ok := e.Envelope(); ok {
		s.Envelope = &r
	}
	return s
}

func nodeView(n *canvas.Node) *Node {
	v := &Node{
		ID:        n.ID().String(),
		Label:     Label(n),
		Kind:      n.Kind(),
		Shape:     n.Shape(),
		Bounds:    n.Bounds(),
		Outline:   n.Outline(),
		Selected:  n.Selected(),
		Draggable: n.Draggable(),
	}
	for _, a := range n.Anchors() {
		v.Anchors = append(v.Anchors, Anchor{
			Side:      a.Side(),
			Center:    n.AnchorCenter(a.Side()),
			Visible:   n.AnchorVisible(a.Side()),
			Connected: a.Connected(),
		})
	}
	return v
}

// Label returns the display text of a node: the item itself for strings,
// String() for fmt.Stringer items, otherwise the node ID.
func Label(n *canvas.Node) string {
	switch it := n.Item().(type) {
	case string:
		return it
	case fmt.Stringer:
		return it.String()
	default:
		return n.ID().String()
	}
}
