// Package render turns an editor into a flat, renderer-neutral snapshot and
// draws that snapshot as text, Mermaid or a graphviz image.
package render

import (
	"github.com/rendis/flowedit/internal/geometry"
	"github.com/rendis/flowedit/pkg/schema"
)

// Snapshot is the intermediate representation used by all renderers.
type Snapshot struct {
	Title    string
	EditorID string
	Status   schema.EditorStatus
	Scale    float64
	Nodes    []*Node
	Links    []*Link
	Marquee  *geometry.Rect
	Envelope *geometry.Rect
}

// Node is a realized node in canvas coordinates.
type Node struct {
	ID        string
	Label     string
	Kind      schema.StepKind
	Shape     schema.Shape
	Bounds    geometry.Rect
	Outline   []geometry.Point
	Anchors   []Anchor
	Selected  bool
	Draggable bool
}

// Anchor is one docking point of a node.
type Anchor struct {
	Side      schema.Side
	Center    geometry.Point
	Visible   bool
	Connected bool
}

// Link is a drawn connection. Points and Arrow are in canvas coordinates.
type Link struct {
	ID        string
	From      string
	To        string
	Jump      bool
	Points    [4]geometry.Point
	Arrow     [3]geometry.Point
	Selected  bool
	Transient bool
}

// Node returns the node with the given ID, or nil.
func (s *Snapshot) Node(id string) *Node {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}
