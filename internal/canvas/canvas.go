// Package canvas holds the editable graph: nodes, their anchors, the links
// between them and the relation graph the links are drawn from. All state is
// addressed through generational handles and mutated on the caller's
// goroutine.
package canvas

import (
	"log/slog"
	"slices"

	"github.com/rendis/flowedit/internal/geometry"
	"github.com/rendis/flowedit/pkg/schema"
)

const (
	// DefaultGridSize is the adsorption grid in canvas units.
	DefaultGridSize = 20
	// DefaultWidth and DefaultHeight bound node movement when no extent is set.
	DefaultWidth  = 4000
	DefaultHeight = 3000
)

// Event describes a structural change on the canvas.
type Event struct {
	Type     string
	Node     NodeID
	Partner  NodeID
	Link     LinkID
	Relation schema.Relation
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithGridSize sets the adsorption grid. Non-positive sizes are ignored.
func WithGridSize(size float64) Option {
	return func(c *Canvas) {
		if size > 0 {
			c.gridSize = size
		}
	}
}

// WithExtent sets the canvas size that bounds dragged nodes.
func WithExtent(width, height float64) Option {
	return func(c *Canvas) {
		c.width, c.height = width, height
	}
}

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Canvas) {
		if l != nil {
			c.log = l
		}
	}
}

// WithStraightLinks makes new links straight instead of curved.
func WithStraightLinks() Option {
	return func(c *Canvas) { c.curved = false }
}

// Canvas owns nodes, links and the relation graph.
type Canvas struct {
	nodes     arena[Node]
	links     arena[Link]
	order     []NodeID
	linkOrder []LinkID
	graph     relationGraph
	pending   []NodeID

	gridSize      float64
	width, height float64
	curved        bool

	listeners []func(Event)
	log       *slog.Logger
}

// New creates an empty canvas.
func New(opts ...Option) *Canvas {
	c := &Canvas{
		graph:    newRelationGraph(),
		gridSize: DefaultGridSize,
		width:    DefaultWidth,
		height:   DefaultHeight,
		curved:   true,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GridSize returns the adsorption grid.
func (c *Canvas) GridSize() float64 { return c.gridSize }

// Extent returns the canvas width and height.
func (c *Canvas) Extent() (width, height float64) { return c.width, c.height }

// SetExtent resizes the canvas. Existing nodes are not moved.
func (c *Canvas) SetExtent(width, height float64) {
	c.width, c.height = width, height
}

// Logger returns the canvas logger.
func (c *Canvas) Logger() *slog.Logger { return c.log }

// OnChange registers fn to receive every structural change.
func (c *Canvas) OnChange(fn func(Event)) {
	c.listeners = append(c.listeners, fn)
}

func (c *Canvas) emit(ev Event) {
	for _, fn := range c.listeners {
		fn(ev)
	}
}

// AddNode places item on the canvas. The position is adsorbed to the grid.
// The node is realized, and its links drawn, on the next Flush.
func (c *Canvas) AddNode(item any, spec NodeSpec) NodeID {
	n := newNode(item, spec)
	n.bounds = n.bounds.MoveTo(geometry.SnapPoint(n.bounds.Origin(), c.gridSize))
	index, gen := c.nodes.insert(n)
	n.id = NodeID{index: index, gen: gen}
	for i := range n.anchors {
		n.anchors[i].node = n.id
	}
	c.order = append(c.order, n.id)
	c.markDirty(n)
	c.emit(Event{Type: schema.EventNodeAdded, Node: n.id})
	return n.id
}

// Node returns the node for id.
func (c *Canvas) Node(id NodeID) (*Node, bool) {
	return c.nodes.get(id.index, id.gen)
}

func (c *Canvas) mustNode(id NodeID) (*Node, error) {
	n, ok := c.Node(id)
	if !ok {
		return nil, schema.NewErrorf(schema.ErrCodeNotFound, "node %s not found", id)
	}
	return n, nil
}

// Nodes returns all nodes in insertion order.
func (c *Canvas) Nodes() []*Node {
	out := make([]*Node, 0, len(c.order))
	for _, id := range c.order {
		if n, ok := c.Node(id); ok {
			out = append(out, n)
		}
	}
	return out
}

// NodeCount returns the number of nodes on the canvas.
func (c *Canvas) NodeCount() int { return c.nodes.len() }

// Link returns the link for id.
func (c *Canvas) Link(id LinkID) (*Link, bool) {
	return c.links.get(id.index, id.gen)
}

// Links returns all links, transient ones included, in creation order.
func (c *Canvas) Links() []*Link {
	out := make([]*Link, 0, len(c.linkOrder))
	for _, id := range c.linkOrder {
		if l, ok := c.Link(id); ok {
			out = append(out, l)
		}
	}
	return out
}

// LinkCount returns the number of committed links.
func (c *Canvas) LinkCount() int {
	count := 0
	for _, l := range c.Links() {
		if !l.transient {
			count++
		}
	}
	return count
}

// Find returns the node wrapping item.
func (c *Canvas) Find(item any) (*Node, bool) {
	for _, n := range c.Nodes() {
		if SameItem(n.item, item) {
			return n, true
		}
	}
	return nil, false
}

// Resolve returns the node wrapping item. When none exists an empty
// placeholder is returned instead; it is not on the canvas and every canvas
// operation treats it as absent.
func (c *Canvas) Resolve(item any) *Node {
	if n, ok := c.Find(item); ok {
		return n
	}
	c.log.Warn("relation target not realized, using placeholder node")
	n := newNode(item, NodeSpec{})
	n.placeholder = true
	return n
}

// RemoveNode deletes a node. Realized nodes delete their incident links
// first; any relation left without a link is then cleared on both ends.
func (c *Canvas) RemoveNode(id NodeID) error {
	n, err := c.mustNode(id)
	if err != nil {
		return err
	}
	if n.realized {
		for i := range n.anchors {
			if l := n.anchors[i].link; !l.IsZero() {
				if err := c.DeleteLink(l); err != nil {
					return err
				}
			}
		}
	}
	for _, e := range c.graph.incident(id) {
		c.unlink(e.From, edgeKindOf(e))
	}

	c.nodes.remove(id.index, id.gen)
	c.order = slices.DeleteFunc(c.order, func(o NodeID) bool { return o == id })
	c.emit(Event{Type: schema.EventNodeRemoved, Node: id})
	return nil
}

// Clear removes every node and link without writing relation changes back
// to the items.
func (c *Canvas) Clear() {
	removed := c.order
	c.nodes.reset()
	c.links.reset()
	c.graph.reset()
	c.order = nil
	c.linkOrder = nil
	c.pending = nil
	for _, id := range removed {
		c.emit(Event{Type: schema.EventNodeRemoved, Node: id})
	}
}

// MoveNode sets the top-left corner of a node and relayouts its links.
func (c *Canvas) MoveNode(id NodeID, p geometry.Point) error {
	n, err := c.mustNode(id)
	if err != nil {
		return err
	}
	if n.bounds.Origin() == p {
		return nil
	}
	n.bounds = n.bounds.MoveTo(p)
	c.updateCurves(n)
	c.emit(Event{Type: schema.EventNodeMoved, Node: id})
	return nil
}

// ResizeNode grows or shrinks a node. Each dimension only changes when the
// result stays positive.
func (c *Canvas) ResizeNode(id NodeID, dw, dh float64) error {
	n, err := c.mustNode(id)
	if err != nil {
		return err
	}
	if !n.resize(dw, dh) {
		return nil
	}
	c.updateCurves(n)
	c.emit(Event{Type: schema.EventNodeResized, Node: id})
	return nil
}

// FinishResize adsorbs both dimensions to the grid with a floor of one cell.
// Links follow on the next Flush.
func (c *Canvas) FinishResize(id NodeID) error {
	n, err := c.mustNode(id)
	if err != nil {
		return err
	}
	n.bounds.Width = geometry.SnapSize(n.bounds.Width, c.gridSize)
	n.bounds.Height = geometry.SnapSize(n.bounds.Height, c.gridSize)
	c.markDirty(n)
	c.emit(Event{Type: schema.EventNodeResized, Node: id})
	return nil
}

// SnapNode adsorbs the node position to the grid. Links follow on the next
// Flush.
func (c *Canvas) SnapNode(id NodeID) error {
	n, err := c.mustNode(id)
	if err != nil {
		return err
	}
	n.bounds = n.bounds.MoveTo(geometry.SnapPoint(n.bounds.Origin(), c.gridSize))
	c.markDirty(n)
	return nil
}

// MarkDirty schedules a node for link recomputation on the next Flush.
func (c *Canvas) MarkDirty(id NodeID) error {
	n, err := c.mustNode(id)
	if err != nil {
		return err
	}
	c.markDirty(n)
	return nil
}

func (c *Canvas) markDirty(n *Node) {
	if n.dirty {
		return
	}
	n.dirty = true
	c.pending = append(c.pending, n.id)
}

// Flush realizes pending nodes and recomputes links of dirty ones. Nodes
// removed since they were marked are skipped. It returns the number of nodes
// processed.
func (c *Canvas) Flush() int {
	pending := c.pending
	c.pending = nil
	done := 0
	for _, id := range pending {
		n, ok := c.Node(id)
		if !ok {
			c.log.Debug("skipping flush of removed node", "node_id", id.String())
			continue
		}
		n.dirty = false
		n.realized = true
		c.updateCurves(n)
		done++
	}
	return done
}

// UpdateCurves relayouts every link of a node, creating links for relations
// that have none yet.
func (c *Canvas) UpdateCurves(id NodeID) error {
	n, err := c.mustNode(id)
	if err != nil {
		return err
	}
	c.updateCurves(n)
	return nil
}

func (c *Canvas) updateCurves(n *Node) {
	if !n.realized {
		return
	}
	for _, e := range c.graph.incident(n.id) {
		from, okFrom := c.Node(e.From)
		to, okTo := c.Node(e.To)
		if okFrom && okTo {
			c.ensureLink(from, to, edgeKindOf(e))
		}
	}
}

// SetNodeSelected sets the selection flag and reports whether it changed.
func (c *Canvas) SetNodeSelected(id NodeID, selected bool) (bool, error) {
	n, err := c.mustNode(id)
	if err != nil {
		return false, err
	}
	if n.selected == selected {
		return false, nil
	}
	n.selected = selected
	return true, nil
}

// SetLinkSelected sets the selection flag and reports whether it changed.
func (c *Canvas) SetLinkSelected(id LinkID, selected bool) (bool, error) {
	l, err := c.mustLink(id)
	if err != nil {
		return false, err
	}
	if l.selected == selected {
		return false, nil
	}
	l.selected = selected
	return true, nil
}

func edgeKindOf(e Edge) edgeKind {
	if e.Jump {
		return edgeJump
	}
	return edgeNext
}
