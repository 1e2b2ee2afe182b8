package editor

import (
	"errors"
	"math"

	"github.com/rendis/flowedit/internal/canvas"
	"github.com/rendis/flowedit/internal/geometry"
	"github.com/rendis/flowedit/internal/logging"
	"github.com/rendis/flowedit/pkg/schema"
)

// Modifiers is the set of keyboard modifiers held during an input event.
type Modifiers uint8

const (
	ModCtrl Modifiers = 1 << iota
	ModShift
)

// Has reports whether m includes all of o.
func (m Modifiers) Has(o Modifiers) bool { return m&o == o }

// Key identifies the keys the editor reacts to.
type Key int

const (
	KeyNone Key = iota
	KeyA
	KeyDelete
	KeyEscape
)

type origin struct {
	id  canvas.NodeID
	pos geometry.Point
}

// gesture is the state captured at pointer-down.
type gesture struct {
	down       geometry.Point
	node       canvas.NodeID
	nodeOrigin geometry.Point
	source     canvas.AnchorRef
	transient  canvas.LinkID

	marquee    geometry.Rect
	hasMarquee bool

	envelopeOrigin geometry.Point
	origins        []origin
}

// Marquee returns the rubber-band rectangle while selecting.
func (e *Editor) Marquee() (geometry.Rect, bool) {
	return e.g.marquee, e.g.hasMarquee
}

// Transient returns the in-progress link while drawing.
func (e *Editor) Transient() (canvas.LinkID, bool) {
	return e.g.transient, !e.g.transient.IsZero()
}

// PointerDown starts a gesture at a screen position.
func (e *Editor) PointerDown(screen geometry.Point, mods Modifiers) {
	p := e.toCanvas(screen)
	e.mouse = p
	if e.status.current != schema.StatusNone {
		e.finishGesture()
	}
	e.g = gesture{down: p}

	if env, ok := e.Envelope(); ok && env.Contains(p) {
		e.beginMultiMove(env)
		return
	}

	if _, onLink := e.canvas.TopmostAt(p, canvas.CapLink); !onLink {
		e.pressItem(p)
	}
	e.pressCanvas(p, mods)
}

func (e *Editor) beginMultiMove(env geometry.Rect) {
	e.g.envelopeOrigin = env.Origin()
	for _, n := range e.canvas.Nodes() {
		if n.Selected() && n.Draggable() {
			e.g.origins = append(e.g.origins, origin{id: n.ID(), pos: n.Position()})
		}
	}
	e.cursor = CursorMove
	e.transition(schema.StatusMultiMoving)
}

// pressItem starts Drawing from a visible anchor or Moving on a node body.
func (e *Editor) pressItem(p geometry.Point) {
	if hit, ok := e.canvas.TopmostAt(p, canvas.CapAnchor); ok {
		id, err := e.canvas.BeginTransient(hit.Anchor())
		if err != nil {
			e.log.DebugContext(e.ctx, "begin transient link failed", "error", err)
			return
		}
		e.g.node = hit.Node
		e.g.source = hit.Anchor()
		e.g.transient = id
		e.cursor = CursorCross
		e.transition(schema.StatusDrawing)
		return
	}

	hit, ok := e.canvas.TopmostAt(p, canvas.CapNode)
	if !ok {
		return
	}
	n, _ := e.canvas.Node(hit.Node)
	e.g.node = n.ID()
	e.g.nodeOrigin = n.Position()
	e.transition(schema.StatusMoving)
	if n.Draggable() {
		e.cursor = CursorMove
	}
}

// pressCanvas selects the element under p, exclusively unless Ctrl is
// held, then starts a marquee when no item gesture began.
func (e *Editor) pressCanvas(p geometry.Point, mods Modifiers) {
	e.BeginBatch()
	target, ok := e.canvas.TopmostAt(p, canvas.CapSelectable|canvas.CapAnchor)
	if ok {
		e.selectHit(target, true)
	}
	if !mods.Has(ModCtrl) {
		for _, n := range e.canvas.Nodes() {
			if ok && target.Kind != canvas.HitLink && n.ID() == target.Node {
				continue
			}
			_ = e.SelectNode(n.ID(), false)
		}
		for _, l := range e.canvas.Links() {
			if l.Transient() || (ok && target.Kind == canvas.HitLink && l.ID() == target.Link) {
				continue
			}
			_ = e.SelectLink(l.ID(), false)
		}
	}
	e.EndBatch()

	switch e.status.current {
	case schema.StatusMoving, schema.StatusDrawing:
		return
	}
	e.g.marquee = geometry.Rect{X: p.X, Y: p.Y}
	e.g.hasMarquee = true
	e.transition(schema.StatusSelecting)
}

func (e *Editor) selectHit(h canvas.Hit, selected bool) {
	if h.Kind == canvas.HitLink {
		_ = e.SelectLink(h.Link, selected)
		return
	}
	_ = e.SelectNode(h.Node, selected)
}

// PointerMove updates the active gesture. Without the button held only the
// tracked mouse position changes.
func (e *Editor) PointerMove(screen geometry.Point, pressed bool) {
	p := e.toCanvas(screen)
	e.mouse = p
	if !pressed {
		return
	}

	switch e.status.current {
	case schema.StatusMultiMoving:
		e.dragSelection(p)
	case schema.StatusSelecting:
		e.dragMarquee(p)
	case schema.StatusDrawing:
		if err := e.canvas.DragTransient(e.g.transient, p); err != nil {
			e.log.DebugContext(e.ctx, "drag transient link failed", "error", err)
		}
	case schema.StatusMoving:
		e.dragNode(p)
	}
}

func (e *Editor) dragSelection(p geometry.Point) {
	v := p.Sub(e.g.down)
	env := geometry.Max(e.g.envelopeOrigin.Add(v), geometry.Point{})
	e.sel.envelope = e.sel.envelope.MoveTo(env)

	for _, o := range e.g.origins {
		offset := o.pos.Sub(e.g.envelopeOrigin)
		floor := geometry.Point{X: offset.X, Y: offset.Y}
		pos := geometry.Max(o.pos.Add(v), floor)
		if err := e.canvas.MoveNode(o.id, pos); err != nil {
			e.log.DebugContext(e.ctx, "move node failed", "node_id", o.id.String(), "error", err)
		}
	}
}

func (e *Editor) dragMarquee(p geometry.Point) {
	r := geometry.RectFromPoints(e.g.down, p)
	e.g.marquee = r
	if r.Width < 1 && r.Height < 1 {
		return
	}
	e.BeginBatch()
	for _, n := range e.canvas.Nodes() {
		_ = e.SelectNode(n.ID(), r.ContainsAll(n.Outline()))
	}
	e.EndBatch()
}

func (e *Editor) dragNode(p geometry.Point) {
	n, ok := e.canvas.Node(e.g.node)
	if !ok || !n.Draggable() {
		return
	}
	pos := e.g.nodeOrigin.Add(p.Sub(e.g.down)).Round()
	w, h := e.canvas.Extent()
	b := n.Bounds()
	pos.X = math.Max(0, math.Min(pos.X, w-b.Width))
	pos.Y = math.Max(0, math.Min(pos.Y, h-b.Height))
	if err := e.canvas.MoveNode(n.ID(), pos); err != nil {
		e.log.DebugContext(e.ctx, "move node failed", "node_id", n.ID().String(), "error", err)
	}
}

// PointerUp completes the active gesture. Cleanup always runs.
func (e *Editor) PointerUp(screen geometry.Point) {
	p := e.toCanvas(screen)
	e.mouse = p
	defer e.finishGesture()

	switch e.status.current {
	case schema.StatusDrawing:
		if hit, ok := e.canvas.TopmostAt(p, canvas.CapAnchor); ok {
			e.connect(e.g.source, hit.Anchor())
		}
	case schema.StatusMoving:
		if n, ok := e.canvas.Node(e.g.node); ok && n.Draggable() {
			_ = e.canvas.SnapNode(n.ID())
		}
	case schema.StatusMultiMoving:
		grid := e.canvas.GridSize()
		e.sel.envelope = e.sel.envelope.MoveTo(geometry.SnapPoint(e.sel.envelope.Origin(), grid))
		for _, n := range e.canvas.Nodes() {
			if n.Selected() && n.Draggable() {
				_ = e.canvas.SnapNode(n.ID())
			}
		}
	}
}

func (e *Editor) connect(from, to canvas.AnchorRef) {
	ctx := logging.WithNodeID(logging.WithGesture(e.ctx, string(schema.StatusDrawing)), from.Node.String())
	ok, err := e.canvas.Connect(from, to)
	if err == nil {
		if ok {
			e.log.DebugContext(ctx, "connection created", "from_side", from.Side.String(), "to_side", to.Side.String())
		}
		return
	}
	if !schema.IsRejection(err) {
		e.log.ErrorContext(ctx, "connection failed", "error", err)
		return
	}
	msg := err.Error()
	var ee *schema.EditorError
	if errors.As(err, &ee) {
		msg = ee.Message
		e.publish(schema.EventConnectionRejected, from.Node.String(), "", map[string]any{"code": ee.Code, "message": ee.Message})
	}
	e.log.InfoContext(ctx, "connection rejected", "error", err)
	e.notifier.Warn(msg)
}

// finishGesture removes gesture artifacts and returns to None.
func (e *Editor) finishGesture() {
	if !e.g.transient.IsZero() {
		if err := e.canvas.DeleteLink(e.g.transient); err != nil {
			e.log.DebugContext(e.ctx, "remove transient link failed", "error", err)
		}
	}
	e.g = gesture{}
	e.cursor = CursorDefault
	if e.status.current != schema.StatusNone {
		e.transition(schema.StatusNone)
	}
}

// Cancel aborts the active gesture. Dragged nodes return to where the
// gesture found them and no connection is made.
func (e *Editor) Cancel() {
	switch e.status.current {
	case schema.StatusNone:
		return
	case schema.StatusMoving:
		if n, ok := e.canvas.Node(e.g.node); ok && n.Draggable() {
			_ = e.canvas.MoveNode(n.ID(), e.g.nodeOrigin)
		}
	case schema.StatusMultiMoving:
		for _, o := range e.g.origins {
			_ = e.canvas.MoveNode(o.id, o.pos)
		}
		e.updateEnvelope()
	}
	e.finishGesture()
}

// KeyDown handles editor shortcuts: Ctrl+A selects all, Delete removes the
// selected links and Escape cancels the active gesture.
func (e *Editor) KeyDown(key Key, mods Modifiers) {
	switch key {
	case KeyA:
		if mods.Has(ModCtrl) {
			e.SelectAll()
		}
	case KeyDelete:
		if n := e.DeleteSelectedLinks(); n > 0 {
			e.log.DebugContext(e.ctx, "deleted links", "count", n)
		}
	case KeyEscape:
		e.Cancel()
	}
}
