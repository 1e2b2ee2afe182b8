// Package editor turns pointer and keyboard input into canvas mutations.
// Each Editor owns its own gesture state; editors never share status.
package editor

import (
	"context"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/rendis/flowedit/internal/canvas"
	"github.com/rendis/flowedit/internal/events"
	"github.com/rendis/flowedit/internal/geometry"
	"github.com/rendis/flowedit/internal/logging"
	"github.com/rendis/flowedit/pkg/schema"
)

const (
	// ScaleStep is the zoom change per wheel notch.
	ScaleStep = 0.2
	MinScale  = 0.2
	MaxScale  = 3.0
)

// Cursor is the pointer shape the host should show.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorCross
	CursorMove
)

func (c Cursor) String() string {
	switch c {
	case CursorCross:
		return "cross"
	case CursorMove:
		return "move"
	default:
		return "default"
	}
}

// Notifier shows short user-facing warnings. Calls are fire-and-forget.
type Notifier interface {
	Warn(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

// Warn calls f(message).
func (f NotifierFunc) Warn(message string) { f(message) }

type logNotifier struct {
	log *slog.Logger
	ctx context.Context
}

func (n logNotifier) Warn(message string) {
	n.log.WarnContext(n.ctx, message)
}

// Option configures an Editor.
type Option func(*Editor)

// WithID sets the editor ID used in logs and events.
func WithID(id string) Option {
	return func(e *Editor) {
		if id != "" {
			e.id = id
		}
	}
}

// WithHub publishes editor events to h.
func WithHub(h events.Hub) Option {
	return func(e *Editor) { e.hub = h }
}

// WithNotifier routes user warnings to n. The default logs them.
func WithNotifier(n Notifier) Option {
	return func(e *Editor) { e.notifier = n }
}

// WithLogger sets the logger. Nil keeps the canvas logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.log = l
		}
	}
}

// Editor is the interactive front of a canvas.
type Editor struct {
	id       string
	canvas   *canvas.Canvas
	hub      events.Hub
	notifier Notifier
	log      *slog.Logger
	ctx      context.Context

	status statusMachine
	sel    selection
	g      gesture

	scale  float64
	cursor Cursor
	mouse  geometry.Point
}

// New creates an editor over c.
func New(c *canvas.Canvas, opts ...Option) *Editor {
	e := &Editor{
		id:     uuid.NewString(),
		canvas: c,
		log:    c.Logger(),
		status: newStatusMachine(),
		scale:  1,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.ctx = logging.WithEditorID(context.Background(), e.id)
	if e.notifier == nil {
		e.notifier = logNotifier{log: e.log, ctx: e.ctx}
	}
	c.OnChange(e.relay)
	return e
}

// ID returns the editor ID.
func (e *Editor) ID() string { return e.id }

// Canvas returns the edited canvas.
func (e *Editor) Canvas() *canvas.Canvas { return e.canvas }

// Status returns the current gesture status.
func (e *Editor) Status() schema.EditorStatus { return e.status.current }

// OnBeforeTransition registers a hook run before the status moves from
// from to to.
func (e *Editor) OnBeforeTransition(from, to schema.EditorStatus, hook TransitionHook) {
	e.status.onBefore(from, to, hook)
}

// OnTransition registers a hook run after the status moves from from to to.
func (e *Editor) OnTransition(from, to schema.EditorStatus, hook TransitionHook) {
	e.status.onAfter(from, to, hook)
}

// Cursor returns the cursor hint for the host.
func (e *Editor) Cursor() Cursor { return e.cursor }

// MousePosition returns the last pointer position in canvas coordinates.
func (e *Editor) MousePosition() geometry.Point { return e.mouse }

// Scale returns the zoom factor.
func (e *Editor) Scale() float64 { return e.scale }

// SetScale sets the zoom factor, rounded to one decimal and clamped to
// [MinScale, MaxScale].
func (e *Editor) SetScale(s float64) {
	if math.IsNaN(s) {
		return
	}
	s = math.Round(s*10) / 10
	s = math.Max(MinScale, math.Min(MaxScale, s))
	if s == e.scale {
		return
	}
	e.scale = s
	e.publish(schema.EventScaleChanged, "", "", map[string]any{"scale": s})
}

// Wheel zooms one step in for a positive delta and out otherwise.
func (e *Editor) Wheel(delta float64) {
	if delta > 0 {
		e.SetScale(e.scale + ScaleStep)
	} else {
		e.SetScale(e.scale - ScaleStep)
	}
}

func (e *Editor) toCanvas(screen geometry.Point) geometry.Point {
	return screen.Scale(1 / e.scale)
}

// transition moves the status machine. A rejected transition is logged and
// the machine is forced back to None.
func (e *Editor) transition(to schema.EditorStatus) {
	from := e.status.current
	if err := e.status.transition(to); err != nil {
		e.log.ErrorContext(e.ctx, "status transition failed", "from", string(from), "to", string(to), "error", err)
		e.status.current = schema.StatusNone
		to = schema.StatusNone
	}
	if from != to {
		e.publish(schema.EventStatusChanged, "", "", map[string]any{"from": string(from), "to": string(to)})
	}
}

// relay republishes canvas changes and keeps the selection in step with
// node additions and removals.
func (e *Editor) relay(ev canvas.Event) {
	var node, link string
	if !ev.Node.IsZero() {
		node = ev.Node.String()
	}
	if !ev.Link.IsZero() {
		link = ev.Link.String()
	}
	var payload map[string]any
	if !ev.Partner.IsZero() {
		payload = map[string]any{"partner": ev.Partner.String(), "relation": ev.Relation.String()}
	}
	e.publish(ev.Type, node, link, payload)

	switch ev.Type {
	case schema.EventNodeAdded, schema.EventNodeRemoved:
		if !e.sel.batching {
			e.RecomputeSelectedItems()
		}
	}
}

func (e *Editor) publish(eventType, node, link string, payload map[string]any) {
	if e.hub == nil {
		return
	}
	ev := events.Event{EditorID: e.id, NodeID: node, LinkID: link, EventType: eventType}
	if payload != nil {
		ev.Payload = payload
	}
	if err := e.hub.Publish(e.ctx, ev); err != nil {
		e.log.DebugContext(e.ctx, "publish failed", "event", eventType, "error", err)
	}
}
