package collection

import (
	"log/slog"

	"github.com/rendis/flowedit/internal/canvas"
	"github.com/rendis/flowedit/pkg/schema"
)

// Adapter keeps the nodes of a canvas in step with a Source.
type Adapter struct {
	canvas *canvas.Canvas
	source Source
	cancel func()
	log    *slog.Logger
}

// NewAdapter returns an adapter bound to c with no source.
func NewAdapter(c *canvas.Canvas) *Adapter {
	return &Adapter{canvas: c, log: c.Logger().With("component", "collection")}
}

// Source returns the bound source, or nil.
func (a *Adapter) Source() Source { return a.source }

// SetSource detaches the current source, clears the canvas and loads src.
// A nil src leaves the canvas empty.
func (a *Adapter) SetSource(src Source) {
	a.Close()
	a.canvas.Clear()
	a.source = src
	if src == nil {
		return
	}
	a.load(src.Items())
	a.cancel = src.Subscribe(a.apply)
}

// Close cancels the source subscription. Nodes stay on the canvas.
func (a *Adapter) Close() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

// load adds a node per item, then seeds every relation slot so targets
// later in the sequence resolve.
func (a *Adapter) load(items []any) {
	ids := make([]canvas.NodeID, len(items))
	for i, item := range items {
		ids[i] = a.canvas.AddNode(item, canvas.SpecFor(item))
	}
	for i, item := range items {
		a.seed(ids[i], item, schema.Relations[:]...)
	}
	a.log.Debug("source loaded", "items", len(items))
}

// seed copies the given relation slots of a Linked item into the graph.
func (a *Adapter) seed(id canvas.NodeID, item any, slots ...schema.Relation) {
	l, ok := item.(canvas.Linked)
	if !ok {
		return
	}
	for _, slot := range slots {
		target := l.Relation(slot)
		if target == nil {
			continue
		}
		if err := a.canvas.SetRelation(id, slot, target); err != nil {
			a.log.Warn("seed relation failed", "node_id", id.String(), "relation", slot.String(), "error", err)
		}
	}
}

func (a *Adapter) apply(ch Change) {
	switch ch.Action {
	case ActionAdd:
		for _, item := range ch.NewItems {
			a.add(item)
		}
	case ActionRemove:
		for _, item := range ch.OldItems {
			a.remove(item)
		}
	case ActionReplace:
		for i, item := range ch.NewItems {
			a.add(item)
			if i < len(ch.OldItems) {
				a.remove(ch.OldItems[i])
			}
		}
	case ActionReset:
		a.canvas.Clear()
		if a.source != nil {
			a.load(a.source.Items())
		}
	}
}

func (a *Adapter) add(item any) {
	id := a.canvas.AddNode(item, canvas.SpecFor(item))
	a.seed(id, item, schema.Relations[:]...)
}

func (a *Adapter) remove(item any) {
	n, ok := a.canvas.Find(item)
	if !ok {
		a.log.Debug("removed item has no node")
		return
	}
	if err := a.canvas.RemoveNode(n.ID()); err != nil {
		a.log.Warn("remove node failed", "node_id", n.ID().String(), "error", err)
	}
}
