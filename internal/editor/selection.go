package editor

import (
	"github.com/rendis/flowedit/internal/canvas"
	"github.com/rendis/flowedit/internal/geometry"
	"github.com/rendis/flowedit/pkg/schema"
)

// selection is the materialized view over the selected flags.
type selection struct {
	items       []any
	batching    bool
	envelope    geometry.Rect
	hasEnvelope bool
	onChanged   []func(items []any)
}

// OnSelectedItemsChanged registers fn to receive the new selected items on
// every committed change.
func (e *Editor) OnSelectedItemsChanged(fn func(items []any)) {
	e.sel.onChanged = append(e.sel.onChanged, fn)
}

// SelectedItems returns the backing items of selected nodes in canvas order.
func (e *Editor) SelectedItems() []any {
	out := make([]any, len(e.sel.items))
	copy(out, e.sel.items)
	return out
}

// Envelope returns the bounding rectangle of a multi-selection. It exists
// only while two or more nodes are selected.
func (e *Editor) Envelope() (geometry.Rect, bool) {
	return e.sel.envelope, e.sel.hasEnvelope
}

// BeginBatch suspends selection recomputation until EndBatch.
func (e *Editor) BeginBatch() {
	e.sel.batching = true
}

// EndBatch resumes recomputation and commits once. It is safe to call
// without a matching BeginBatch.
func (e *Editor) EndBatch() {
	e.sel.batching = false
	e.RecomputeSelectedItems()
}

// RecomputeSelectedItems gathers the selected items. The new list is
// committed, and listeners notified, unless both the old and new lists are
// empty. The envelope is recomputed either way.
func (e *Editor) RecomputeSelectedItems() {
	var items []any
	for _, n := range e.canvas.Nodes() {
		if n.Selected() {
			items = append(items, n.Item())
		}
	}
	if len(items) != 0 || len(e.sel.items) != 0 {
		e.sel.items = items
		for _, fn := range e.sel.onChanged {
			fn(e.SelectedItems())
		}
		e.publish(schema.EventSelectionChanged, "", "", map[string]any{"count": len(items)})
	}
	e.updateEnvelope()
}

func (e *Editor) updateEnvelope() {
	var env geometry.Rect
	count := 0
	for _, n := range e.canvas.Nodes() {
		if !n.Selected() {
			continue
		}
		if count == 0 {
			env = n.Bounds()
		} else {
			env = env.Union(n.Bounds())
		}
		count++
	}
	e.sel.envelope = env
	e.sel.hasEnvelope = count > 1
}

// SelectNode sets the selection flag of a node.
func (e *Editor) SelectNode(id canvas.NodeID, selected bool) error {
	changed, err := e.canvas.SetNodeSelected(id, selected)
	if err != nil || !changed {
		return err
	}
	evType := schema.EventNodeUnselected
	if selected {
		evType = schema.EventNodeSelected
	}
	e.publish(evType, id.String(), "", nil)
	if !e.sel.batching {
		e.RecomputeSelectedItems()
	}
	return nil
}

// SelectLink sets the selection flag of a link.
func (e *Editor) SelectLink(id canvas.LinkID, selected bool) error {
	changed, err := e.canvas.SetLinkSelected(id, selected)
	if err != nil || !changed {
		return err
	}
	evType := schema.EventLinkUnselected
	if selected {
		evType = schema.EventLinkSelected
	}
	e.publish(evType, "", id.String(), nil)
	return nil
}

// SelectAll selects every node.
func (e *Editor) SelectAll() { e.selectNodes(func(bool) bool { return true }) }

// UnselectAll clears the selection of every node.
func (e *Editor) UnselectAll() { e.selectNodes(func(bool) bool { return false }) }

// Invert flips the selection of every node.
func (e *Editor) Invert() { e.selectNodes(func(cur bool) bool { return !cur }) }

func (e *Editor) selectNodes(next func(current bool) bool) {
	e.BeginBatch()
	for _, n := range e.canvas.Nodes() {
		_ = e.SelectNode(n.ID(), next(n.Selected()))
	}
	e.EndBatch()
}

// SelectedLinks returns the selected committed links.
func (e *Editor) SelectedLinks() []canvas.LinkID {
	var out []canvas.LinkID
	for _, l := range e.canvas.Links() {
		if l.Selected() && !l.Transient() {
			out = append(out, l.ID())
		}
	}
	return out
}

// DeleteSelectedLinks deletes every selected link together with the
// relation it draws.
func (e *Editor) DeleteSelectedLinks() int {
	deleted := 0
	for _, id := range e.SelectedLinks() {
		if err := e.canvas.DeleteLink(id); err != nil {
			e.log.DebugContext(e.ctx, "delete link failed", "link_id", id.String(), "error", err)
			continue
		}
		deleted++
	}
	return deleted
}
