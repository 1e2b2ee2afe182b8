// Package collection mirrors an externally owned, ordered item collection
// onto a canvas.
package collection

import (
	"fmt"
	"slices"

	"github.com/rendis/flowedit/internal/canvas"
	"github.com/rendis/flowedit/pkg/schema"
)

// Action is the kind of a collection change.
type Action int

const (
	ActionAdd Action = iota
	ActionRemove
	ActionReplace
	ActionReset
)

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionRemove:
		return "remove"
	case ActionReplace:
		return "replace"
	case ActionReset:
		return "reset"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Change describes one mutation. Index is the position of the first
// affected item; it is -1 for resets.
type Change struct {
	Action   Action
	Index    int
	NewItems []any
	OldItems []any
}

// Source is an ordered item sequence that reports its changes.
type Source interface {
	Items() []any
	// Subscribe registers fn for every later change. The returned func
	// cancels the subscription.
	Subscribe(fn func(Change)) (cancel func())
}

type subscriber struct {
	id uint64
	fn func(Change)
}

// Collection is an in-memory Source. Listeners run synchronously, in
// subscription order, after each mutation.
type Collection struct {
	items  []any
	subs   []subscriber
	nextID uint64
}

// New returns a collection holding items.
func New(items ...any) *Collection {
	return &Collection{items: slices.Clone(items)}
}

// Items returns a copy of the current items.
func (c *Collection) Items() []any {
	return slices.Clone(c.items)
}

// Len returns the number of items.
func (c *Collection) Len() int { return len(c.items) }

// Subscribe implements Source.
func (c *Collection) Subscribe(fn func(Change)) func() {
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	return func() {
		c.subs = slices.DeleteFunc(c.subs, func(s subscriber) bool { return s.id == id })
	}
}

func (c *Collection) notify(ch Change) {
	for _, s := range slices.Clone(c.subs) {
		s.fn(ch)
	}
}

// Add appends items.
func (c *Collection) Add(items ...any) {
	if len(items) == 0 {
		return
	}
	index := len(c.items)
	c.items = append(c.items, items...)
	c.notify(Change{Action: ActionAdd, Index: index, NewItems: slices.Clone(items)})
}

// Insert places item at index.
func (c *Collection) Insert(index int, item any) error {
	if index < 0 || index > len(c.items) {
		return indexError(index, len(c.items))
	}
	c.items = slices.Insert(c.items, index, item)
	c.notify(Change{Action: ActionAdd, Index: index, NewItems: []any{item}})
	return nil
}

// Remove deletes the first item identical to item and reports whether one
// was found.
func (c *Collection) Remove(item any) bool {
	i := c.indexOf(item)
	if i < 0 {
		return false
	}
	_ = c.RemoveAt(i)
	return true
}

// RemoveAt deletes the item at index.
func (c *Collection) RemoveAt(index int) error {
	if index < 0 || index >= len(c.items) {
		return indexError(index, len(c.items))
	}
	old := c.items[index]
	c.items = slices.Delete(c.items, index, index+1)
	c.notify(Change{Action: ActionRemove, Index: index, OldItems: []any{old}})
	return nil
}

// Replace swaps the item at index for item.
func (c *Collection) Replace(index int, item any) error {
	if index < 0 || index >= len(c.items) {
		return indexError(index, len(c.items))
	}
	old := c.items[index]
	c.items[index] = item
	c.notify(Change{Action: ActionReplace, Index: index, NewItems: []any{item}, OldItems: []any{old}})
	return nil
}

// Reset replaces the whole content with items.
func (c *Collection) Reset(items ...any) {
	c.items = slices.Clone(items)
	c.notify(Change{Action: ActionReset, Index: -1})
}

func (c *Collection) indexOf(item any) int {
	for i, it := range c.items {
		if canvas.SameItem(it, item) {
			return i
		}
	}
	return -1
}

func indexError(index, length int) error {
	return schema.NewErrorf(schema.ErrCodeOutOfRange, "index %d out of range [0,%d)", index, length).
		WithDetails(map[string]any{"index": index, "length": length})
}
