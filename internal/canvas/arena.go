package canvas

import "fmt"

// NodeID is a generational handle to a node owned by a Canvas.
// The zero value never refers to a node.
type NodeID struct {
	index uint32
	gen   uint32
}

// IsZero reports whether id is the zero handle.
func (id NodeID) IsZero() bool { return id.gen == 0 }

func (id NodeID) String() string {
	if id.IsZero() {
		return "n-"
	}
	return fmt.Sprintf("n%d.%d", id.index, id.gen)
}

// LinkID is a generational handle to a link owned by a Canvas.
// The zero value never refers to a link.
type LinkID struct {
	index uint32
	gen   uint32
}

// IsZero reports whether id is the zero handle.
func (id LinkID) IsZero() bool { return id.gen == 0 }

func (id LinkID) String() string {
	if id.IsZero() {
		return "l-"
	}
	return fmt.Sprintf("l%d.%d", id.index, id.gen)
}

type slot[T any] struct {
	gen uint32
	val *T
}

// arena stores values in reusable slots. A slot's generation is bumped on
// every removal so stale handles stop resolving.
type arena[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

func (a *arena[T]) insert(v *T) (index, gen uint32) {
	if n := len(a.free); n > 0 {
		index = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		index = uint32(len(a.slots))
		a.slots = append(a.slots, slot[T]{})
	}
	s := &a.slots[index]
	s.gen++
	s.val = v
	a.live++
	return index, s.gen
}

func (a *arena[T]) get(index, gen uint32) (*T, bool) {
	if gen == 0 || int(index) >= len(a.slots) {
		return nil, false
	}
	s := a.slots[index]
	if s.gen != gen || s.val == nil {
		return nil, false
	}
	return s.val, true
}

func (a *arena[T]) remove(index, gen uint32) bool {
	if _, ok := a.get(index, gen); !ok {
		return false
	}
	s := &a.slots[index]
	s.val = nil
	a.free = append(a.free, index)
	a.live--
	return true
}

func (a *arena[T]) len() int { return a.live }

func (a *arena[T]) reset() {
	for i := range a.slots {
		if a.slots[i].val != nil {
			a.slots[i].val = nil
			a.free = append(a.free, uint32(i))
		}
	}
	a.live = 0
}
