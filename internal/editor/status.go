package editor

import (
	"slices"

	"github.com/rendis/flowedit/pkg/schema"
)

// TransitionHook is called before or after a status transition. An error
// from a before hook cancels the transition.
type TransitionHook func(from, to schema.EditorStatus) error

// ValidStatusTransitions lists the allowed gesture transitions. Every gesture
// starts from None and returns to it.
var ValidStatusTransitions = map[schema.EditorStatus][]schema.EditorStatus{
	schema.StatusNone: {
		schema.StatusMoving,
		schema.StatusDrawing,
		schema.StatusSelecting,
		schema.StatusMultiMoving,
	},
	schema.StatusMoving:      {schema.StatusNone},
	schema.StatusDrawing:     {schema.StatusNone},
	schema.StatusSelecting:   {schema.StatusNone},
	schema.StatusMultiMoving: {schema.StatusNone},
}

type statusHookKey struct {
	from, to schema.EditorStatus
}

// statusMachine tracks the gesture status of one editor.
type statusMachine struct {
	current schema.EditorStatus
	before  map[statusHookKey][]TransitionHook
	after   map[statusHookKey][]TransitionHook
}

func newStatusMachine() statusMachine {
	return statusMachine{
		current: schema.StatusNone,
		before:  make(map[statusHookKey][]TransitionHook),
		after:   make(map[statusHookKey][]TransitionHook),
	}
}

func (m *statusMachine) onBefore(from, to schema.EditorStatus, hook TransitionHook) {
	key := statusHookKey{from, to}
	m.before[key] = append(m.before[key], hook)
}

func (m *statusMachine) onAfter(from, to schema.EditorStatus, hook TransitionHook) {
	key := statusHookKey{from, to}
	m.after[key] = append(m.after[key], hook)
}

// transition moves to status to. Invalid transitions leave the machine
// untouched and return an INVALID_TRANSITION error.
func (m *statusMachine) transition(to schema.EditorStatus) error {
	from := m.current
	if !slices.Contains(ValidStatusTransitions[from], to) {
		return schema.NewErrorf(schema.ErrCodeInvalidTransition,
			"invalid status transition: %s -> %s", from, to).
			WithDetails(map[string]any{"from": string(from), "to": string(to)})
	}

	key := statusHookKey{from, to}
	for _, hook := range m.before[key] {
		if err := hook(from, to); err != nil {
			return err
		}
	}
	m.current = to
	for _, hook := range m.after[key] {
		if err := hook(from, to); err != nil {
			return err
		}
	}
	return nil
}
