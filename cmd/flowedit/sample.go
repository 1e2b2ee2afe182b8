package main

import (
	"github.com/rendis/flowedit/internal/canvas"
	"github.com/rendis/flowedit/pkg/schema"
)

// step is the workflow item the host edits. It carries its own relation
// fields, which the canvas keeps in step with the graph.
type step struct {
	Name string
	Kind schema.StepKind
	X, Y float64
	W, H float64

	rel map[schema.Relation]any
}

func newStep(name string, kind schema.StepKind, x, y float64) *step {
	return &step{Name: name, Kind: kind, X: x, Y: y, W: 120, H: 40, rel: make(map[schema.Relation]any)}
}

func (s *step) String() string { return s.Name }

func (s *step) NodeSpec() canvas.NodeSpec {
	return canvas.NodeSpec{Kind: s.Kind, X: s.X, Y: s.Y, Width: s.W, Height: s.H}
}

func (s *step) Relation(slot schema.Relation) any { return s.rel[slot] }

func (s *step) SetRelation(slot schema.Relation, target any) {
	if target == nil {
		delete(s.rel, slot)
		return
	}
	s.rel[slot] = target
}

// sampleFlow returns a small workflow: start, fetch, a check that either
// ends or jumps to a retry reference.
func sampleFlow() []any {
	start := newStep("start", schema.StepKindBegin, 40, 20)
	fetch := newStep("fetch", schema.StepKindNormal, 40, 120)
	check := newStep("check", schema.StepKindCondition, 40, 220)
	check.H = 60
	retry := newStep("retry", schema.StepKindReference, 260, 220)
	retry.H = 60
	end := newStep("end", schema.StepKindEnd, 40, 340)

	start.rel[schema.RelationNext] = fetch
	fetch.rel[schema.RelationNext] = check
	check.rel[schema.RelationNext] = end
	check.rel[schema.RelationJumpTarget] = retry

	return []any{start, fetch, check, retry, end}
}

// findStep returns the step named name among items.
func findStep(items []any, name string) *step {
	for _, it := range items {
		if s, ok := it.(*step); ok && s.Name == name {
			return s
		}
	}
	return nil
}
