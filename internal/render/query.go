package render

import (
	"context"
	"sync"

	"github.com/itchyny/gojq"

	"github.com/rendis/flowedit/internal/geometry"
	"github.com/rendis/flowedit/pkg/schema"
)

// Document returns s as a plain JSON object. Numbers are float64 and
// enums are their string names, which is what jq expects.
func (s *Snapshot) Document() map[string]any {
	nodes := make([]any, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		anchors := make([]any, 0, len(n.Anchors))
		for _, a := range n.Anchors {
			anchors = append(anchors, map[string]any{
				"side":      a.Side.String(),
				"center":    pointDoc(a.Center),
				"visible":   a.Visible,
				"connected": a.Connected,
			})
		}
		nodes = append(nodes, map[string]any{
			"id":        n.ID,
			"label":     n.Label,
			"kind":      string(n.Kind),
			"shape":     string(n.Shape),
			"bounds":    rectDoc(n.Bounds),
			"anchors":   anchors,
			"selected":  n.Selected,
			"draggable": n.Draggable,
		})
	}

	links := make([]any, 0, len(s.Links))
	for _, l := range s.Links {
		points := make([]any, 0, len(l.Points))
		for _, p := range l.Points {
			points = append(points, pointDoc(p))
		}
		links = append(links, map[string]any{
			"id":        l.ID,
			"from":      l.From,
			"to":        l.To,
			"jump":      l.Jump,
			"points":    points,
			"selected":  l.Selected,
			"transient": l.Transient,
		})
	}

	doc := map[string]any{
		"title":     s.Title,
		"editor_id": s.EditorID,
		"status":    string(s.Status),
		"scale":     s.Scale,
		"nodes":     nodes,
		"links":     links,
		"marquee":   nil,
		"envelope":  nil,
	}
	if s.Marquee != nil {
		doc["marquee"] = rectDoc(*s.Marquee)
	}
	if s.Envelope != nil {
		doc["envelope"] = rectDoc(*s.Envelope)
	}
	return doc
}

func pointDoc(p geometry.Point) map[string]any {
	return map[string]any{"x": p.X, "y": p.Y}
}

func rectDoc(r geometry.Rect) map[string]any {
	return map[string]any{"x": r.X, "y": r.Y, "width": r.Width, "height": r.Height}
}

// Query evaluates jq expressions against snapshots. Compiled expressions
// are cached, so a Query is cheap to reuse and safe for concurrent use.
type Query struct {
	mu    sync.RWMutex
	cache map[string]*gojq.Code
}

// NewQuery creates an empty query cache.
func NewQuery() *Query {
	return &Query{cache: make(map[string]*gojq.Code)}
}

// Run evaluates expression against the document of s and returns every
// output value.
func (q *Query) Run(ctx context.Context, expression string, s *Snapshot) ([]any, error) {
	if expression == "" {
		return nil, schema.NewError(schema.ErrCodeQuery, "empty jq expression")
	}
	code, err := q.compile(expression)
	if err != nil {
		return nil, err
	}

	iter := code.RunWithContext(ctx, s.Document())
	var results []any
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, schema.NewErrorf(schema.ErrCodeQuery, "jq evaluation failed for %q: %s", expression, err.Error()).
				WithCause(err).
				WithDetails(map[string]any{"expression": expression})
		}
		results = append(results, v)
	}
	return results, nil
}

func (q *Query) compile(expression string) (*gojq.Code, error) {
	q.mu.RLock()
	code, ok := q.cache[expression]
	q.mu.RUnlock()
	if ok {
		return code, nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if code, ok := q.cache[expression]; ok {
		return code, nil
	}

	parsed, err := gojq.Parse(expression)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeQuery, "jq parse error in %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}
	// no $ENV inside queries
	code, err = gojq.Compile(parsed, gojq.WithEnvironLoader(func() []string { return nil }))
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeQuery, "jq compile error in %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}
	q.cache[expression] = code
	return code, nil
}
