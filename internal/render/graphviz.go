package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/rendis/flowedit/pkg/schema"
)

// RenderImage renders the topology of s as a PNG image using graphviz.
// Returns the PNG bytes.
func RenderImage(ctx context.Context, s *Snapshot) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("render: create graphviz: %w", err)
	}
	defer gv.Close()

	gv.SetLayout(graphviz.DOT)

	graph, err := gv.Graph()
	if err != nil {
		return nil, fmt.Errorf("render: create graph: %w", err)
	}
	defer graph.Close()

	graph.SetRankDir(cgraph.TBRank)
	if s.Title != "" {
		graph.SetLabel(s.Title)
	}

	gvNodes := make(map[string]*cgraph.Node, len(s.Nodes))
	for _, n := range s.Nodes {
		gvNode, nErr := graph.CreateNodeByName(n.ID)
		if nErr != nil {
			return nil, fmt.Errorf("render: create node %s: %w", n.ID, nErr)
		}
		gvNode.SetLabel(firstLine(n.Label))
		applyNodeStyle(gvNode, n)
		gvNodes[n.ID] = gvNode
	}

	for _, l := range s.Links {
		if l.Transient {
			continue
		}
		from, to := gvNodes[l.From], gvNodes[l.To]
		if from == nil || to == nil {
			continue
		}
		e, eErr := graph.CreateEdgeByName(l.ID, from, to)
		if eErr != nil {
			return nil, fmt.Errorf("render: create edge %s: %w", l.ID, eErr)
		}
		if l.Jump {
			e.SetStyle(cgraph.DashedEdgeStyle)
			e.SetLabel("jump")
		}
		if l.Selected {
			e.SetColor("#1a5276")
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: render PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// applyNodeStyle sets graphviz attributes from the node's shape and state.
func applyNodeStyle(gvNode *cgraph.Node, n *Node) {
	switch n.Shape {
	case schema.ShapeDiamond:
		gvNode.SetShape(cgraph.DiamondShape)
	case schema.ShapeParallelogram:
		gvNode.SetShape(cgraph.ParallelogramShape)
	default:
		gvNode.SetShape(cgraph.BoxShape)
	}
	if n.Kind == schema.StepKindBegin || n.Kind == schema.StepKindEnd {
		gvNode.SetStyle(cgraph.RoundedNodeStyle)
	}

	if n.Selected {
		gvNode.SetStyle(cgraph.FilledNodeStyle)
		gvNode.SetFillColor("#1a5276")
		gvNode.SetFontColor("white")
	}
}
