package render

import (
	"fmt"
	"strings"

	"github.com/rendis/flowedit/pkg/schema"
)

// RenderMermaid renders the topology of s as a Mermaid flowchart. Next
// links are solid, jump links dotted. Transient links are left out.
func RenderMermaid(s *Snapshot) string {
	var b strings.Builder

	b.WriteString("graph TD\n")
	if s.Title != "" {
		fmt.Fprintf(&b, "    %%%% %s\n", s.Title)
	}

	for _, n := range s.Nodes {
		fmt.Fprintf(&b, "    %s\n", mermaidNodeDef(n))
	}

	for _, l := range s.Links {
		if l.Transient {
			continue
		}
		arrow := "-->"
		if l.Jump {
			arrow = "-.->|jump|"
		}
		fmt.Fprintf(&b, "    %s %s %s\n", mermaidSafeID(l.From), arrow, mermaidSafeID(l.To))
	}

	var selected []string
	for _, n := range s.Nodes {
		if n.Selected {
			selected = append(selected, mermaidSafeID(n.ID))
		}
	}
	if len(selected) > 0 {
		b.WriteString("\n")
		b.WriteString("    classDef selected stroke:#1a5276,stroke-width:3px\n")
		fmt.Fprintf(&b, "    class %s selected\n", strings.Join(selected, ","))
	}

	return b.String()
}

// mermaidNodeDef returns a Mermaid node definition shaped by step kind.
func mermaidNodeDef(n *Node) string {
	id := mermaidSafeID(n.ID)
	label := mermaidEscapeLabel(firstLine(n.Label))

	switch n.Kind {
	case schema.StepKindBegin, schema.StepKindEnd:
		return fmt.Sprintf("%s((%q))", id, label)
	case schema.StepKindCondition:
		return fmt.Sprintf("%s{%q}", id, label)
	case schema.StepKindReference:
		return fmt.Sprintf("%s[/%q/]", id, label)
	default:
		return fmt.Sprintf("%s[%q]", id, label)
	}
}

// mermaidSafeID converts a node handle to a Mermaid-safe identifier.
func mermaidSafeID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", " ", "_")
	return r.Replace(id)
}

func mermaidEscapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "'")
}

// firstLine returns only the first line of a multi-line label.
func firstLine(s string) string {
	if i := strings.Index(s, "\n"); i >= 0 {
		return s[:i]
	}
	return s
}
