package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/choicefsm/pkg/domain"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	VisitedStates []string
	CurrentState  string
}

// GenerateMermaid produces a Mermaid flowchart from an inspected graph.
// It applies semantic styling:
// - Initial state: ((Circle))
// - Choicepoint: {Diamond}
// - Container state: subgraph holding its substates
// - Default: [Rectangle]
// Choicepoint branches are labelled true/false; the false branch is dotted.
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(nodes []domain.Node, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	children := make(map[string][]domain.Node)
	for _, n := range nodes {
		if n.Kind == domain.KindState && n.Parent != "" {
			children[n.Parent] = append(children[n.Parent], n)
		}
	}

	for _, n := range nodes {
		if n.Kind == domain.KindState && n.Parent == "" {
			writeState(&sb, n, children, 1)
		}
	}
	for _, n := range nodes {
		if n.Kind == domain.KindChoicepoint {
			fmt.Fprintf(&sb, "    %s{\"%s\"}\n", mermaidID(n.Kind, n.ID), escape(n.ID))
		}
	}

	for _, n := range nodes {
		from := mermaidID(n.Kind, n.ID)
		for _, e := range n.Edges {
			to := mermaidID(e.ToKind, e.To)
			label := escape(e.Label())
			if e.HasAction {
				label += " / action"
			}
			if e.Branch != nil && !*e.Branch {
				fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", from, label, to)
				continue
			}
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", from, label, to)
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.VisitedStates {
			safeID := mermaidID(domain.KindState, id)
			if id != "" && !seen[safeID] && id != overlay.CurrentState {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}
		if overlay.CurrentState != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", mermaidID(domain.KindState, overlay.CurrentState))
		}
	}

	return sb.String()
}

func writeState(sb *strings.Builder, n domain.Node, children map[string][]domain.Node, depth int) {
	indent := strings.Repeat("    ", depth)
	id := mermaidID(domain.KindState, n.ID)

	if n.Container {
		fmt.Fprintf(sb, "%ssubgraph %s [\"%s\"]\n", indent, id, escape(n.ID))
		for _, c := range children[n.ID] {
			writeState(sb, c, children, depth+1)
		}
		fmt.Fprintf(sb, "%send\n", indent)
		return
	}

	opener, closer := "[", "]"
	if n.Initial {
		opener, closer = "((", "))"
	}
	fmt.Fprintf(sb, "%s%s%s\"%s\"%s\n", indent, id, opener, escape(n.ID), closer)
}

// mermaidID prefixes the kind so a state and a choicepoint may share an id.
func mermaidID(kind domain.Kind, id string) string {
	prefix := "s_"
	if kind == domain.KindChoicepoint {
		prefix = "c_"
	}
	return prefix + sanitizeMermaidID(id)
}

// sanitizeMermaidID keeps ASCII letters and digits, doubles '_' and writes
// any other rune as _<hex>_, so distinct ids never share a node.
func sanitizeMermaidID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '_':
			sb.WriteString("__")
		default:
			fmt.Fprintf(&sb, "_%x_", r)
		}
	}
	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
