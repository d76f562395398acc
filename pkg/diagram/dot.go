package diagram

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	fontName  = "Sans-Serif"
	edgeColor = "#7B8894"
)

// DOT converts the diagram to Graphviz DOT source.
//
// The output is deterministic: top-level nodes come first, then one
// "cluster_<n>" subgraph per cluster, then the edges in the order they were
// added. Only the rankdir attribute depends on the layout direction.
func (d *Diagram) DOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  graph [rankdir=%s, label=%s, labelloc=t, fontname=%s, fontsize=15, pad=\"2.0\", splines=ortho, nodesep=\"0.60\", ranksep=\"0.75\", bgcolor=white];\n",
		d.direction, quote(d.title), quote(fontName))
	fmt.Fprintf(&buf, "  node [style=\"rounded,filled\", fontname=%s, fontsize=13, margin=\"0.2,0.1\"];\n", quote(fontName))
	fmt.Fprintf(&buf, "  edge [color=%s, fontname=%s, fontsize=13];\n", quote(edgeColor), quote(fontName))

	top := d.TopLevelNodes()
	if len(top) > 0 {
		buf.WriteString("\n")
	}
	for _, n := range top {
		fmt.Fprintf(&buf, "  %s [%s];\n", quote(n.id), strings.Join(fmtAttrs(n), ", "))
	}

	for i, c := range d.clusters {
		buf.WriteString("\n")
		fmt.Fprintf(&buf, "  subgraph %s {\n", quote(fmt.Sprintf("cluster_%d", i)))
		fmt.Fprintf(&buf, "    graph [label=%s, labeljust=l, style=rounded, bgcolor=\"#E5F5FD\", pencolor=\"#AEB6BE\", fontsize=12];\n", quote(c.label))
		for _, n := range c.nodes {
			fmt.Fprintf(&buf, "    %s [%s];\n", quote(n.id), strings.Join(fmtAttrs(n), ", "))
		}
		buf.WriteString("  }\n")
	}

	if len(d.edges) > 0 {
		buf.WriteString("\n")
	}
	for _, e := range d.edges {
		fmt.Fprintf(&buf, "  %s -> %s;\n", quote(e.From.id), quote(e.To.id))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n *Node) []string {
	s := n.category.style()
	return []string{
		"label=" + quote(n.label),
		"shape=" + s.shape,
		"fillcolor=" + quote(s.fill),
	}
}

// quote renders s as a DOT double-quoted string. Unlike strconv.Quote it
// leaves non-ASCII runes untouched, which Graphviz reads as UTF-8.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
