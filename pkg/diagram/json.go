package diagram

import (
	"encoding/json"
	"fmt"
	"io"
)

type jsonDiagram struct {
	Title     string        `json:"title"`
	Direction Direction     `json:"direction"`
	Nodes     []jsonNode    `json:"nodes"`
	Clusters  []jsonCluster `json:"clusters"`
	Edges     []jsonEdge    `json:"edges"`
}

type jsonNode struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Category Category `json:"category"`
	Cluster  string   `json:"cluster,omitempty"`
}

type jsonCluster struct {
	Label string   `json:"label"`
	Nodes []string `json:"nodes"`
}

type jsonEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WriteJSON encodes the diagram's graph model as indented JSON.
// Nodes and edges appear in declaration order; cluster members are node IDs.
func (d *Diagram) WriteJSON(w io.Writer) error {
	out := jsonDiagram{
		Title:     d.title,
		Direction: d.direction,
		Nodes:     make([]jsonNode, len(d.nodes)),
		Clusters:  make([]jsonCluster, len(d.clusters)),
		Edges:     make([]jsonEdge, len(d.edges)),
	}

	for i, n := range d.nodes {
		out.Nodes[i] = jsonNode{ID: n.id, Label: n.label, Category: n.category, Cluster: n.Cluster()}
	}
	for i, c := range d.clusters {
		ids := make([]string, len(c.nodes))
		for j, n := range c.nodes {
			ids[j] = n.id
		}
		out.Clusters[i] = jsonCluster{Label: c.label, Nodes: ids}
	}
	for i, e := range d.edges {
		out.Edges[i] = jsonEdge{From: e.From.id, To: e.To.id}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
