package diagram

import (
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/cddiagram/pkg/errors"
)

// idNamespace scopes the name-based node UUIDs to this tool.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/matzehuels/cddiagram"))

// Node is a typed, labeled vertex. Nodes are created through [Diagram.Node] or
// [Cluster.Node] and cannot be modified afterwards.
type Node struct {
	id       string
	label    string
	category Category
	cluster  *Cluster
	owner    *Diagram
}

// ID returns the generated identifier (32 lowercase hex characters).
func (n *Node) ID() string { return n.id }

// Label returns the display label.
func (n *Node) Label() string { return n.label }

// Category returns the node's category.
func (n *Node) Category() Category { return n.category }

// Cluster returns the label of the enclosing cluster, or "" for top-level nodes.
func (n *Node) Cluster() string {
	if n.cluster == nil {
		return ""
	}
	return n.cluster.label
}

// String returns the label, for log and error messages.
func (n *Node) String() string { return n.label }

// Cluster is a named visual grouping of nodes. It has no effect on edges.
type Cluster struct {
	label string
	nodes []*Node
	owner *Diagram
}

// Label returns the cluster caption.
func (c *Cluster) Label() string { return c.label }

// Nodes returns the member nodes in declaration order.
// The returned slice is a copy.
func (c *Cluster) Nodes() []*Node { return slices.Clone(c.nodes) }

// Node declares a new node inside the cluster.
func (c *Cluster) Node(category Category, label string) *Node {
	n := c.owner.newNode(category, label)
	n.cluster = c
	c.nodes = append(c.nodes, n)
	return n
}

// Edge is a directed "flows to" relationship.
type Edge struct {
	From *Node
	To   *Node
}

// Stats summarizes the size of a diagram.
type Stats struct {
	Nodes    int
	Edges    int
	Clusters int
}

// Diagram is the root container for one architecture diagram.
//
// The zero value is not usable; create diagrams with [New]. A Diagram is not
// safe for concurrent use.
type Diagram struct {
	title     string
	direction Direction
	nodes     []*Node // every node, in declaration order
	clusters  []*Cluster
	edges     []Edge
	ids       map[string]*Node
}

// Option configures a Diagram.
type Option func(*Diagram)

// WithDirection sets the layout direction. Invalid directions are reported by
// [Diagram.Validate].
func WithDirection(dir Direction) Option {
	return func(d *Diagram) { d.direction = dir }
}

// New creates an empty diagram with the given title.
// The direction defaults to [DefaultDirection].
func New(title string, opts ...Option) *Diagram {
	d := &Diagram{
		title:     title,
		direction: DefaultDirection,
		ids:       make(map[string]*Node),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Title returns the diagram title.
func (d *Diagram) Title() string { return d.title }

// Direction returns the layout direction.
func (d *Diagram) Direction() Direction { return d.direction }

// Node declares a new top-level node.
func (d *Diagram) Node(category Category, label string) *Node {
	return d.newNode(category, label)
}

func (d *Diagram) newNode(category Category, label string) *Node {
	seq := len(d.nodes)
	name := fmt.Sprintf("%s\x00%d\x00%s\x00%s", d.title, seq, category, label)
	sum := uuid.NewSHA1(idNamespace, []byte(name))

	n := &Node{
		id:       hex.EncodeToString(sum[:]),
		label:    label,
		category: category,
		owner:    d,
	}
	d.nodes = append(d.nodes, n)
	d.ids[n.id] = n
	return n
}

// Cluster declares a new, empty cluster.
func (d *Diagram) Cluster(label string) *Cluster {
	c := &Cluster{label: label, owner: d}
	d.clusters = append(d.clusters, c)
	return c
}

// Connect adds the edge from → to.
//
// Both endpoints must have been declared on d. A nil node or a node from a
// different diagram yields an INVALID_TOPOLOGY error and no edge is added.
func (d *Diagram) Connect(from, to *Node) error {
	if err := d.checkEndpoint(from, "source"); err != nil {
		return err
	}
	if err := d.checkEndpoint(to, "target"); err != nil {
		return err
	}
	d.edges = append(d.edges, Edge{From: from, To: to})
	return nil
}

// Chain connects consecutive nodes: Chain(a, b, c) adds a → b and b → c.
// Edges before the first invalid node are kept.
func (d *Diagram) Chain(nodes ...*Node) error {
	for i := 1; i < len(nodes); i++ {
		if err := d.Connect(nodes[i-1], nodes[i]); err != nil {
			return err
		}
	}
	return nil
}

func (d *Diagram) checkEndpoint(n *Node, role string) error {
	if n == nil {
		return errors.New(errors.ErrCodeInvalidTopology, "edge %s is nil", role)
	}
	if n.owner != d || d.ids[n.id] != n {
		return errors.New(errors.ErrCodeInvalidTopology,
			"edge %s %q is not declared in diagram %q", role, n.label, d.title)
	}
	return nil
}

// Lookup returns the node with the given identifier.
func (d *Diagram) Lookup(id string) (*Node, bool) {
	n, ok := d.ids[id]
	return n, ok
}

// Nodes returns every node in declaration order, clustered or not.
func (d *Diagram) Nodes() []*Node { return slices.Clone(d.nodes) }

// TopLevelNodes returns the nodes that belong to no cluster.
func (d *Diagram) TopLevelNodes() []*Node {
	var out []*Node
	for _, n := range d.nodes {
		if n.cluster == nil {
			out = append(out, n)
		}
	}
	return out
}

// Clusters returns the clusters in declaration order.
func (d *Diagram) Clusters() []*Cluster { return slices.Clone(d.clusters) }

// Edges returns the edges in the order they were added.
func (d *Diagram) Edges() []Edge { return slices.Clone(d.edges) }

// Stats returns node, edge and cluster counts.
func (d *Diagram) Stats() Stats {
	return Stats{Nodes: len(d.nodes), Edges: len(d.edges), Clusters: len(d.clusters)}
}

// Validate checks the diagram before rendering.
//
// It reports INVALID_INPUT for a bad title, direction or node category and
// INVALID_TOPOLOGY for dangling edge or cluster references.
func (d *Diagram) Validate() error {
	if err := errors.ValidateTitle(d.title); err != nil {
		return err
	}
	if !d.direction.Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "invalid direction: %s (must be LR, RL, TB or BT)", d.direction)
	}
	for _, n := range d.nodes {
		if !n.category.Valid() {
			return errors.New(errors.ErrCodeInvalidInput, "node %q has unknown category %q", n.label, n.category)
		}
	}
	for _, c := range d.clusters {
		for _, n := range c.nodes {
			if n.owner != d || n.cluster != c {
				return errors.New(errors.ErrCodeInvalidTopology,
					"cluster %q references node %q that is not declared in it", c.label, n.label)
			}
		}
	}
	for _, e := range d.edges {
		if err := d.checkEndpoint(e.From, "source"); err != nil {
			return err
		}
		if err := d.checkEndpoint(e.To, "target"); err != nil {
			return err
		}
	}
	return nil
}
