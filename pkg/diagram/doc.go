// Package diagram declares architecture diagrams as directed graphs of typed,
// labeled nodes grouped into visual clusters.
//
// # Overview
//
// A [Diagram] is built in two explicit phases. The first phase declares nodes,
// clusters and edges; the second serializes the finished graph for a layout
// engine (see package render). Nothing is rendered implicitly.
//
//	d := diagram.New("Deploy", diagram.WithDirection(diagram.DirectionLR))
//	users := d.Node(diagram.CategoryClient, "Web Users")
//
//	gh := d.Cluster("GitHub")
//	repo := gh.Node(diagram.CategoryVersionControl, "Repo")
//	hook := gh.Node(diagram.CategoryScript, "Webhook Event")
//
//	if err := d.Chain(repo, hook, users); err != nil {
//	    return err
//	}
//	dot := d.DOT()
//
// # Identity
//
// Node identifiers are name-based UUIDs derived from the diagram title, the
// declaration order and the label. They are unique within a diagram and stable
// across runs, so the same declarations always yield the same DOT text.
//
// # Topology Rules
//
// Edges may only reference nodes declared on the same diagram. [Diagram.Connect]
// rejects anything else with an INVALID_TOPOLOGY error. Cycles are allowed;
// the layout engine draws them like any other edge.
//
// # CI/CD Pipeline
//
// [CICDPipeline] builds the fixed GitHub → EC2 → Docker deployment diagram
// that the cddiagram command renders.
package diagram
