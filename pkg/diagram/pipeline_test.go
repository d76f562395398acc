package diagram

import (
	"slices"
	"testing"
)

func TestCICDPipeline_Counts(t *testing.T) {
	d, err := CICDPipeline(DefaultTitle, DirectionLR)
	if err != nil {
		t.Fatalf("CICDPipeline() error: %v", err)
	}

	want := Stats{Nodes: 7, Edges: 6, Clusters: 2}
	if got := d.Stats(); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}

	dot := d.DOT()
	if n := len(dotNodeRe.FindAllString(dot, -1)); n != 7 {
		t.Errorf("DOT node declarations = %d, want 7", n)
	}
	if n := len(dotEdgeRe.FindAllString(dot, -1)); n != 6 {
		t.Errorf("DOT edges = %d, want 6", n)
	}
	if n := len(dotClusterRe.FindAllString(dot, -1)); n != 2 {
		t.Errorf("DOT clusters = %d, want 2", n)
	}
}

func TestCICDPipeline_Edges(t *testing.T) {
	d, err := CICDPipeline(DefaultTitle, DirectionLR)
	if err != nil {
		t.Fatalf("CICDPipeline() error: %v", err)
	}

	var got [][2]string
	for _, e := range d.Edges() {
		got = append(got, [2]string{e.From.Label(), e.To.Label()})
	}
	want := [][2]string{
		{LabelRepo, LabelWebhook},
		{LabelWebhook, LabelFirewall},
		{LabelFirewall, LabelEC2},
		{LabelEC2, LabelRedeploy},
		{LabelRedeploy, LabelDocker},
		{LabelDocker, LabelUsers},
	}
	if !slices.Equal(got, want) {
		t.Errorf("edges = %v\nwant %v", got, want)
	}
}

func TestCICDPipeline_Clusters(t *testing.T) {
	d, err := CICDPipeline(DefaultTitle, DirectionLR)
	if err != nil {
		t.Fatalf("CICDPipeline() error: %v", err)
	}

	want := map[string][]string{
		ClusterGitHub: {LabelRepo, LabelWebhook},
		ClusterEC2:    {LabelFirewall, LabelEC2, LabelDocker, LabelRedeploy},
	}

	clusters := d.Clusters()
	if len(clusters) != len(want) {
		t.Fatalf("clusters = %d, want %d", len(clusters), len(want))
	}
	for _, c := range clusters {
		var labels []string
		for _, n := range c.Nodes() {
			labels = append(labels, n.Label())
		}
		if !slices.Equal(labels, want[c.Label()]) {
			t.Errorf("cluster %q members = %v, want %v", c.Label(), labels, want[c.Label()])
		}
	}

	top := d.TopLevelNodes()
	if len(top) != 1 || top[0].Label() != LabelUsers || top[0].Category() != CategoryClient {
		t.Errorf("top-level nodes = %v, want [%s]", top, LabelUsers)
	}
}

func TestCICDPipeline_Categories(t *testing.T) {
	d, err := CICDPipeline(DefaultTitle, DirectionLR)
	if err != nil {
		t.Fatalf("CICDPipeline() error: %v", err)
	}

	want := map[string]Category{
		LabelUsers:    CategoryClient,
		LabelRepo:     CategoryVersionControl,
		LabelWebhook:  CategoryScript,
		LabelFirewall: CategoryNetworkControl,
		LabelEC2:      CategoryCompute,
		LabelDocker:   CategoryContainerRuntime,
		LabelRedeploy: CategoryScript,
	}
	for _, n := range d.Nodes() {
		if n.Category() != want[n.Label()] {
			t.Errorf("%q category = %q, want %q", n.Label(), n.Category(), want[n.Label()])
		}
	}
}

func TestCICDPipeline_InvalidInput(t *testing.T) {
	if _, err := CICDPipeline("", DirectionLR); err == nil {
		t.Error("CICDPipeline() with empty title should fail")
	}
	if _, err := CICDPipeline(DefaultTitle, Direction("diagonal")); err == nil {
		t.Error("CICDPipeline() with bad direction should fail")
	}
}

func TestNormalizeFilename(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{DefaultTitle, "cicd_deployment_pipeline_-_github_to_ec2"},
		{"Simple", "simple"},
		{"  padded   title  ", "padded_title"},
		{"tabs\tand\nnewlines", "tabs_and_newlines"},
		{"a.b/c\\d", "abcd"},
		{"Déploiement", "dploiement"},
		{"!!!", "diagram"},
		{"", "diagram"},
		{"snake_case-kebab", "snake_case-kebab"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := NormalizeFilename(tt.title); got != tt.want {
				t.Errorf("NormalizeFilename(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}
