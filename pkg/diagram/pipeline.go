package diagram

// DefaultTitle is the caption of the CI/CD pipeline diagram.
const DefaultTitle = "CI/CD Deployment Pipeline - GitHub to EC2"

// Cluster captions of the CI/CD pipeline diagram.
const (
	ClusterGitHub = "GitHub"
	ClusterEC2    = "AWS EC2"
)

// Node labels of the CI/CD pipeline diagram.
const (
	LabelUsers    = "Web Users"
	LabelRepo     = "Repo (main branch)"
	LabelWebhook  = "Webhook Event"
	LabelFirewall = "SG Rules (4200/9000)"
	LabelEC2      = "Ubuntu 24.04"
	LabelDocker   = "Docker Runtime"
	LabelRedeploy = "redeploy.sh"
)

// CICDPipeline builds the deployment diagram: a push to the main branch fires
// a webhook through the security group to the EC2 host, which runs
// redeploy.sh to restart the Docker runtime serving the users.
//
// The result has 7 nodes, 6 edges and 2 clusters and has already passed
// [Diagram.Validate].
func CICDPipeline(title string, dir Direction) (*Diagram, error) {
	d := New(title, WithDirection(dir))

	users := d.Node(CategoryClient, LabelUsers)

	gh := d.Cluster(ClusterGitHub)
	repo := gh.Node(CategoryVersionControl, LabelRepo)
	webhook := gh.Node(CategoryScript, LabelWebhook)

	ec2Cluster := d.Cluster(ClusterEC2)
	firewall := ec2Cluster.Node(CategoryNetworkControl, LabelFirewall)
	ec2 := ec2Cluster.Node(CategoryCompute, LabelEC2)
	docker := ec2Cluster.Node(CategoryContainerRuntime, LabelDocker)
	redeploy := ec2Cluster.Node(CategoryScript, LabelRedeploy)

	chains := [][]*Node{
		{repo, webhook},
		{webhook, firewall, ec2},
		{ec2, redeploy, docker},
		{docker, users},
	}
	for _, c := range chains {
		if err := d.Chain(c...); err != nil {
			return nil, err
		}
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
