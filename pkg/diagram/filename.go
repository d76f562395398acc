package diagram

import "strings"

// fallbackFilename is used when a title normalizes to nothing.
const fallbackFilename = "diagram"

// NormalizeFilename turns a title into a file base name (without extension).
//
// Whitespace runs become a single underscore, letters are lower-cased and
// every other rune outside [a-z0-9_-] is dropped:
//
//	"CI/CD Deployment Pipeline - GitHub to EC2" → "cicd_deployment_pipeline_-_github_to_ec2"
func NormalizeFilename(title string) string {
	joined := strings.Join(strings.Fields(title), "_")

	var b strings.Builder
	for _, r := range strings.ToLower(joined) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}

	name := strings.Trim(b.String(), "_")
	if name == "" {
		return fallbackFilename
	}
	return name
}

// Filename returns the normalized base name of d's title.
func (d *Diagram) Filename() string { return NormalizeFilename(d.title) }
