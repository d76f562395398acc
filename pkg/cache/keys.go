package cache

import (
	"crypto/sha256"
	"fmt"
)

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// ArtifactKeyOpts identifies how an artifact was produced.
type ArtifactKeyOpts struct {
	Engine string `json:"engine"`
	Format string `json:"format"`
}

// Keyer generates cache keys.
type Keyer interface {
	// ArtifactKey returns the key for a rendered artifact of the graph
	// description whose hash is descHash.
	ArtifactKey(descHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer builds readable keys such as "artifact:dot.png:<hash>", so
// entries can be told apart with redis-cli or ls.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) ArtifactKey(descHash string, opts ArtifactKeyOpts) string {
	return fmt.Sprintf("artifact:%s.%s:%s", opts.Engine, opts.Format, descHash)
}

// ScopedKeyer prefixes every key of the wrapped Keyer. The CLI scopes keys by
// tool version ("cddiagram:<version>:") so that servers of different releases
// can share one Redis instance.
type ScopedKeyer struct {
	Keyer
	Prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return ScopedKeyer{Keyer: inner, Prefix: prefix}
}

func (k ScopedKeyer) ArtifactKey(descHash string, opts ArtifactKeyOpts) string {
	return k.Prefix + k.Keyer.ArtifactKey(descHash, opts)
}
