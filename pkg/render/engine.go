package render

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/matzehuels/cddiagram/pkg/errors"
)

// Engine lays out and rasterizes a DOT graph description.
type Engine interface {
	// Name identifies the engine in logs and cache keys.
	Name() string

	// Render returns the image bytes for dot in the given format.
	// It must not write to the filesystem.
	Render(ctx context.Context, dot string, format Format) ([]byte, error)
}

// Engine names accepted by NewEngine.
const (
	EngineDot      = "dot"
	EngineEmbedded = "embedded"
)

// DefaultEngine is the Graphviz subprocess.
const DefaultEngine = EngineDot

// NewEngine returns the engine with the given name. An empty name yields
// DefaultEngine.
func NewEngine(name string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EngineDot:
		return NewExecEngine(), nil
	case EngineEmbedded:
		return NewEmbeddedEngine(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid engine: %s (must be 'dot' or 'embedded')", name)
	}
}

// contextError converts a finished context into a render error. Deadlines map
// to RENDER_TIMEOUT; cancellation is returned unchanged so callers can detect
// an interrupt with errors.Is(err, context.Canceled).
func contextError(ctx context.Context, engine string) error {
	err := ctx.Err()
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(errors.ErrCodeRenderTimeout, err, "%s did not finish before the deadline", engine)
	}
	return err
}
