package render

import (
	"bytes"
	"context"
	"runtime"

	"github.com/goccy/go-graphviz"
	"golang.org/x/sync/semaphore"

	"github.com/matzehuels/cddiagram/pkg/errors"
)

// embeddedSlots bounds concurrent in-process layouts. A layout abandoned at
// its deadline holds its slot until it actually finishes, so a busy preview
// server cannot pile up runaway WebAssembly instances.
var embeddedSlots = semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0)))

// EmbeddedEngine renders in-process with go-graphviz, which bundles Graphviz
// compiled to WebAssembly. It needs no system packages for SVG, PNG and JPG;
// PDF is produced from SVG with rsvg-convert.
type EmbeddedEngine struct{}

// NewEmbeddedEngine creates the in-process engine.
func NewEmbeddedEngine() *EmbeddedEngine {
	return &EmbeddedEngine{}
}

// Name returns "embedded".
func (e *EmbeddedEngine) Name() string { return EngineEmbedded }

// Render lays out dot and encodes it as format.
//
// The WebAssembly runtime cannot be interrupted, so on deadline Render returns
// RENDER_TIMEOUT immediately and the abandoned layout finishes in the
// background. At most GOMAXPROCS layouts run at once; waiting for a free slot
// counts against the deadline.
func (e *EmbeddedEngine) Render(ctx context.Context, dot string, format Format) ([]byte, error) {
	switch format {
	case FormatSVG:
		return e.render(ctx, dot, graphviz.SVG)
	case FormatPNG:
		return e.render(ctx, dot, graphviz.PNG)
	case FormatJPG:
		return e.render(ctx, dot, graphviz.JPG)
	case FormatPDF:
		svg, err := e.render(ctx, dot, graphviz.SVG)
		if err != nil {
			return nil, err
		}
		return ToPDF(ctx, svg)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "%s output does not need a layout engine", format)
	}
}

func (e *EmbeddedEngine) render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	if ctx.Err() != nil {
		return nil, contextError(ctx, EngineEmbedded)
	}
	if err := embeddedSlots.Acquire(ctx, 1); err != nil {
		return nil, contextError(ctx, EngineEmbedded)
	}
	done := make(chan result, 1)

	go func() {
		defer embeddedSlots.Release(1)
		data, err := renderGraphviz(ctx, dot, format)
		done <- result{data, err}
	}()

	select {
	case <-ctx.Done():
		return nil, contextError(ctx, EngineEmbedded)
	case r := <-done:
		return r.data, r.err
	}
}

func renderGraphviz(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEngineUnavailable, err, "init embedded graphviz: %v", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "parse DOT: %v", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s: %v", format, err)
	}
	if buf.Len() == 0 {
		return nil, errors.New(errors.ErrCodeRenderFailed, "graphviz produced no %s output", format)
	}
	return buf.Bytes(), nil
}

var _ Engine = (*EmbeddedEngine)(nil)
