package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cddiagram/pkg/cache"
	"github.com/matzehuels/cddiagram/pkg/diagram"
	"github.com/matzehuels/cddiagram/pkg/observability"
	"github.com/matzehuels/cddiagram/pkg/render"
)

// keyTypeArtifact labels artifact entries in cache hooks.
const keyTypeArtifact = "artifact"

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the preview server use it.
//
// The Runner is stateless except for the cache and logger, so multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// NewEngine resolves an engine name. Defaults to render.NewEngine.
	NewEngine func(name string) (render.Engine, error)
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:     c,
		Keyer:     keyer,
		Logger:    logger,
		NewEngine: render.NewEngine,
	}
}

// Execute runs the complete build → render → write pipeline.
// On any error nothing is left at the output path.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Build
	buildStart := time.Now()
	d, err := r.Build(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Diagram = d
	result.DescHash = cache.Hash([]byte(d.DOT()))
	result.Stats.Stats = d.Stats()
	result.Stats.BuildTime = time.Since(buildStart)

	// Stage 2: Render
	renderStart := time.Now()
	data, hit, err := r.RenderWithCacheInfo(ctx, d, opts)
	if err != nil {
		return nil, err
	}
	result.Artifact = data
	result.CacheHit = hit
	result.Stats.Bytes = len(data)
	result.Stats.RenderTime = time.Since(renderStart)

	opts.Logger.Info("rendered diagram",
		"format", opts.Format,
		"engine", opts.Engine,
		"bytes", len(data),
		"cached", hit,
		"duration", result.Stats.RenderTime)

	// Stage 3: Write
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	writeStart := time.Now()
	path := render.OutputPath(opts.Output, d.Filename(), opts.RenderFormat())
	err = render.WriteFile(path, data)
	observability.Pipeline().OnWrite(ctx, path, len(data), err)
	if err != nil {
		return nil, err
	}
	result.Path = path
	result.Stats.WriteTime = time.Since(writeStart)

	opts.Logger.Debug("wrote artifact", "path", path, "duration", result.Stats.WriteTime)

	return result, nil
}

// Build declares the CI/CD topology for opts and validates it.
func (r *Runner) Build(ctx context.Context, opts Options) (*diagram.Diagram, error) {
	if err := opts.ValidateForBuild(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	d, err := diagram.CICDPipeline(opts.Title, opts.RenderDirection())
	if err != nil {
		return nil, err
	}

	s := d.Stats()
	observability.Pipeline().OnBuild(ctx, d.Title(), s.Nodes, s.Edges, s.Clusters)
	opts.Logger.Debug("built diagram",
		"title", d.Title(),
		"direction", d.Direction(),
		"nodes", s.Nodes,
		"edges", s.Edges,
		"clusters", s.Clusters)

	return d, nil
}

// RenderWithCacheInfo produces the artifact for d and reports whether it came
// from the cache. DOT and JSON are serialized directly and never cached.
//
// Cache failures are logged and otherwise ignored: a broken cache slows the
// run down but never fails it.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d *diagram.Diagram, opts Options) ([]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	format := opts.RenderFormat()
	switch format {
	case render.FormatDOT:
		return []byte(d.DOT()), false, nil
	case render.FormatJSON:
		var buf bytes.Buffer
		if err := d.WriteJSON(&buf); err != nil {
			return nil, false, fmt.Errorf("encode diagram: %w", err)
		}
		return buf.Bytes(), false, nil
	}

	dot := d.DOT()
	cacheKey := r.Keyer.ArtifactKey(cache.Hash([]byte(dot)), opts.ArtifactKeyOpts())

	// Try cache first
	data, hit, err := r.Cache.Get(ctx, cacheKey)
	switch {
	case err != nil:
		opts.Logger.Warn("cache lookup failed", "error", err)
	case hit:
		observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
		opts.Logger.Debug("cache hit", "key", cacheKey)
		return data, true, nil
	default:
		observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
	}

	data, err = r.renderEngine(ctx, dot, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if err := r.Cache.Set(ctx, cacheKey, data, opts.CacheTTL); err != nil {
		opts.Logger.Warn("cache store failed", "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
	}

	return data, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, d *diagram.Diagram, opts Options) ([]byte, error) {
	data, _, err := r.RenderWithCacheInfo(ctx, d, opts)
	return data, err
}

// renderEngine runs the layout engine under opts.Timeout.
func (r *Runner) renderEngine(ctx context.Context, dot string, opts Options) ([]byte, error) {
	newEngine := r.NewEngine
	if newEngine == nil {
		newEngine = render.NewEngine
	}
	engine, err := newEngine(opts.Engine)
	if err != nil {
		return nil, err
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, engine.Name(), opts.Format)
	start := time.Now()

	data, err := engine.Render(ctx, dot, opts.RenderFormat())

	hooks.OnRenderComplete(ctx, engine.Name(), opts.Format, len(data), time.Since(start), err)
	return data, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
}
