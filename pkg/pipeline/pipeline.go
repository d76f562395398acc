// Package pipeline provides the build → render → write pipeline for cddiagram.
//
// This package is shared by the render command and the preview server, so
// both entry points validate options, hit the cache, and report observability
// events the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: Declare the CI/CD topology and validate it
//  2. Render: Serialize to DOT and run the layout engine (PNG, SVG, PDF, JPG),
//     or emit the description directly (DOT, JSON)
//  3. Write: Store the artifact atomically at the resolved output path
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Title:  "Release Flow",
//	    Format: "svg",
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Path)
//
// Run individual stages:
//
//	d, err := runner.Build(ctx, opts)
//	data, err := runner.Render(ctx, d, opts)
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cddiagram/pkg/cache"
	"github.com/matzehuels/cddiagram/pkg/diagram"
	"github.com/matzehuels/cddiagram/pkg/errors"
	"github.com/matzehuels/cddiagram/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

// DefaultTimeout bounds a single layout engine run.
const DefaultTimeout = 30 * time.Second

// ValidEngines is the set of supported layout engines.
var ValidEngines = map[string]bool{
	render.EngineDot:      true,
	render.EngineEmbedded: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Build options
	Title     string `json:"title,omitempty"`
	Direction string `json:"direction,omitempty"`

	// Render options
	Format  string        `json:"format,omitempty"`
	Engine  string        `json:"engine,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty"` // Zero disables the deadline

	// Write options
	Output string `json:"output,omitempty"` // File, directory, or empty for <title>.<ext>

	// Runtime options (not serialized)
	CacheTTL time.Duration `json:"-"`
	Logger   *log.Logger   `json:"-"` // Defaults to the runner's logger

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Diagram is the validated diagram.
	Diagram *diagram.Diagram

	// DescHash is the content hash of the DOT description.
	DescHash string

	// Artifact is the rendered output.
	Artifact []byte

	// Path is where Artifact was written.
	Path string

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether Artifact came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	diagram.Stats
	Bytes      int
	BuildTime  time.Duration
	RenderTime time.Duration
	WriteTime  time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateEngine checks that an engine name is valid.
func ValidateEngine(engine string) error {
	if !ValidEngines[engine] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid engine: %q (must be one of: dot, embedded)", engine)
	}
	return nil
}

// ValidateTimeout checks that a timeout is not negative.
func ValidateTimeout(d time.Duration) error {
	if d < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "invalid timeout: %s (must be zero or positive)", d)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field, canonicalizes names (e.g. "jpeg"
// becomes "jpg", "tb" becomes "TB") and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	if err := errors.ValidateOutputPath(o.Output); err != nil {
		return err
	}
	if err := render.CheckOutputExt(o.Output, o.RenderFormat()); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForBuild checks the title and direction.
func (o *Options) ValidateForBuild() error {
	if o.Title == "" {
		o.Title = diagram.DefaultTitle
	}
	if err := errors.ValidateTitle(o.Title); err != nil {
		return err
	}

	dir, err := diagram.ParseDirection(o.Direction)
	if err != nil {
		return err
	}
	o.Direction = string(dir)

	return nil
}

// ValidateForRender checks the format, engine and timeout.
func (o *Options) ValidateForRender() error {
	f, err := render.ParseFormat(o.Format)
	if err != nil {
		return err
	}
	o.Format = string(f)

	if o.Engine == "" {
		o.Engine = render.DefaultEngine
	}
	if err := ValidateEngine(o.Engine); err != nil {
		return err
	}
	if err := ValidateTimeout(o.Timeout); err != nil {
		return err
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = cache.TTLArtifact
	}

	return nil
}

// RenderFormat returns the validated output format.
func (o *Options) RenderFormat() render.Format {
	return render.Format(o.Format)
}

// RenderDirection returns the validated layout direction.
func (o *Options) RenderDirection() diagram.Direction {
	return diagram.Direction(o.Direction)
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Engine: o.Engine,
		Format: o.Format,
	}
}
