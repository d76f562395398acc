// Package render turns a diagram's graph description into an image file.
//
// # Overview
//
// Rendering is the second phase after a [diagram.Diagram] has been declared
// and validated:
//
//	Diagram → DOT → Engine → bytes → WriteFile → <title>.png
//
// Layout and rasterization are delegated to Graphviz through an [Engine]:
//
//   - [ExecEngine] runs the `dot` binary as a subprocess (the default)
//   - [EmbeddedEngine] runs Graphviz in-process via go-graphviz
//
// Both honor the context deadline: a run past it fails with RENDER_TIMEOUT
// and the subprocess is killed.
//
// # Atomic Output
//
// [WriteFile] writes to a temporary file in the target directory and renames
// it into place, so a failed run never leaves a partial or empty image.
//
// # Output Paths
//
// [OutputPath] resolves the destination from an optional hint and the
// normalized title; [Open] shows the result in the desktop viewer.
//
// The build → render → write sequence with caching lives in package pipeline.
//
// [diagram.Diagram]: github.com/matzehuels/cddiagram/pkg/diagram
package render
