// Package pkg provides the libraries behind cddiagram, a renderer for a fixed
// CI/CD deployment pipeline diagram.
//
// # Overview
//
// The pkg directory is organized by concern:
//
//  1. [diagram] - The pipeline model: nodes, clusters, edges and their DOT form
//  2. [render] - Layout engines, output formats and atomic file output
//  3. [pipeline] - Orchestration (build → render → write)
//  4. [cache] - Optional artifact cache backed by files or Redis
//  5. [config] - TOML configuration file
//  6. [errors] - Error codes and their process exit statuses
//
// # Architecture
//
// The data flow for a single run:
//
//	   [config] file + flags
//	         ↓
//	  [diagram] package (validated graph model)
//	         ↓
//	  DOT description ──→ dot/json output (no engine)
//	         ↓
//	  [render] package (Graphviz layout, cached by [cache])
//	         ↓
//	  PNG/SVG/PDF/JPG written atomically
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, log.Default())
//	res, err := runner.Execute(ctx, pipeline.Options{Format: "svg"})
//	if err != nil {
//	    return err
//	}
//	fmt.Println("wrote", res.Path)
//
// [diagram]: github.com/matzehuels/cddiagram/pkg/diagram
// [render]: github.com/matzehuels/cddiagram/pkg/render
// [pipeline]: github.com/matzehuels/cddiagram/pkg/pipeline
// [cache]: github.com/matzehuels/cddiagram/pkg/cache
// [config]: github.com/matzehuels/cddiagram/pkg/config
// [errors]: github.com/matzehuels/cddiagram/pkg/errors
package pkg
