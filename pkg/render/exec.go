package render

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/matzehuels/cddiagram/pkg/errors"
)

// graphvizInstallHint is appended to RENDER_ENGINE_UNAVAILABLE errors.
const graphvizInstallHint = `Install Graphviz with:
  macOS:   brew install graphviz
  Linux:   apt install graphviz
  Windows: winget install graphviz
or pass --engine embedded to use the built-in renderer`

// killGrace bounds how long Wait blocks on a killed process's output pipes.
const killGrace = 2 * time.Second

// ExecEngine renders by running the Graphviz `dot` command.
// The DOT source goes to stdin and the image is read from stdout.
type ExecEngine struct {
	// Binary is the executable name or path. Defaults to "dot".
	Binary string
}

// NewExecEngine creates an engine that runs `dot` from PATH.
func NewExecEngine() *ExecEngine {
	return &ExecEngine{Binary: "dot"}
}

// Name returns "dot".
func (e *ExecEngine) Name() string { return EngineDot }

// Render runs `dot -T<format>`.
//
// A missing binary yields RENDER_ENGINE_UNAVAILABLE, an expired context
// RENDER_TIMEOUT (the process is killed) and a non-zero exit RENDER_FAILED
// carrying the engine's stderr.
func (e *ExecEngine) Render(ctx context.Context, dot string, format Format) ([]byte, error) {
	if !format.NeedsEngine() {
		return nil, errors.New(errors.ErrCodeUnsupported, "%s output does not need a layout engine", format)
	}
	bin := e.Binary
	if bin == "" {
		bin = "dot"
	}
	return runTool(ctx, bin, graphvizInstallHint, strings.NewReader(dot), "-T"+string(format))
}

// runTool runs an external converter with stdin and returns its stdout.
func runTool(ctx context.Context, bin, installHint string, stdin io.Reader, args ...string) ([]byte, error) {
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEngineUnavailable, err, "%s not found on PATH. %s", bin, installHint)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = stdin
	cmd.WaitDelay = killGrace

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, contextError(ctx, bin)
		}
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "%s failed: %s", bin, strings.TrimSpace(errBuf.String()))
		}
		return nil, errors.Wrap(errors.ErrCodeEngineUnavailable, err, "cannot run %s. %s", path, installHint)
	}
	if out.Len() == 0 {
		return nil, errors.New(errors.ErrCodeRenderFailed, "%s produced no output: %s", bin, strings.TrimSpace(errBuf.String()))
	}
	return out.Bytes(), nil
}

var _ Engine = (*ExecEngine)(nil)
