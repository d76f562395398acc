package render

import (
	"bytes"
	"context"
)

const librsvgInstallHint = `PDF export with the embedded engine requires librsvg. Install with:
  macOS:  brew install librsvg
  Linux:  apt install librsvg2-bin`

// rsvgBinary is the SVG converter used for PDF output.
var rsvgBinary = "rsvg-convert"

// ToPDF converts SVG bytes to PDF using rsvg-convert.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return runTool(ctx, rsvgBinary, librsvgInstallHint, bytes.NewReader(svg), "-f", "pdf")
}
