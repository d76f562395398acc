package render

import (
	"strings"

	"github.com/matzehuels/cddiagram/pkg/errors"
)

// Format is an output format.
type Format string

// Output formats. PNG, SVG, PDF and JPG go through the layout engine; DOT and
// JSON are written straight from the diagram.
const (
	FormatPNG  Format = "png"
	FormatSVG  Format = "svg"
	FormatPDF  Format = "pdf"
	FormatJPG  Format = "jpg"
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"
)

// DefaultFormat is raster output, like the original tool.
const DefaultFormat = FormatPNG

// Formats lists every supported format, in help-text order.
var Formats = []Format{FormatPNG, FormatSVG, FormatPDF, FormatJPG, FormatDOT, FormatJSON}

// ParseFormat parses a format name case-insensitively. "jpeg" is accepted as
// an alias of "jpg" and "gv" of "dot". An empty string yields DefaultFormat.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return DefaultFormat, nil
	case "jpeg":
		return FormatJPG, nil
	case "gv":
		return FormatDOT, nil
	}
	f := Format(s)
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "invalid format: %s (must be png, svg, pdf, jpg, dot or json)", s)
}

// NeedsEngine reports whether producing f requires a layout engine.
func (f Format) NeedsEngine() bool {
	return f != FormatDOT && f != FormatJSON
}

// Ext returns the file extension for f, without the dot.
func (f Format) Ext() string { return string(f) }

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatSVG:
		return "image/svg+xml"
	case FormatPDF:
		return "application/pdf"
	case FormatJPG:
		return "image/jpeg"
	case FormatJSON:
		return "application/json"
	default:
		return "text/vnd.graphviz; charset=utf-8"
	}
}
