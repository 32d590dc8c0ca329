// Package surface provides drawing targets for graph scenes.
package surface

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/christophergentle/tpsgraph/internal/graph"
	chart "github.com/wcharczuk/go-chart/v2"
)

// Output formats
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// ErrUnknownFormat is returned for formats no surface can produce.
var ErrUnknownFormat = errors.New("unknown image format")

// Canvas is a surface that can be written out once drawn.
type Canvas interface {
	graph.Surface
	Encode(w io.Writer) error
}

// New creates a canvas for the format: gg for "png", a go-chart SVG
// renderer for "svg".
func New(format string, width, height int, style *Style) (Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	switch NormalizeFormat(format) {
	case FormatPNG:
		return NewPNG(width, height, style), nil
	case FormatSVG:
		return NewChart(chart.SVG, width, height, style)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// NormalizeFormat lower-cases a format name and drops a leading dot, so
// file extensions can be passed directly.
func NormalizeFormat(format string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
}

// ContentType returns the MIME type for a format.
func ContentType(format string) string {
	switch NormalizeFormat(format) {
	case FormatPNG:
		return "image/png"
	case FormatSVG:
		return "image/svg+xml"
	}
	return "application/octet-stream"
}
