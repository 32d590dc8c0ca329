package surface

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/christophergentle/tpsgraph/internal/graph"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// PNG is a raster surface drawn with gg.
type PNG struct {
	dc        *gg.Context
	style     *Style
	box       graph.Box
	axisDrawn bool
}

// NewPNG creates a raster surface of the given size. A nil style uses
// DefaultStyle.
func NewPNG(width, height int, style *Style) *PNG {
	style = style.withDefaults()

	dc := gg.NewContext(width, height)
	dc.SetFontFace(basicfont.Face7x13)

	// Fill background
	dc.SetHexColor(style.Background)
	dc.Clear()

	if style.Title != "" {
		dc.SetHexColor(style.Text)
		dc.DrawStringAnchored(style.Title, float64(width)/2, titleHeight/2, 0.5, 0.5)
	}

	return &PNG{dc: dc, style: style, box: DrawableBox(width, height, style)}
}

// Box returns the drawable area below the title.
func (p *PNG) Box() graph.Box {
	return p.box
}

// Bar fills one bar.
func (p *PNG) Bar(b graph.Bar) {
	if b.Height <= 0 {
		return
	}
	p.dc.SetHexColor(p.style.Bar)
	p.dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
	p.dc.Fill()
}

// Rule strokes a 1px line, offset by half a pixel so it stays crisp.
func (p *PNG) Rule(r graph.Rule) {
	p.dc.SetHexColor(p.style.ruleColor(r, p.axisDrawn))
	if r.Kind == graph.KindValue {
		p.axisDrawn = true
	}
	p.dc.SetLineWidth(1)
	p.dc.DrawLine(crisp(r.X1, r.X2), crisp(r.Y1, r.Y2), crisp(r.X2, r.X1), crisp(r.Y2, r.Y1))
	p.dc.Stroke()
}

// Label draws anchored text.
func (p *PNG) Label(l graph.Label) {
	if l.Text == "" {
		return
	}
	p.dc.SetHexColor(p.style.Text)
	p.dc.DrawStringAnchored(l.Text, l.X, l.Y, anchorX(l.Align), anchorY(l.Baseline))
}

// Image returns the drawn image.
func (p *PNG) Image() image.Image {
	return p.dc.Image()
}

// Encode writes the surface as PNG.
func (p *PNG) Encode(w io.Writer) error {
	if err := p.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// Bytes returns the PNG encoding of the surface.
func (p *PNG) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// crisp moves v to a pixel centre when the line runs along it.
func crisp(v, other float64) float64 {
	if v == other {
		return float64(int(v)) + 0.5
	}
	return v
}

// anchorX and anchorY convert text anchors to gg's fractional anchors.
func anchorX(a graph.Align) float64 {
	switch a {
	case graph.AlignCenter:
		return 0.5
	case graph.AlignRight:
		return 1
	}
	return 0
}

func anchorY(b graph.Baseline) float64 {
	switch b {
	case graph.BaselineTop:
		return 1
	case graph.BaselineMiddle:
		return 0.5
	}
	return 0
}
