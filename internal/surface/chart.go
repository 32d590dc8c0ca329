package surface

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/christophergentle/tpsgraph/internal/graph"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Chart is a surface drawn through a go-chart renderer, which gives
// vector SVG output (chart.SVG) as well as PNG (chart.PNG).
type Chart struct {
	r         chart.Renderer
	style     *Style
	box       graph.Box
	axisDrawn bool
}

// NewChart creates a surface on a renderer from provider. A nil style
// uses DefaultStyle.
func NewChart(provider chart.RendererProvider, width, height int, style *Style) (*Chart, error) {
	style = style.withDefaults()

	r, err := provider(width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	r.SetFont(font)
	r.SetFontSize(style.FontSize)

	c := &Chart{
		r:     r,
		style: style,
		box:   graph.Box{Width: float64(width), Height: float64(height)},
	}
	c.fillRect(0, 0, c.box.Width, c.box.Height, style.Background)

	if style.Title != "" {
		c.text(style.Title, c.box.Width/2, titleHeight/2, graph.AlignCenter, graph.BaselineMiddle)
	}
	c.box = DrawableBox(width, height, style)
	return c, nil
}

// Box returns the drawable area below the title.
func (c *Chart) Box() graph.Box {
	return c.box
}

// Bar fills one bar.
func (c *Chart) Bar(b graph.Bar) {
	if b.Height <= 0 {
		return
	}
	c.fillRect(b.X, b.Y, b.Width, b.Height, c.style.Bar)
}

// Rule strokes a 1px line.
func (c *Chart) Rule(r graph.Rule) {
	c.r.ResetStyle()
	c.r.SetStrokeColor(hexColor(c.style.ruleColor(r, c.axisDrawn)))
	if r.Kind == graph.KindValue {
		c.axisDrawn = true
	}
	c.r.SetStrokeWidth(1)
	c.r.MoveTo(px(r.X1), px(r.Y1))
	c.r.LineTo(px(r.X2), px(r.Y2))
	c.r.Stroke()
}

// Label draws anchored text.
func (c *Chart) Label(l graph.Label) {
	if l.Text == "" {
		return
	}
	c.text(l.Text, l.X, l.Y, l.Align, l.Baseline)
}

// Save writes the rendered output.
func (c *Chart) Save(w io.Writer) error {
	if err := c.r.Save(w); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}
	return nil
}

// Encode is Save, so Chart and PNG share the Canvas interface.
func (c *Chart) Encode(w io.Writer) error {
	return c.Save(w)
}

func (c *Chart) fillRect(x, y, w, h float64, hex string) {
	c.r.ResetStyle()
	c.r.SetFillColor(hexColor(hex))
	c.r.SetStrokeWidth(0)
	c.r.MoveTo(px(x), px(y))
	c.r.LineTo(px(x+w), px(y))
	c.r.LineTo(px(x+w), px(y+h))
	c.r.LineTo(px(x), px(y+h))
	c.r.Close()
	c.r.Fill()
}

// text places body so that (x, y) is the requested anchor. go-chart draws
// text from its left baseline.
func (c *Chart) text(body string, x, y float64, align graph.Align, baseline graph.Baseline) {
	c.r.ResetStyle()
	c.r.SetFontColor(hexColor(c.style.Text))
	c.r.SetFontSize(c.style.FontSize)

	m := c.r.MeasureText(body)
	w, h := float64(m.Width()), float64(m.Height())
	switch align {
	case graph.AlignCenter:
		x -= w / 2
	case graph.AlignRight:
		x -= w
	}
	switch baseline {
	case graph.BaselineTop:
		y += h
	case graph.BaselineMiddle:
		y += h / 2
	}
	c.r.Text(body, px(x), px(y))
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

func px(v float64) int {
	return int(math.Round(v))
}
