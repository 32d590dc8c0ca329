package surface

import "github.com/christophergentle/tpsgraph/internal/graph"

// Style holds the colours and text settings shared by all surfaces.
// Colours are hex strings with or without a leading '#'.
type Style struct {
	Background string
	Bar        string
	Axis       string // first value rule, day and hour rules
	Grid       string // remaining value rules
	Text       string
	FontSize   float64
	Title      string
}

// DefaultStyle returns the default chart style
func DefaultStyle() *Style {
	return &Style{
		Background: "ffffff",
		Bar:        "1f77b4", // Blue
		Axis:       "000000",
		Grid:       "dddddd", // Light gray
		Text:       "333333", // Dark gray
		FontSize:   9,
	}
}

// withDefaults fills zero fields from DefaultStyle.
func (s *Style) withDefaults() *Style {
	d := DefaultStyle()
	if s == nil {
		return d
	}
	out := *s
	if out.Background == "" {
		out.Background = d.Background
	}
	if out.Bar == "" {
		out.Bar = d.Bar
	}
	if out.Axis == "" {
		out.Axis = d.Axis
	}
	if out.Grid == "" {
		out.Grid = d.Grid
	}
	if out.Text == "" {
		out.Text = d.Text
	}
	if out.FontSize <= 0 {
		out.FontSize = d.FontSize
	}
	return &out
}

// ruleColor picks the stroke for a rule. The first value rule is the x
// axis; later value rules are grid lines.
func (s *Style) ruleColor(r graph.Rule, axisDrawn bool) string {
	if r.Kind == graph.KindValue && axisDrawn {
		return s.Grid
	}
	return s.Axis
}

const titleHeight = 20

// DrawableBox is the area a surface of the given size leaves for the
// chart: the whole image, less the title line when style has one.
func DrawableBox(width, height int, style *Style) graph.Box {
	box := graph.Box{Width: float64(width), Height: float64(height)}
	if style != nil && style.Title != "" {
		box.Y = titleHeight
		box.Height -= titleHeight
	}
	return box
}
