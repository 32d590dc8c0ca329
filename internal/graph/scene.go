package graph

// Box is a rectangle in surface pixels, origin top-left.
type Box struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Bar is a filled rectangle for one data point.
type Bar struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
	Title  string
}

// Kind tells which axis a rule or label belongs to.
type Kind int

const (
	KindValue Kind = iota
	KindDay
	KindHour
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindDay:
		return "day"
	case KindHour:
		return "hour"
	}
	return "unknown"
}

// Rule is a straight line segment.
type Rule struct {
	X1, Y1 float64
	X2, Y2 float64
	Kind   Kind
}

// Align is the horizontal text anchor.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Baseline is the vertical text anchor.
type Baseline int

const (
	BaselineTop Baseline = iota
	BaselineMiddle
	BaselineBottom
)

// Label is text anchored at (X, Y).
type Label struct {
	X        float64
	Y        float64
	Text     string
	Align    Align
	Baseline Baseline
	Kind     Kind
}

// Scene is the result of a layout pass: the draw primitives plus the
// intermediate values they were derived from.
type Scene struct {
	Box  Box
	Plot Box

	XScale   Scale
	YScale   Scale
	MaxValue float64
	Ticks    []float64
	BarWidth float64

	// Boundaries as detected; DayChanges is the list after merging.
	Boundaries Boundaries
	DayChanges []int
	HourLabels bool

	Bars   []Bar
	Rules  []Rule
	Labels []Label
}

// RulesOf returns the rules of one kind in draw order.
func (s *Scene) RulesOf(k Kind) []Rule {
	var out []Rule
	for _, r := range s.Rules {
		if r.Kind == k {
			out = append(out, r)
		}
	}
	return out
}

// LabelsOf returns the labels of one kind in draw order.
func (s *Scene) LabelsOf(k Kind) []Label {
	var out []Label
	for _, l := range s.Labels {
		if l.Kind == k {
			out = append(out, l)
		}
	}
	return out
}

// Surface receives draw primitives. Implementations rasterise or
// serialise them; they own and clear their previous content.
type Surface interface {
	Box() Box
	Bar(b Bar)
	Rule(r Rule)
	Label(l Label)
}

// Draw replays the scene onto surface: bars first, then rules, then labels.
func Draw(surface Surface, scene *Scene) {
	for _, b := range scene.Bars {
		surface.Bar(b)
	}
	for _, r := range scene.Rules {
		surface.Rule(r)
	}
	for _, l := range scene.Labels {
		surface.Label(l)
	}
}
