package graph

import (
	"math"
	"time"
)

// Phi is the golden ratio used to derive the chart height from its width.
const Phi = 1.61803399

const (
	valueTickLength = 5
	hourTickLength  = 5
	textMargin      = 3
)

// Renderer lays out the transactions-per-minute bar chart.
type Renderer struct {
	options *Options
}

// NewRenderer creates a renderer. A nil options uses DefaultOptions.
func NewRenderer(options *Options) *Renderer {
	if options == nil {
		options = DefaultOptions()
	}
	return &Renderer{options: options}
}

// Options returns the renderer's options.
func (r *Renderer) Options() *Options {
	return r.options
}

// Render lays out points for the surface's box and draws the result.
func (r *Renderer) Render(surface Surface, points []DataPoint) *Scene {
	scene := r.Layout(surface.Box(), points)
	Draw(surface, scene)
	return scene
}

// Layout computes the draw primitives for points inside box.
func (r *Renderer) Layout(box Box, points []DataPoint) *Scene {
	o := r.options
	loc := o.Location
	if loc == nil {
		loc = time.UTC
	}

	plot := r.plotArea(box)
	baseline := plot.Y + plot.Height

	max := MaxCount(points)
	xs := NewLinearScale(0, float64(len(points)), 0, plot.Width)
	ys := NewLinearScale(0, max, 0, plot.Height).Nice(o.TickCount)

	scene := &Scene{
		Box:      box,
		Plot:     plot,
		XScale:   xs,
		YScale:   ys,
		MaxValue: max,
		BarWidth: barWidth(xs),
	}

	// Bars
	for i, p := range points {
		h := ys.Map(p.C)
		scene.Bars = append(scene.Bars, Bar{
			X:      plot.X + xs.Map(float64(i)),
			Y:      baseline - h,
			Width:  scene.BarWidth,
			Height: h,
			Title:  FormatBarTitle(p, loc),
		})
	}

	// Value axis
	scene.Ticks = AdjustTicks(ys.Ticks(o.TickCount), max, ys, o.Thresholds.TickMergePx)
	for i, v := range scene.Ticks {
		y := baseline - ys.Map(v)
		x2 := plot.X
		if i == 0 || o.GridLines {
			x2 = plot.X + plot.Width
		}
		scene.Rules = append(scene.Rules, Rule{X1: plot.X - valueTickLength, Y1: y, X2: x2, Y2: y, Kind: KindValue})
		scene.Labels = append(scene.Labels, Label{
			X:        plot.X - valueTickLength - textMargin,
			Y:        y,
			Text:     FormatValue(v),
			Align:    AlignRight,
			Baseline: BaselineMiddle,
			Kind:     KindValue,
		})
	}

	// Day changes
	scene.Boundaries = DetectBoundaries(points, loc)
	merged, base, hasBase := MergeDayLabels(points, scene.Boundaries, xs, o.Thresholds.DayLabelMergePx, loc)
	scene.DayChanges = merged.DayChanges
	dayLabels := DayLabels(points, merged.DayChanges, base, hasBase, loc)
	for i, idx := range merged.DayChanges {
		x := plot.X + xs.Map(float64(idx))
		bottom := baseline + o.Margins.Bottom
		scene.Rules = append(scene.Rules, Rule{X1: x, Y1: baseline, X2: x, Y2: bottom, Kind: KindDay})
		scene.Labels = append(scene.Labels, Label{
			X:        x + textMargin,
			Y:        bottom - textMargin,
			Text:     dayLabels[i],
			Align:    AlignLeft,
			Baseline: BaselineBottom,
			Kind:     KindDay,
		})
	}

	// Hour marks
	scene.HourLabels = HourLabelsVisible(scene.Boundaries, xs, o.Thresholds.HourLabelMergePx)
	for _, idx := range scene.Boundaries.HourMarks {
		x := plot.X + xs.Map(float64(idx))
		bottom := baseline + hourTickLength
		text := ""
		if scene.HourLabels {
			text = FormatHourLabel(FromJulian(points[idx].T, loc))
		}
		scene.Rules = append(scene.Rules, Rule{X1: x, Y1: baseline, X2: x, Y2: bottom, Kind: KindHour})
		scene.Labels = append(scene.Labels, Label{
			X:        x,
			Y:        bottom + textMargin,
			Text:     text,
			Align:    AlignCenter,
			Baseline: BaselineTop,
			Kind:     KindHour,
		})
	}

	return scene
}

// plotArea derives the plot rectangle from the surface box and margins.
func (r *Renderer) plotArea(box Box) Box {
	m := r.options.Margins
	width := box.Width - m.Scrollbar
	height := box.Height - m.Scrollbar
	if r.options.GoldenRatio {
		// never taller than the surface
		height = math.Min(width/Phi, height)
	}
	return Box{
		X:      box.X + m.Left,
		Y:      box.Y + m.Buffer,
		Width:  math.Max(width-m.Left-m.Buffer, 1),
		Height: math.Max(height-m.Buffer-m.Bottom, 1),
	}
}

// barWidth is half the per-point step, or a single pixel on dense data.
func barWidth(xs Scale) float64 {
	step := xs.Map(1) - xs.Map(0)
	if step > 4 {
		return math.Round(step / 2)
	}
	return 1
}
