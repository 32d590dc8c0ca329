package graph

import "time"

// Thresholds are the pixel distances below which labels are merged or
// hidden to avoid overlap.
type Thresholds struct {
	// TickMergePx is how close the top tick may be to the data maximum
	// before it is replaced by it.
	TickMergePx float64
	// DayLabelMergePx is the minimum gap between the first two day labels.
	DayLabelMergePx float64
	// HourLabelMergePx is the minimum gap between hour labels.
	HourLabelMergePx float64
}

// Margins reserve room around the plot area.
type Margins struct {
	Left      float64 // value labels
	Bottom    float64 // day and hour labels
	Buffer    float64 // top and right
	Scrollbar float64 // subtracted from the surface width
}

// Options configures a Renderer.
type Options struct {
	TickCount  int
	Thresholds Thresholds
	Margins    Margins
	// GoldenRatio derives the chart height from its width instead of the
	// surface height.
	GoldenRatio bool
	// GridLines extends every value rule across the plot. When false only
	// the zero rule spans the plot and the others are short stubs.
	GridLines bool
	Location  *time.Location
}

// DefaultOptions returns the tracker's layout.
func DefaultOptions() *Options {
	return &Options{
		TickCount: DefaultTickCount,
		Thresholds: Thresholds{
			TickMergePx:      10,
			DayLabelMergePx:  70,
			HourLabelMergePx: 20,
		},
		Margins: Margins{
			Left:      35,
			Bottom:    30,
			Buffer:    5,
			Scrollbar: 20,
		},
		GoldenRatio: true,
		GridLines:   true,
		Location:    time.UTC,
	}
}
