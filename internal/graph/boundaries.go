package graph

import (
	"fmt"
	"time"
)

// Boundaries holds the indexes of the series where a new calendar day
// starts and where an even, on-the-hour time falls. The two sets are
// disjoint and ascending.
type Boundaries struct {
	DayChanges []int
	HourMarks  []int
}

type calendarDay struct {
	year  int
	month time.Month
	day   int
}

func dayOf(t time.Time) calendarDay {
	y, m, d := t.Date()
	return calendarDay{year: y, month: m, day: d}
}

// DetectBoundaries scans points in order. The first point always starts a
// day; every point whose date differs from its predecessor's starts
// another. Remaining points at an even hour with zero minutes are hour
// marks.
func DetectBoundaries(points []DataPoint, loc *time.Location) Boundaries {
	var b Boundaries
	var current calendarDay // zero value never matches a real date

	for i, p := range points {
		t := FromJulian(p.T, loc)
		day := dayOf(t)
		if day != current {
			b.DayChanges = append(b.DayChanges, i)
			current = day
			continue
		}
		if t.Hour()%2 == 0 && t.Minute() == 0 {
			b.HourMarks = append(b.HourMarks, i)
		}
	}
	return b
}

// MergeDayLabels drops the first day change when it sits closer than
// minGapPx to the second one, which would otherwise give a clipped label
// at the left edge. The dropped point's time is returned as the baseline
// for label style selection; ok is false when nothing was dropped.
func MergeDayLabels(points []DataPoint, b Boundaries, xscale Scale, minGapPx float64, loc *time.Location) (merged Boundaries, baseline time.Time, ok bool) {
	merged = b
	dc := b.DayChanges
	if len(dc) < 2 || xscale.Map(float64(dc[1]))-xscale.Map(float64(dc[0])) >= minGapPx {
		return merged, time.Time{}, false
	}
	merged.DayChanges = append([]int(nil), dc[1:]...)
	return merged, FromJulian(points[dc[0]].T, loc), true
}

// HourLabelsVisible reports whether hour marks are far enough apart to
// carry text. The decision covers the whole render.
func HourLabelsVisible(b Boundaries, xscale Scale, minGapPx float64) bool {
	hm := b.HourMarks
	if len(hm) < 2 {
		return true
	}
	return xscale.Map(float64(hm[1]))-xscale.Map(float64(hm[0])) >= minGapPx
}

// LabelStyle is the level of detail of a day-change label.
type LabelStyle int

const (
	// StyleDay shows weekday and day of month: "Mon 2nd".
	StyleDay LabelStyle = iota
	// StyleMonth adds the month: "Mon 2nd Jan".
	StyleMonth
	// StyleFull adds the year: "Mon 2nd Jan 06".
	StyleFull
)

func (s LabelStyle) String() string {
	switch s {
	case StyleDay:
		return "day"
	case StyleMonth:
		return "month"
	case StyleFull:
		return "full"
	}
	return fmt.Sprintf("LabelStyle(%d)", int(s))
}

// SelectLabelStyle picks the label detail for cur given the previously
// labelled date. Without a previous date the full style is used.
func SelectLabelStyle(prev, cur time.Time, hasPrev bool) LabelStyle {
	switch {
	case !hasPrev || prev.Year() != cur.Year():
		return StyleFull
	case prev.Month() != cur.Month():
		return StyleMonth
	default:
		return StyleDay
	}
}

// DayLabels returns one label per day change, each styled relative to the
// label before it. baseline seeds the comparison for the first label.
func DayLabels(points []DataPoint, dayChanges []int, baseline time.Time, hasBaseline bool, loc *time.Location) []string {
	labels := make([]string, len(dayChanges))
	prev, hasPrev := baseline, hasBaseline
	for i, idx := range dayChanges {
		t := FromJulian(points[idx].T, loc)
		labels[i] = FormatDayLabel(t, SelectLabelStyle(prev, t, hasPrev))
		prev, hasPrev = t, true
	}
	return labels
}
