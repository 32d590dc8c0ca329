package graph

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// FormatDayLabel renders a day-change label in the given style.
func FormatDayLabel(t time.Time, style LabelStyle) string {
	s := t.Format("Mon") + " " + Ordinal(t.Day())
	switch style {
	case StyleMonth:
		s += t.Format(" Jan")
	case StyleFull:
		s += t.Format(" Jan 06")
	}
	return s
}

// Ordinal returns n with its English ordinal suffix: 1st, 2nd, 11th, 23rd.
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

// FormatHourLabel renders an hour mark such as "2pm".
func FormatHourLabel(t time.Time) string {
	return t.Format("3pm")
}

// FormatBarTitle is the hover text of a bar.
func FormatBarTitle(p DataPoint, loc *time.Location) string {
	return fmt.Sprintf("For %s: avg: %s", FromJulian(p.T, loc).Format("3:04pm"), FormatValue(p.C))
}

// FormatValue rounds v to two decimals and drops trailing zeros.
func FormatValue(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0 // no "-0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
