package graph

import (
	"math"
	"time"
)

// unixEpochJulian is the Julian day number of 1970-01-01T00:00:00Z.
const unixEpochJulian = 2440587.5

const secondsPerDay = 86400.0

// DataPoint is a single sample of the transactions-per-minute series.
// T is a fractional Julian day, C the (non-negative) transaction count.
type DataPoint struct {
	T float64 `json:"t"`
	C float64 `json:"c"`
}

// FromJulian converts a Julian day to a wall-clock time in loc, rounded to
// the nearest second. A nil loc means UTC.
func FromJulian(jd float64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	secs := math.Round((jd - unixEpochJulian) * secondsPerDay)
	return time.Unix(int64(secs), 0).In(loc)
}

// ToJulian converts t to a fractional Julian day.
func ToJulian(t time.Time) float64 {
	return unixEpochJulian + float64(t.Unix())/secondsPerDay + float64(t.Nanosecond())/1e9/secondsPerDay
}

// MaxCount returns the largest count in points, or 1 when the series is
// empty or has no positive count.
func MaxCount(points []DataPoint) float64 {
	max := 0.0
	for _, p := range points {
		if p.C > max {
			max = p.C
		}
	}
	if max > 0 {
		return max
	}
	return 1
}
