package graph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func point(t time.Time, c float64) DataPoint {
	return DataPoint{T: ToJulian(t), C: c}
}

// minutes builds n points spaced step apart starting at start.
func minutes(start time.Time, n int, step time.Duration) []DataPoint {
	points := make([]DataPoint, n)
	for i := range points {
		points[i] = point(start.Add(time.Duration(i)*step), float64(i%7))
	}
	return points
}

func TestJulianRoundTrip(t *testing.T) {
	times := []time.Time{
		at(1970, 1, 1, 0, 0),
		at(2008, 6, 30, 23, 59),
		at(2024, 2, 29, 14, 0),
		at(2038, 1, 19, 3, 14),
	}
	for _, tm := range times {
		assert.True(t, tm.Equal(FromJulian(ToJulian(tm), time.UTC)), "time %v", tm)
	}
	assert.Equal(t, 2440587.5, ToJulian(at(1970, 1, 1, 0, 0)))
}

func TestFromJulianNilLocationIsUTC(t *testing.T) {
	got := FromJulian(2440588.0, nil)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 12, got.Hour())
}

func TestDetectBoundariesSameDayHourMark(t *testing.T) {
	points := []DataPoint{
		point(at(2024, 3, 5, 13, 58), 1),
		point(at(2024, 3, 5, 14, 0), 2),
		point(at(2024, 3, 5, 14, 2), 3),
	}

	b := DetectBoundaries(points, time.UTC)

	assert.Equal(t, []int{0}, b.DayChanges)
	assert.Equal(t, []int{1}, b.HourMarks)
}

func TestDetectBoundariesFirstPointIsAlwaysDayChange(t *testing.T) {
	points := []DataPoint{
		point(at(2024, 3, 5, 14, 0), 1),
		point(at(2024, 3, 5, 14, 1), 2),
	}

	b := DetectBoundaries(points, time.UTC)

	assert.Equal(t, []int{0}, b.DayChanges)
	assert.Empty(t, b.HourMarks)
}

func TestDetectBoundariesSkipsOddHours(t *testing.T) {
	points := minutes(at(2024, 3, 5, 9, 30), 240, time.Minute)

	b := DetectBoundaries(points, time.UTC)

	// 10:00, 12:00; 11:00 and 13:00 are odd.
	require.Len(t, b.HourMarks, 2)
	assert.Equal(t, 10, FromJulian(points[b.HourMarks[0]].T, time.UTC).Hour())
	assert.Equal(t, 12, FromJulian(points[b.HourMarks[1]].T, time.UTC).Hour())
}

func TestDetectBoundariesMidnightIsDayChangeNotHourMark(t *testing.T) {
	points := minutes(at(2024, 3, 5, 22, 0), 5, time.Hour)

	b := DetectBoundaries(points, time.UTC)

	// 22:00 (first), 23:00, 00:00 (new day), 01:00, 02:00
	assert.Equal(t, []int{0, 2}, b.DayChanges)
	assert.Equal(t, []int{4}, b.HourMarks)
}

func TestDetectBoundariesUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	points := minutes(at(2024, 3, 5, 12, 0), 4, time.Hour)

	utc := DetectBoundaries(points, time.UTC)
	local := DetectBoundaries(points, loc)

	assert.Equal(t, []int{0}, utc.DayChanges)
	// 12:00Z is 22:00 local, so 14:00Z starts a new local day.
	assert.Equal(t, []int{0, 2}, local.DayChanges)
}

func TestMergeDayLabelsKeepsDistantBoundaries(t *testing.T) {
	points := minutes(at(2024, 3, 5, 12, 0), 24, time.Hour)
	b := DetectBoundaries(points, time.UTC)
	require.Equal(t, []int{0, 12}, b.DayChanges)

	xs := NewLinearScale(0, float64(len(points)), 0, 480) // 20px per point
	merged, _, ok := MergeDayLabels(points, b, xs, 70, time.UTC)

	assert.False(t, ok)
	assert.Equal(t, []int{0, 12}, merged.DayChanges)
}

func TestMergeDayLabelsDropsCrowdedFirstBoundary(t *testing.T) {
	points := minutes(at(2024, 3, 5, 21, 0), 24, time.Hour)
	b := DetectBoundaries(points, time.UTC)
	require.Equal(t, []int{0, 3}, b.DayChanges)

	xs := NewLinearScale(0, float64(len(points)), 0, 240) // 10px per point
	merged, baseline, ok := MergeDayLabels(points, b, xs, 70, time.UTC)

	require.True(t, ok)
	assert.Equal(t, []int{3}, merged.DayChanges)
	assert.True(t, baseline.Equal(at(2024, 3, 5, 21, 0)))
	assert.Equal(t, []int{0, 3}, b.DayChanges, "input boundaries must be left alone")
}

func TestHourLabelsVisible(t *testing.T) {
	b := Boundaries{HourMarks: []int{2, 4, 6}}

	wide := NewLinearScale(0, 10, 0, 200)  // 40px between marks
	narrow := NewLinearScale(0, 10, 0, 50) // 10px between marks

	assert.True(t, HourLabelsVisible(b, wide, 20))
	assert.False(t, HourLabelsVisible(b, narrow, 20))
	assert.True(t, HourLabelsVisible(Boundaries{HourMarks: []int{3}}, narrow, 20))
}

func TestSelectLabelStyle(t *testing.T) {
	cur := at(2024, 3, 5, 0, 0)

	assert.Equal(t, StyleFull, SelectLabelStyle(time.Time{}, cur, false))
	assert.Equal(t, StyleFull, SelectLabelStyle(at(2023, 3, 4, 0, 0), cur, true))
	assert.Equal(t, StyleMonth, SelectLabelStyle(at(2024, 2, 29, 0, 0), cur, true))
	assert.Equal(t, StyleDay, SelectLabelStyle(at(2024, 3, 4, 0, 0), cur, true))
}

func TestDayLabelsStyleAgainstPreviousLabel(t *testing.T) {
	points := []DataPoint{
		point(at(2023, 12, 30, 12, 0), 1),
		point(at(2023, 12, 31, 12, 0), 1),
		point(at(2024, 1, 1, 12, 0), 1),
		point(at(2024, 1, 2, 12, 0), 1),
		point(at(2024, 2, 1, 12, 0), 1),
	}
	idx := []int{0, 1, 2, 3, 4}

	labels := DayLabels(points, idx, time.Time{}, false, time.UTC)
	assert.Equal(t, []string{
		"Sat 30th Dec 23",
		"Sun 31st",
		"Mon 1st Jan 24",
		"Tue 2nd",
		"Thu 1st Feb",
	}, labels)

	labels = DayLabels(points, idx[1:], FromJulian(points[0].T, time.UTC), true, time.UTC)
	assert.Equal(t, "Sun 31st", labels[0])
}

func TestLabelStyleString(t *testing.T) {
	assert.Equal(t, "day", StyleDay.String())
	assert.Equal(t, "month", StyleMonth.String())
	assert.Equal(t, "full", StyleFull.String())
	assert.Equal(t, "LabelStyle(9)", LabelStyle(9).String())
}
