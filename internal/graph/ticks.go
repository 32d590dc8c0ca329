package graph

// AdjustTicks makes sure the value axis labels the true maximum of the
// data. ticks must be ascending; the slice is not modified.
//
// The top tick is compared with max in pixels through scale:
//   - more than tolerancePx below max: max is appended
//   - more than tolerancePx above max: the top tick is dropped and the one
//     below it becomes max
//   - otherwise the top tick is replaced by max
func AdjustTicks(ticks []float64, max float64, scale Scale, tolerancePx float64) []float64 {
	if len(ticks) == 0 {
		return []float64{max}
	}

	out := make([]float64, len(ticks), len(ticks)+1)
	copy(out, ticks)

	last := len(out) - 1
	d := scale.Map(out[last]) - scale.Map(max)
	switch {
	case d < -tolerancePx:
		out = append(out, max)
	case d > tolerancePx && last > 0:
		out[last-1] = max
		out = out[:last]
	default:
		out[last] = max
	}

	// Ticks at or above the new top would duplicate or overlap its label.
	for n := len(out); n > 1 && out[n-2] >= out[n-1]; n = len(out) {
		out = append(out[:n-2], out[n-1])
	}
	return out
}
