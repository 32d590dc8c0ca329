package graph

import "math"

// DefaultTickCount is the number of ticks a scale aims for.
const DefaultTickCount = 10

// Scale maps a numeric domain interval linearly onto a pixel range.
// It is a value type; Nice returns a new Scale.
type Scale struct {
	DomainMin float64
	DomainMax float64
	RangeMin  float64
	RangeMax  float64
}

// NewLinearScale creates a scale from [domainMin, domainMax] to
// [rangeMin, rangeMax]. An empty or inverted domain is widened to
// [domainMin, domainMin+1].
func NewLinearScale(domainMin, domainMax, rangeMin, rangeMax float64) Scale {
	if domainMax <= domainMin {
		domainMax = domainMin + 1
	}
	return Scale{
		DomainMin: domainMin,
		DomainMax: domainMax,
		RangeMin:  rangeMin,
		RangeMax:  rangeMax,
	}
}

// Map returns the range position of x. Values outside the domain are not
// clamped.
func (s Scale) Map(x float64) float64 {
	return s.RangeMin + (x-s.DomainMin)/(s.DomainMax-s.DomainMin)*(s.RangeMax-s.RangeMin)
}

// Invert returns the domain value mapped to y.
func (s Scale) Invert(y float64) float64 {
	if s.RangeMax == s.RangeMin {
		return s.DomainMin
	}
	return s.DomainMin + (y-s.RangeMin)/(s.RangeMax-s.RangeMin)*(s.DomainMax-s.DomainMin)
}

// TickStep returns the spacing of roughly count ticks across the domain,
// always 1, 2 or 5 times a power of ten.
func (s Scale) TickStep(count int) float64 {
	if count < 1 {
		count = DefaultTickCount
	}
	span := s.DomainMax - s.DomainMin
	step := math.Pow(10, math.Floor(math.Log10(span/float64(count))))
	err := float64(count) / (span / step)
	switch {
	case err <= .15:
		step *= 10
	case err <= .35:
		step *= 5
	case err <= .75:
		step *= 2
	}
	return step
}

// Nice returns a copy of the scale whose DomainMax is rounded up to a
// multiple of its tick step, so the top tick lands on the top of the
// domain.
func (s Scale) Nice(count int) Scale {
	n := s
	prev := 0.0
	for i := 0; i < 10; i++ {
		step := n.TickStep(count)
		if step == prev {
			break
		}
		prev = step
		top := math.Ceil(n.DomainMax/step) * step
		if top < s.DomainMax {
			top = s.DomainMax
		}
		n.DomainMax = top
	}
	return n
}

// Ticks returns ascending multiples of the tick step that fall inside the
// domain.
func (s Scale) Ticks(count int) []float64 {
	step := s.TickStep(count)
	first := math.Ceil(s.DomainMin/step - 1e-9)
	last := math.Floor(s.DomainMax/step + 1e-9)

	ticks := make([]float64, 0, int(last-first)+1)
	for i := first; i <= last; i++ {
		ticks = append(ticks, tickValue(i, step))
	}
	return ticks
}

// tickValue computes i*step without accumulating float error for
// fractional steps.
func tickValue(i, step float64) float64 {
	if step < 1 {
		inv := math.Round(1 / step)
		return i / inv
	}
	return i * step
}
