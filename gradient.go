package heatmap

import (
	"fmt"
	"math"
	"slices"
)

// MaxStops is the number of stops the fragment stage can resolve. The color
// and offset tables in the uniform block are sized to it.
const MaxStops = 16

// Stop is one knot of a gradient. Offset is in the data's native units,
// not in [0, 1]; it is rescaled against the current data range on every bake.
type Stop struct {
	Offset float64
	Color  RGBA
}

// Gradient is an ordered list of stops with non-decreasing offsets.
type Gradient []Stop

// Validate checks the stop count against MaxStops and that offsets are
// finite and non-decreasing. A validated gradient always bakes to a
// monotonic offset table.
func (g Gradient) Validate() error {
	if len(g) == 0 {
		return ErrEmptyGradient
	}
	if len(g) > MaxStops {
		return fmt.Errorf("%w: %d stops, limit %d", ErrTooManyStops, len(g), MaxStops)
	}
	for i, s := range g {
		if math.IsNaN(s.Offset) || math.IsInf(s.Offset, 0) {
			return fmt.Errorf("%w: stop %d", ErrInvalidOffset, i)
		}
		if i > 0 && s.Offset < g[i-1].Offset {
			return fmt.Errorf("%w: stop %d offset %g < %g", ErrUnorderedStops, i, s.Offset, g[i-1].Offset)
		}
	}
	return nil
}

// Clone returns an independent copy of the gradient.
func (g Gradient) Clone() Gradient {
	return slices.Clone(g)
}

// Span returns the smallest and largest authored offsets.
func (g Gradient) Span() (lo, hi float64) {
	if len(g) == 0 {
		return 0, 0
	}
	lo, hi = g[0].Offset, g[0].Offset
	for _, s := range g[1:] {
		lo = math.Min(lo, s.Offset)
		hi = math.Max(hi, s.Offset)
	}
	return lo, hi
}

// Rescale maps the gradient's offsets linearly onto [lo, hi]. It is the
// usual way to author a preset in [0, 1] and fit it to a known data range.
func (g Gradient) Rescale(lo, hi float64) Gradient {
	out := g.Clone()
	a, b := g.Span()
	span := b - a
	for i := range out {
		t := 0.0
		if span != 0 {
			t = (g[i].Offset - a) / span
		}
		out[i].Offset = lo + t*(hi-lo)
	}
	return out
}
