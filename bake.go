package heatmap

import "fmt"

// BakedGradient is a gradient resolved against one dataset's range: a flat
// RGBA color table and a parallel offset table in the encoded [0, 1] domain.
type BakedGradient struct {
	// Colors holds 4 floats per stop, in stop order.
	Colors []float32
	// Offsets holds one clamped [0, 1] threshold per stop.
	Offsets []float32
	// Count is the number of stops.
	Count int
	// Min and Max are the authored (native-unit) offset extremes. They are
	// informational and not used for rendering.
	Min, Max float64
}

// Color returns the i-th color of the table.
func (b *BakedGradient) Color(i int) RGBA {
	c := b.Colors[i*4 : i*4+4]
	return RGBA{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
}

// Bake rescales each stop's native offset into the encoded domain using the
// same formula as Normalize, without the rounding step:
//
//	offset = clamp((stop.Offset - dataMin) / dataRange, 0, 1)
//
// Rebaking is required after every data change because the domain moves
// with the data. With a zero range the rescale degenerates to a step: 0 for
// stops at or below dataMin, 1 above. Every texel is then 0 and resolves to
// the first stop's color, so a constant grid above the last offset is still
// drawn rather than left transparent.
//
// Bake fails fast on an empty gradient or one longer than MaxStops.
func Bake(stops []Stop, dataMin, dataRange float64) (*BakedGradient, error) {
	if len(stops) == 0 {
		return nil, ErrEmptyGradient
	}
	if len(stops) > MaxStops {
		return nil, fmt.Errorf("%w: %d stops, limit %d", ErrTooManyStops, len(stops), MaxStops)
	}

	b := &BakedGradient{
		Colors:  make([]float32, 0, len(stops)*4),
		Offsets: make([]float32, 0, len(stops)),
		Count:   len(stops),
	}
	b.Min, b.Max = Gradient(stops).Span()

	for _, s := range stops {
		b.Colors = append(b.Colors,
			float32(s.Color.R), float32(s.Color.G), float32(s.Color.B), float32(s.Color.A))
		b.Offsets = append(b.Offsets, float32(rescale(s.Offset, dataMin, dataRange)))
	}
	return b, nil
}

func rescale(v, lo, span float64) float64 {
	if span == 0 {
		if v <= lo {
			return 0
		}
		return 1
	}
	return clamp01((v - lo) / span)
}
