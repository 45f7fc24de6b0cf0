package synth

import "math"

// Brush defaults.
const (
	DefaultBrushSize     = 10
	DefaultBrushStrength = 1.0 / 15
)

// Brush deposits a radial falloff into a row-major grid of samples in
// [0, 1]. Cells within Size of the center gain Strength scaled by
// 1 - distance/Size, capped at 1. The center cell itself is left alone.
type Brush struct {
	Size     float64
	Strength float64
}

// NewBrush returns a brush with the default size and strength.
func NewBrush() Brush {
	return Brush{Size: DefaultBrushSize, Strength: DefaultBrushStrength}
}

// Paint applies one dab centered on the grid cell (cx, cy). It only
// visits the bounding box of the dab.
func (b Brush) Paint(data []float64, width, height int, cx, cy float64) {
	if b.Size <= 0 || width <= 0 || height <= 0 || len(data) < width*height {
		return
	}
	x0 := max(int(math.Floor(cx-b.Size)), 0)
	x1 := min(int(math.Ceil(cx+b.Size)), width-1)
	y0 := max(int(math.Floor(cy-b.Size)), 0)
	y1 := min(int(math.Ceil(cy+b.Size)), height-1)

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			falloff := 1 - math.Hypot(float64(x)-cx, float64(y)-cy)/b.Size
			if falloff <= 0 || falloff >= 1 {
				continue
			}
			i := y*width + x
			data[i] = min(data[i]+falloff*b.Strength, 1)
		}
	}
}
