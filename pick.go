package heatmap

import "math"

// PickResult is the grid position under a viewport pixel.
type PickResult struct {
	// X and Y are fractional grid coordinates, not floored. Sub-cell
	// consumers (radial brushes, tooltips with interpolation) use them
	// directly.
	X, Y float64
	// Col and Row are the cell used for the lookup.
	Col, Row int
	// Value is the raw sample at (Col, Row). It is meaningful only when OK.
	Value float64
	// OK is false when no grid is set or the pixel lies outside the viewport.
	OK bool
}

// Pick maps a viewport pixel to a grid cell and the raw sample stored there.
//
//	gx = px / viewportWidth  * width
//	gy = py / viewportHeight * height
//
// With transposed set the screen axes swap, matching the transposed quad.
// The lookup reads the raw grid, never the quantized encoding. A pixel
// exactly on the far viewport edge clamps to the last column or row; pixels
// beyond the viewport, an empty grid, or a zero-sized viewport give OK false.
func Pick(px, py float64, viewportWidth, viewportHeight, width, height int, grid []float64, transposed bool) PickResult {
	if viewportWidth <= 0 || viewportHeight <= 0 {
		return PickResult{}
	}

	u := px / float64(viewportWidth)
	v := py / float64(viewportHeight)
	if transposed {
		u, v = v, u
	}
	res := PickResult{
		X: u * float64(width),
		Y: v * float64(height),
	}

	if width <= 0 || height <= 0 || !gridSizeOK(len(grid), width, height) {
		return res
	}
	if math.IsNaN(u) || math.IsNaN(v) || u < 0 || v < 0 || u > 1 || v > 1 {
		return res
	}

	res.Col = min(int(math.Floor(res.X)), width-1)
	res.Row = min(int(math.Floor(res.Y)), height-1)
	res.Value = grid[res.Col+res.Row*width]
	res.OK = true
	return res
}
