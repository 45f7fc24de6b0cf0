package heatmap

import "seehuhn.de/go/geom/vec"

// quadTexCoords spans the texture once: two triangles, six vertices.
var quadTexCoords = [6]vec.Vec2{
	{X: 0, Y: 0},
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: 0, Y: 1},
	{X: 1, Y: 0},
	{X: 1, Y: 1},
}

// QuadVertices returns the full-viewport quad in pixel space.
//
// In the normal layout texture u runs along screen x and v along screen y.
// Transposed keeps the texture coordinates and swaps the corner positions,
// so u runs along screen y and v along screen x. The data is presented
// rotated/mirrored without being re-encoded.
func QuadVertices(width, height float64, transposed bool) [6]Vertex {
	x1, y1 := 0.0, 0.0
	x2, y2 := width, height

	pos := [6]vec.Vec2{
		{X: x1, Y: y1},
		{X: x2, Y: y1},
		{X: x1, Y: y2},
		{X: x1, Y: y2},
		{X: x2, Y: y1},
		{X: x2, Y: y2},
	}
	if transposed {
		pos = [6]vec.Vec2{
			{X: x1, Y: y1},
			{X: x1, Y: y2},
			{X: x2, Y: y1},
			{X: x2, Y: y1},
			{X: x1, Y: y2},
			{X: x2, Y: y2},
		}
	}

	var out [6]Vertex
	for i := range out {
		out[i] = Vertex{Position: pos[i], TexCoord: quadTexCoords[i]}
	}
	return out
}

// ToClip converts a pixel position to clip space for a viewport of the
// given size, flipping y so pixel row 0 is at the top.
func ToClip(p vec.Vec2, width, height float64) vec.Vec2 {
	return vec.Vec2{
		X: p.X/width*2 - 1,
		Y: -(p.Y/height*2 - 1),
	}
}
