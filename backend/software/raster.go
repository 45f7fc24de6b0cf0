// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"math"

	"github.com/gogpu/heatmap"
)

// edgeEpsilon admits pixel centers sitting exactly on a shared edge.
const edgeEpsilon = -1e-9

// triangle holds the barycentric setup of one screen-space triangle.
type triangle struct {
	x2, y2     float64
	dy12, dx21 float64
	dy20, dx02 float64
	invDet     float64

	u0, v0, u1, v1, u2, v2 float64

	minY, maxY float64
	minX, maxX float64
}

// setupTriangle precomputes edge deltas. Degenerate triangles are rejected.
func setupTriangle(a, b, c heatmap.Vertex) (triangle, bool) {
	x0, y0 := a.Position.X, a.Position.Y
	x1, y1 := b.Position.X, b.Position.Y
	x2, y2 := c.Position.X, c.Position.Y

	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-12 && det < 1e-12 {
		return triangle{}, false
	}

	return triangle{
		x2: x2, y2: y2,
		dy12: y1 - y2, dx21: x2 - x1,
		dy20: y2 - y0, dx02: x0 - x2,
		invDet: 1 / det,

		u0: a.TexCoord.X, v0: a.TexCoord.Y,
		u1: b.TexCoord.X, v1: b.TexCoord.Y,
		u2: c.TexCoord.X, v2: c.TexCoord.Y,

		minX: math.Min(math.Min(x0, x1), x2),
		maxX: math.Max(math.Max(x0, x1), x2),
		minY: math.Min(math.Min(y0, y1), y2),
		maxY: math.Max(math.Max(y0, y1), y2),
	}, true
}

// texCoordAt returns the interpolated texture coordinate at (px, py) and
// whether the point lies inside the triangle.
func (t *triangle) texCoordAt(px, py float64) (u, v float64, inside bool) {
	if px < t.minX || px > t.maxX || py < t.minY || py > t.maxY {
		return 0, 0, false
	}
	dsx := px - t.x2
	dsy := py - t.y2
	w0 := (t.dy12*dsx + t.dx21*dsy) * t.invDet
	w1 := (t.dy20*dsx + t.dx02*dsy) * t.invDet
	w2 := 1 - w0 - w1
	if w0 < edgeEpsilon || w1 < edgeEpsilon || w2 < edgeEpsilon {
		return 0, 0, false
	}
	u = w0*t.u0 + w1*t.u1 + w2*t.u2
	v = w0*t.v0 + w1*t.v1 + w2*t.v2
	return u, v, true
}

// shadeBand runs the fragment stage for frame rows [y0, y1). Bands never
// overlap, so workers write disjoint parts of the frame.
func (d *Device) shadeBand(y0, y1 int, tex *texture, tris []triangle) {
	frame := d.frame
	width := frame.Bounds().Dx()
	opacity := float64(d.uniforms.Opacity)

	for sy := y0; sy < y1; sy++ {
		py := float64(sy) + 0.5
		row := frame.Pix[sy*frame.Stride : sy*frame.Stride+width*4]
		for sx := range width {
			px := float64(sx) + 0.5
			for i := range tris {
				u, v, ok := tris[i].texCoordAt(px, py)
				if !ok {
					continue
				}
				c := d.gradient.Lookup(tex.sample(u, v))
				a := c.A * opacity
				o := sx * 4
				row[o] = unorm8(c.R * a)
				row[o+1] = unorm8(c.G * a)
				row[o+2] = unorm8(c.B * a)
				row[o+3] = unorm8(a)
				break
			}
		}
	}
}

// unorm8 converts [0, 1] to a byte the way a UNORM render target does.
func unorm8(x float64) uint8 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 255
	}
	return uint8(x*255 + 0.5)
}
