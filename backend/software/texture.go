// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"math"

	"github.com/gogpu/heatmap"
)

// texture is a single-channel 8-bit texture sampled with clamp-to-edge
// addressing.
type texture struct {
	owner  *Device
	width  int
	height int
	filter heatmap.FilterMode
	pix    []byte
}

func (t *texture) Width() int  { return t.width }
func (t *texture) Height() int { return t.height }

// sample returns the normalized texel value at (u, v). Texel centers sit at
// (i+0.5)/width, as on the GPU.
func (t *texture) sample(u, v float64) float64 {
	if t.filter == heatmap.FilterNearest {
		x := clampIndex(int(math.Floor(u*float64(t.width))), t.width)
		y := clampIndex(int(math.Floor(v*float64(t.height))), t.height)
		return float64(t.pix[y*t.width+x]) / 255
	}

	fx := u*float64(t.width) - 0.5
	fy := v*float64(t.height) - 0.5
	fx0 := math.Floor(fx)
	fy0 := math.Floor(fy)
	dx := fx - fx0
	dy := fy - fy0

	x0 := clampIndex(int(fx0), t.width)
	x1 := clampIndex(int(fx0)+1, t.width)
	y0 := clampIndex(int(fy0), t.height)
	y1 := clampIndex(int(fy0)+1, t.height)

	// Four texels
	p00 := float64(t.pix[y0*t.width+x0])
	p10 := float64(t.pix[y0*t.width+x1])
	p01 := float64(t.pix[y1*t.width+x0])
	p11 := float64(t.pix[y1*t.width+x1])

	top := p00 + (p10-p00)*dx
	bottom := p01 + (p11-p01)*dx
	return (top + (bottom-top)*dy) / 255
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
