package heatmap

import (
	"fmt"
	"math"
)

// Encoded is a grid quantized to one byte per sample, together with the
// range that produced it. Quantization is lossy: 256 buckets across the
// observed range. Exact values must be read from the raw grid.
type Encoded struct {
	Pixels []byte
	Width  int
	Height int
	Min    float64
	Max    float64
	Range  float64
}

// Degenerate reports whether the grid had no spread (constant, empty, or
// single-sample), in which case every pixel is 0.
func (e *Encoded) Degenerate() bool {
	return e.Range == 0
}

// Decode maps an encoded byte back to native units. The result lies within
// Range/255 of the sample that produced it.
func (e *Encoded) Decode(b byte) float64 {
	return e.Min + float64(b)/255*e.Range
}

// Normalize quantizes samples to bytes against their observed min/max.
//
// Min and max come from one streaming pass with constant extra memory,
// whatever the grid size. Non-finite samples are skipped by the reduction
// and encode to 0. When the range is zero every byte is 0. A range too wide
// for float64 (Range is +Inf) still encodes the extremes to 0 and 255.
func Normalize(samples []float64, width, height int) (*Encoded, error) {
	if !gridSizeOK(len(samples), width, height) {
		return nil, fmt.Errorf("%w: %d samples for %dx%d", ErrGridSize, len(samples), width, height)
	}

	lo, hi := minMax(samples)
	enc := &Encoded{
		Pixels: make([]byte, len(samples)),
		Width:  width,
		Height: height,
		Min:    lo,
		Max:    hi,
		Range:  hi - lo,
	}
	if enc.Range == 0 {
		return enc, nil
	}

	if math.IsInf(enc.Range, 1) {
		// hi-lo overflowed; halved operands keep the span finite.
		span := hi/2 - lo/2
		for i, v := range samples {
			if !isFinite(v) {
				continue
			}
			enc.Pixels[i] = quantize((v/2 - lo/2) / span * 255)
		}
		return enc, nil
	}

	scale := 255 / enc.Range
	for i, v := range samples {
		if !isFinite(v) {
			continue
		}
		enc.Pixels[i] = quantize((v - lo) * scale)
	}
	return enc, nil
}

// gridSizeOK reports whether n samples exactly fill a width x height grid,
// rejecting dimensions whose product overflows int.
func gridSizeOK(n, width, height int) bool {
	if width < 0 || height < 0 {
		return false
	}
	if width != 0 && height > math.MaxInt/width {
		return false
	}
	return n == width*height
}

// minMax is a single-pass accumulator. An input with no finite samples
// reports (0, 0).
func minMax(samples []float64) (lo, hi float64) {
	seen := false
	for _, v := range samples {
		if !isFinite(v) {
			continue
		}
		if !seen {
			lo, hi = v, v
			seen = true
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// quantize rounds a 0..255 value to a byte, clamping out-of-range input.
// NaN maps to 0.
func quantize(v float64) byte {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Round(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
