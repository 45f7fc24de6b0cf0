package heatmap

// Lookup resolves an encoded value in [0, 1] to a color exactly as the
// fragment stage does:
//
//   - v <= Offsets[0] resolves to the first color
//   - the first i with v <= Offsets[i] interpolates Colors[i-1] -> Colors[i]
//   - v above the last offset resolves to Transparent, not the last color
//
// Data above the gradient's authored range is not drawn.
func (b *BakedGradient) Lookup(v float64) RGBA {
	if b == nil || b.Count == 0 {
		return Transparent
	}
	n := min(b.Count, MaxStops)

	if v <= float64(b.Offsets[0]) {
		return b.Color(0)
	}
	for i := 1; i < n; i++ {
		hi := float64(b.Offsets[i])
		if v <= hi {
			lo := float64(b.Offsets[i-1])
			// v > lo here, so hi > lo and the division is safe.
			t := (v - lo) / (hi - lo)
			return b.Color(i - 1).Lerp(b.Color(i), t)
		}
	}
	return Transparent
}

// LookupByte resolves an encoded texel.
func (b *BakedGradient) LookupByte(texel byte) RGBA {
	return b.Lookup(float64(texel) / 255)
}
