package synth

import "math"

// degToRad is the step SmoothNoise advances its phases by.
const degToRad = math.Pi / 180

// NormalCurve returns a Gaussian bump of height peak centered on mean.
func NormalCurve(x, peak, mean, stdDev float64) float64 {
	d := x - mean
	return peak / math.Exp(d*d/(2*stdDev*stdDev))
}

// SmoothNoise returns a slowly varying value centered on (lo+hi)/2 built
// from five sines at halving frequencies. Consecutive seeds give
// consecutive values; the output may overshoot [lo, hi] slightly.
func SmoothNoise(seed, lo, hi float64) float64 {
	span := hi - lo
	v := math.Sin((seed+53551)*degToRad)*span +
		math.Sin((seed+12689)*degToRad*0.5)*span +
		math.Sin((seed+46457)*degToRad*0.25)*span +
		math.Sin((seed+70919)*degToRad*0.125)*span +
		math.Sin((seed+98641)*degToRad*0.0625)*span
	return (lo+hi)/2 + v/5
}
