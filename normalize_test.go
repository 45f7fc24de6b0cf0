package heatmap

import (
	"errors"
	"math"
	"math/bits"
	"math/rand/v2"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		w, h    int
		want    []byte
		min     float64
		max     float64
	}{
		{"ramp", []float64{0, 5, 10}, 3, 1, []byte{0, 128, 255}, 0, 10},
		{"negative", []float64{-4, -2, 0, 4}, 2, 2, []byte{0, 64, 128, 255}, -4, 4},
		{"constant", []float64{7, 7, 7, 7}, 2, 2, []byte{0, 0, 0, 0}, 7, 7},
		{"single", []float64{42}, 1, 1, []byte{0}, 42, 42},
		{"empty", nil, 0, 0, []byte{}, 0, 0},
		{"nan skipped", []float64{0, math.NaN(), 10}, 3, 1, []byte{0, 0, 255}, 0, 10},
		{"inf skipped", []float64{math.Inf(1), 2, 4}, 3, 1, []byte{0, 0, 255}, 2, 4},
		{"range overflows", []float64{-math.MaxFloat64, 0, math.MaxFloat64}, 3, 1,
			[]byte{0, 128, 255}, -math.MaxFloat64, math.MaxFloat64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := Normalize(tt.samples, tt.w, tt.h)
			if err != nil {
				t.Fatalf("Normalize() = %v", err)
			}
			if string(enc.Pixels) != string(tt.want) {
				t.Errorf("Pixels = %v, want %v", enc.Pixels, tt.want)
			}
			if enc.Min != tt.min || enc.Max != tt.max {
				t.Errorf("range = [%v, %v], want [%v, %v]", enc.Min, enc.Max, tt.min, tt.max)
			}
			if enc.Degenerate() != (tt.min == tt.max) {
				t.Errorf("Degenerate() = %v", enc.Degenerate())
			}
		})
	}
}

func TestQuantizeNaN(t *testing.T) {
	if got := quantize(math.NaN()); got != 0 {
		t.Errorf("quantize(NaN) = %d, want 0", got)
	}
}

func TestNormalizeSizeMismatch(t *testing.T) {
	for _, dims := range [][2]int{{2, 2}, {-1, -3}, {3, 0}, {math.MaxInt, 2}} {
		if _, err := Normalize([]float64{1, 2, 3}, dims[0], dims[1]); !errors.Is(err, ErrGridSize) {
			t.Errorf("Normalize(3 samples, %dx%d) error = %v, want ErrGridSize", dims[0], dims[1], err)
		}
	}

	// side*side wraps to exactly 0.
	const side = 1 << (bits.UintSize / 2)
	if _, err := Normalize(nil, side, side); !errors.Is(err, ErrGridSize) {
		t.Errorf("Normalize(nil, %dx%d) error = %v, want ErrGridSize", side, side, err)
	}
}

// TestNormalizeQuantizationBound checks that decoding every byte lands
// within one bucket of the input sample, and that the extremes map to
// exactly 0 and 255.
func TestNormalizeQuantizationBound(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	const w, h = 64, 48
	samples := make([]float64, w*h)
	for i := range samples {
		samples[i] = rng.Float64()*2000 - 500
	}

	enc, err := Normalize(samples, w, h)
	if err != nil {
		t.Fatal(err)
	}
	bucket := enc.Range / 255
	for i, s := range samples {
		if d := math.Abs(enc.Decode(enc.Pixels[i]) - s); d > bucket {
			t.Fatalf("sample %d: decode error %v exceeds %v", i, d, bucket)
		}
		if s == enc.Min && enc.Pixels[i] != 0 {
			t.Errorf("min sample encoded to %d", enc.Pixels[i])
		}
		if s == enc.Max && enc.Pixels[i] != 255 {
			t.Errorf("max sample encoded to %d", enc.Pixels[i])
		}
	}
}

func TestQuantizeClamps(t *testing.T) {
	tests := []struct {
		in   float64
		want byte
	}{
		{-3, 0}, {0, 0}, {0.49, 0}, {0.5, 1}, {127.5, 128}, {254.6, 255}, {300, 255},
	}
	for _, tt := range tests {
		if got := quantize(tt.in); got != tt.want {
			t.Errorf("quantize(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func BenchmarkNormalize(b *testing.B) {
	const w, h = 1024, 1024
	samples := make([]float64, w*h)
	for i := range samples {
		samples[i] = math.Sin(float64(i) * 0.001)
	}
	b.ReportAllocs()
	b.SetBytes(int64(len(samples) * 8))
	for b.Loop() {
		if _, err := Normalize(samples, w, h); err != nil {
			b.Fatal(err)
		}
	}
}
