package heatmap

import (
	"log/slog"
	"testing"
)

// TestDefaultOptions tests the option values New starts from.
func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.viewportWidth != 1 || o.viewportHeight != 1 {
		t.Errorf("viewport = %dx%d, want 1x1", o.viewportWidth, o.viewportHeight)
	}
	if o.opacity != 1 {
		t.Errorf("opacity = %v, want 1", o.opacity)
	}
	if o.filter != FilterLinear {
		t.Errorf("filter = %v, want FilterLinear", o.filter)
	}
	if o.eagerRebake {
		t.Error("eager rebake should be off by default")
	}
	if o.logger != nil {
		t.Error("logger should be nil by default")
	}
}

// TestOptionsApply tests that every option writes its field.
func TestOptionsApply(t *testing.T) {
	l := slog.Default()
	o := defaultOptions()
	for _, opt := range []Option{
		WithLogger(l),
		WithViewport(640, 480),
		WithEagerRebake(),
		WithOpacity(0.25),
		WithFilter(FilterNearest),
	} {
		opt(&o)
	}
	if o.logger != l {
		t.Error("WithLogger did not set the logger")
	}
	if o.viewportWidth != 640 || o.viewportHeight != 480 {
		t.Errorf("viewport = %dx%d, want 640x480", o.viewportWidth, o.viewportHeight)
	}
	if !o.eagerRebake {
		t.Error("WithEagerRebake did not enable eager rebake")
	}
	if o.opacity != 0.25 {
		t.Errorf("opacity = %v, want 0.25", o.opacity)
	}
	if o.filter != FilterNearest {
		t.Errorf("filter = %v, want FilterNearest", o.filter)
	}
}

func TestWithOpacityClamps(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{-1, 0},
		{0, 0},
		{0.5, 0.5},
		{2, 1},
	}
	for _, tt := range tests {
		o := defaultOptions()
		WithOpacity(tt.in)(&o)
		if o.opacity != tt.want {
			t.Errorf("WithOpacity(%v) = %v, want %v", tt.in, o.opacity, tt.want)
		}
	}
}
