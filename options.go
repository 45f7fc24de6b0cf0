package heatmap

import "log/slog"

// Option configures a Heatmap during creation.
//
// Example:
//
//	dev := software.New()
//	hm, err := heatmap.New(dev,
//		heatmap.WithViewport(800, 600),
//		heatmap.WithOpacity(0.8),
//	)
type Option func(*options)

// options holds optional configuration for Heatmap creation.
type options struct {
	logger         *slog.Logger
	viewportWidth  int
	viewportHeight int
	eagerRebake    bool
	opacity        float32
	filter         FilterMode
}

// defaultOptions returns the default heatmap options.
func defaultOptions() options {
	return options{
		viewportWidth:  1,
		viewportHeight: 1,
		opacity:        1,
		filter:         FilterLinear,
	}
}

// WithLogger installs l as the package logger before the device is
// initialized. It is equivalent to calling SetLogger(l) first.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithViewport sets the initial viewport size in pixels.
func WithViewport(width, height int) Option {
	return func(o *options) {
		o.viewportWidth = width
		o.viewportHeight = height
	}
}

// WithEagerRebake makes SetData, AddRow and SetGradient normalize, upload
// and bake immediately instead of deferring the work to the next Render.
//
// Use it when every update is followed by exactly one render anyway and
// errors should surface from the setter that caused them.
func WithEagerRebake() Option {
	return func(o *options) {
		o.eagerRebake = true
	}
}

// WithOpacity sets a global alpha multiplier in [0, 1] applied to every
// resolved color. Values outside the range are clamped.
func WithOpacity(opacity float32) Option {
	return func(o *options) {
		o.opacity = min(max(opacity, 0), 1)
	}
}

// WithFilter selects how the encoded texture is sampled between texels.
// The default is FilterLinear.
func WithFilter(f FilterMode) Option {
	return func(o *options) {
		o.filter = f
	}
}
