package heatmap

import (
	"fmt"
	"image"
)

// Heatmap renders a row-major grid of samples as a false-color image.
//
// Setters only record state and mark it dirty. Render resolves whatever is
// dirty (normalize and upload when the data changed, bake when the data or
// the gradient changed) and then draws once. WithEagerRebake moves that work
// back into the setters.
//
// A Heatmap is driven from a single goroutine, typically the host's frame
// loop.
type Heatmap struct {
	device   Device
	pipeline *RenderPipeline
	stream   StreamBuffer
	gradient Gradient
	encoded  *Encoded
	baked    *BakedGradient
	opts     options

	dataDirty     bool
	gradientDirty bool
	closed        bool
}

// New initializes device and returns a Heatmap drawing through it.
//
// Initialization failures are fatal: the error wraps ErrInit and no Heatmap
// is returned. The device is closed in that case.
func New(device Device, opts ...Option) (*Heatmap, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger != nil {
		SetLogger(o.logger)
	}
	if device == nil {
		return nil, fmt.Errorf("%w: nil device", ErrInit)
	}
	if err := device.Init(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInit, device.Name(), err)
	}

	p := NewRenderPipeline(device, o.filter, o.opacity)
	if err := p.SetViewport(o.viewportWidth, o.viewportHeight); err != nil {
		device.Close()
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}

	Logger().Info("heatmap: device initialized",
		"backend", device.Name(),
		"viewport", fmt.Sprintf("%dx%d", o.viewportWidth, o.viewportHeight),
		"eager", o.eagerRebake)

	return &Heatmap{
		device:   device,
		pipeline: p,
		opts:     o,
	}, nil
}

// SetData replaces the grid with a copy of samples.
func (h *Heatmap) SetData(samples []float64, width, height int) error {
	if h.closed {
		return ErrClosed
	}
	if err := h.stream.SetGrid(samples, width, height); err != nil {
		return err
	}
	h.dataDirty = true
	return h.maybeRebake()
}

// AddRow inserts one row at the edge selected by dir, evicting rows from
// the opposite edge when maxRows is positive and would be exceeded.
func (h *Heatmap) AddRow(row []float64, maxRows int, dir Direction) error {
	if h.closed {
		return ErrClosed
	}
	if err := h.stream.AddRow(row, maxRows, dir); err != nil {
		return err
	}
	h.dataDirty = true
	return h.maybeRebake()
}

// Data returns a copy of the raw samples. It round-trips SetData exactly.
func (h *Heatmap) Data() []float64 { return h.stream.Data() }

// Width returns the grid width in columns.
func (h *Heatmap) Width() int { return h.stream.Width() }

// Height returns the grid height in rows.
func (h *Heatmap) Height() int { return h.stream.Height() }

// SetGradient validates g and stores a copy. Offsets are in the data's
// native units and are rescaled against the data range on every bake.
func (h *Heatmap) SetGradient(g Gradient) error {
	if h.closed {
		return ErrClosed
	}
	if err := g.Validate(); err != nil {
		return err
	}
	h.gradient = g.Clone()
	h.gradientDirty = true
	return h.maybeRebake()
}

// Gradient returns a copy of the current gradient.
func (h *Heatmap) Gradient() Gradient { return h.gradient.Clone() }

// SetTransposed swaps the screen axes and redraws. Neither the texture nor
// the gradient is rebuilt for the swap itself.
func (h *Heatmap) SetTransposed(transposed bool) error {
	if h.closed {
		return ErrClosed
	}
	h.pipeline.SetTransposed(transposed)
	return h.Render()
}

// Transposed reports whether the screen axes are swapped.
func (h *Heatmap) Transposed() bool { return h.pipeline.transposed }

// SetOpacity changes the global alpha multiplier and redraws. Values
// outside [0, 1] are clamped. Nothing is rebaked.
func (h *Heatmap) SetOpacity(opacity float32) error {
	if h.closed {
		return ErrClosed
	}
	if err := h.pipeline.SetOpacity(opacity); err != nil {
		return err
	}
	h.opts.opacity = h.pipeline.Opacity()
	return h.Render()
}

// Opacity returns the global alpha multiplier.
func (h *Heatmap) Opacity() float32 { return h.pipeline.Opacity() }

// Resize changes the viewport and redraws. Hosts call it from their resize
// handler.
func (h *Heatmap) Resize(width, height int) error {
	if h.closed {
		return ErrClosed
	}
	if err := h.pipeline.SetViewport(width, height); err != nil {
		return err
	}
	h.opts.viewportWidth, h.opts.viewportHeight = width, height
	return h.Render()
}

// Viewport returns the viewport size in pixels.
func (h *Heatmap) Viewport() (width, height int) {
	return h.pipeline.width, h.pipeline.height
}

// Render resolves pending data and gradient changes, then draws once.
// Drawing is skipped until both data and a gradient have been set.
func (h *Heatmap) Render() error {
	if h.closed {
		return ErrClosed
	}
	if err := h.rebake(); err != nil {
		return err
	}
	return h.pipeline.Draw()
}

// Pick maps a viewport pixel to a grid cell and returns the raw sample
// there, honoring the transposed layout.
func (h *Heatmap) Pick(px, py float64) PickResult {
	return Pick(px, py,
		h.pipeline.width, h.pipeline.height,
		h.stream.Width(), h.stream.Height(),
		h.stream.samplesView(), h.pipeline.transposed)
}

// Range returns the finite min and max of the current data. ok is false
// when no data is set.
func (h *Heatmap) Range() (lo, hi float64, ok bool) {
	if h.stream.Empty() {
		return 0, 0, false
	}
	lo, hi = minMax(h.stream.samplesView())
	return lo, hi, true
}

// Baked returns the gradient as of the last bake, or nil before the first.
// It lags behind SetData and SetGradient until the next Render.
func (h *Heatmap) Baked() *BakedGradient { return h.baked }

// Snapshot renders and returns the frame when the device supports
// readback. Otherwise it returns ErrNoFrameReader.
func (h *Heatmap) Snapshot() (*image.RGBA, error) {
	fr, ok := h.device.(FrameReader)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoFrameReader, h.device.Name())
	}
	if err := h.Render(); err != nil {
		return nil, err
	}
	return fr.ReadFrame()
}

// Close releases the texture and the device. It is safe to call twice.
func (h *Heatmap) Close() {
	if h.closed {
		return
	}
	h.closed = true
	h.pipeline.Destroy()
	h.device.Close()
}

func (h *Heatmap) maybeRebake() error {
	if !h.opts.eagerRebake {
		return nil
	}
	return h.rebake()
}

// rebake runs the dirty stages in order. Each flag is cleared only after its
// stage succeeded, so a failed upload is retried by the next Render.
func (h *Heatmap) rebake() error {
	if h.dataDirty {
		enc, err := Normalize(h.stream.samplesView(), h.stream.Width(), h.stream.Height())
		if err != nil {
			return err
		}
		if err := h.pipeline.UploadTexture(enc); err != nil {
			return err
		}
		h.encoded = enc
		h.dataDirty = false
		// The offset domain moved with the data.
		h.gradientDirty = true
	}

	if h.gradientDirty && len(h.gradient) > 0 && h.encoded != nil {
		baked, err := Bake(h.gradient, h.encoded.Min, h.encoded.Range)
		if err != nil {
			return err
		}
		if err := h.pipeline.SetGradient(baked); err != nil {
			return err
		}
		h.baked = baked
		h.gradientDirty = false

		Logger().Debug("heatmap: rebaked",
			"grid", fmt.Sprintf("%dx%d", h.encoded.Width, h.encoded.Height),
			"min", h.encoded.Min,
			"max", h.encoded.Max,
			"stops", baked.Count)
	}
	return nil
}
