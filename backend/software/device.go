// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/heatmap"
	"github.com/gogpu/heatmap/backend"
)

var (
	// ErrNotInitialized is returned when the device is used before Init.
	ErrNotInitialized = errors.New("software: device not initialized")

	// ErrInvalidTexture is returned for textures this device did not
	// create, destroyed textures, and uploads of the wrong size.
	ErrInvalidTexture = errors.New("software: invalid texture")
)

// bandHeight is the number of frame rows one worker shades at a time.
const bandHeight = 16

func init() {
	backend.Register(backend.BackendSoftware, func() heatmap.Device {
		return New()
	})
}

// Option configures a Device.
type Option func(*Device)

// WithWorkers caps the number of goroutines shading row bands. Values
// below 1 select GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(d *Device) {
		d.workers = n
	}
}

// Device rasterizes the heatmap quad on the CPU into an *image.RGBA.
//
// It executes the same program as the GPU backend: the vertex positions
// are rasterized at pixel centers, the texture coordinate is interpolated
// barycentrically, the R8 texture is sampled with clamp-to-edge wrapping,
// and the value is resolved through the gradient table. The frame holds
// alpha-premultiplied colors.
type Device struct {
	initialized bool
	workers     int

	frame    *image.RGBA
	uniforms heatmap.Uniforms
	gradient heatmap.BakedGradient
}

// New returns an uninitialized software device.
func New(opts ...Option) *Device {
	d := &Device{}
	for _, opt := range opts {
		opt(d)
	}
	if d.workers < 1 {
		d.workers = runtime.GOMAXPROCS(0)
	}
	return d
}

// Name returns the backend identifier.
func (d *Device) Name() string { return backend.BackendSoftware }

// Init prepares an empty frame. It never fails.
func (d *Device) Init() error {
	if d.initialized {
		return nil
	}
	d.frame = image.NewRGBA(image.Rect(0, 0, 0, 0))
	d.initialized = true
	heatmap.Logger().Info("software: device initialized", "workers", d.workers)
	return nil
}

// Resize reallocates the frame. The new frame is transparent.
func (d *Device) Resize(width, height int) error {
	if !d.initialized {
		return ErrNotInitialized
	}
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: %dx%d", heatmap.ErrInvalidViewport, width, height)
	}
	if b := d.frame.Bounds(); b.Dx() == width && b.Dy() == height {
		return nil
	}
	d.frame = image.NewRGBA(image.Rect(0, 0, width, height))
	return nil
}

// CreateTexture copies pixels into a new R8 texture.
func (d *Device) CreateTexture(desc *heatmap.TextureDescriptor, pixels []byte) (heatmap.Texture, error) {
	if !d.initialized {
		return nil, ErrNotInitialized
	}
	if desc.Format != heatmap.TextureFormatR8 {
		return nil, fmt.Errorf("%w: unsupported format %s", ErrInvalidTexture, desc.Format)
	}
	if want, ok := desc.ByteSize(); !ok || len(pixels) != want {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d", ErrInvalidTexture, len(pixels), desc.Width, desc.Height)
	}
	return &texture{
		owner:  d,
		width:  desc.Width,
		height: desc.Height,
		filter: desc.Filter,
		pix:    slices.Clone(pixels),
	}, nil
}

// DestroyTexture releases the texture's pixels.
func (d *Device) DestroyTexture(tex heatmap.Texture) {
	t, ok := tex.(*texture)
	if !ok || t.owner != d {
		heatmap.Logger().Warn("software: destroy of foreign texture ignored")
		return
	}
	t.pix = nil
}

// WriteUniforms stores the uniform block and rebuilds the lookup table
// the fragment stage reads.
func (d *Device) WriteUniforms(u *heatmap.Uniforms) error {
	if !d.initialized {
		return ErrNotInitialized
	}
	d.uniforms = *u

	n := int(min(u.StopCount, heatmap.MaxStops))
	g := &d.gradient
	g.Count = n
	g.Colors = g.Colors[:0]
	g.Offsets = g.Offsets[:0]
	for i := range n {
		g.Colors = append(g.Colors, u.Colors[i][:]...)
		g.Offsets = append(g.Offsets, u.Offsets[i])
	}
	return nil
}

// Draw clears the frame and rasterizes vertices as a triangle list.
// Row bands are shaded concurrently and joined before Draw returns.
func (d *Device) Draw(tex heatmap.Texture, vertices []heatmap.Vertex) error {
	if !d.initialized {
		return ErrNotInitialized
	}
	t, ok := tex.(*texture)
	if !ok || t.owner != d || t.pix == nil {
		return ErrInvalidTexture
	}

	clear(d.frame.Pix)

	tris := make([]triangle, 0, len(vertices)/3)
	for i := 0; i+2 < len(vertices); i += 3 {
		if tri, ok := setupTriangle(vertices[i], vertices[i+1], vertices[i+2]); ok {
			tris = append(tris, tri)
		}
	}
	if len(tris) == 0 {
		return nil
	}

	height := d.frame.Bounds().Dy()
	var g errgroup.Group
	g.SetLimit(d.workers)
	for y0 := 0; y0 < height; y0 += bandHeight {
		y1 := min(y0+bandHeight, height)
		g.Go(func() error {
			d.shadeBand(y0, y1, t, tris)
			return nil
		})
	}
	return g.Wait()
}

// ReadFrame returns a copy of the last drawn frame.
func (d *Device) ReadFrame() (*image.RGBA, error) {
	if !d.initialized {
		return nil, ErrNotInitialized
	}
	out := image.NewRGBA(d.frame.Bounds())
	copy(out.Pix, d.frame.Pix)
	return out, nil
}

// Close drops the frame. The device can be initialized again.
func (d *Device) Close() {
	d.frame = nil
	d.initialized = false
}

var (
	_ heatmap.Device      = (*Device)(nil)
	_ heatmap.FrameReader = (*Device)(nil)
)
