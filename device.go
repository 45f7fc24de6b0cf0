package heatmap

import (
	"fmt"
	"image"
	"math"

	"seehuhn.de/go/geom/vec"
)

// TextureFormat is the texel layout of a device texture.
type TextureFormat uint8

const (
	// TextureFormatR8 is one normalized byte per texel, the luminance-style
	// format encoded grids are uploaded in.
	TextureFormatR8 TextureFormat = iota
)

// String returns a human-readable name for the format.
func (f TextureFormat) String() string {
	switch f {
	case TextureFormatR8:
		return "R8"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

// BytesPerPixel returns the number of bytes per texel.
func (f TextureFormat) BytesPerPixel() int {
	return 1
}

// FilterMode selects texture sampling between texel centers.
type FilterMode uint8

const (
	// FilterLinear blends the four nearest texels.
	FilterLinear FilterMode = iota
	// FilterNearest takes the closest texel.
	FilterNearest
)

// WrapMode selects sampling behaviour outside [0, 1].
type WrapMode uint8

const (
	// WrapClampToEdge repeats the border texel; grids never wrap around.
	WrapClampToEdge WrapMode = iota
)

// TextureDescriptor describes a texture to create.
type TextureDescriptor struct {
	Label  string
	Width  int
	Height int
	Format TextureFormat
	Filter FilterMode
	Wrap   WrapMode
}

// ByteSize returns the number of pixel bytes the texture holds. ok is false
// for non-positive dimensions or a size that overflows int.
func (d *TextureDescriptor) ByteSize() (n int, ok bool) {
	bpp := d.Format.BytesPerPixel()
	if d.Width <= 0 || d.Height <= 0 || d.Height > math.MaxInt/bpp/d.Width {
		return 0, false
	}
	return d.Width * d.Height * bpp, true
}

// Texture is an opaque device texture handle. It is owned by the pipeline
// that created it and destroyed through the same device.
type Texture interface {
	Width() int
	Height() int
}

// Vertex is one corner of the quad: a position in viewport pixels and a
// texture coordinate in [0, 1].
type Vertex struct {
	Position vec.Vec2
	TexCoord vec.Vec2
}

// Uniforms is the state the color-resolution stage reads each draw.
type Uniforms struct {
	// Resolution is the viewport size used to map pixels to clip space.
	Resolution [2]float32
	// Opacity scales the resolved alpha.
	Opacity float32
	// StopCount is the number of valid entries in Colors and Offsets.
	StopCount uint32
	Colors    [MaxStops][4]float32
	Offsets   [MaxStops]float32
}

// Device is the GPU capability set the render pipeline consumes. Backends
// live under backend/ and register themselves with the backend registry.
//
// A Device is driven from one goroutine, the host's frame loop.
type Device interface {
	// Name returns the backend identifier (e.g. "software", "wgpu").
	Name() string

	// Init acquires the device and compiles the render program. Errors are
	// fatal: a missing adapter or a shader that fails to compile leaves the
	// device unusable. Calling Init on an initialized device is a no-op.
	Init() error

	// Resize sets the backing surface and viewport size in pixels.
	Resize(width, height int) error

	// CreateTexture creates a texture and uploads pixels, which must hold
	// Width*Height*Format.BytesPerPixel() bytes in row-major order.
	CreateTexture(desc *TextureDescriptor, pixels []byte) (Texture, error)

	// DestroyTexture releases a texture created by this device.
	DestroyTexture(tex Texture)

	// WriteUniforms replaces the uniform state used by subsequent draws.
	WriteUniforms(u *Uniforms) error

	// Draw binds the vertices as a triangle list, samples tex and issues one
	// draw call.
	Draw(tex Texture, vertices []Vertex) error

	// Close releases all device resources.
	Close()
}

// FrameReader is implemented by devices that can return the last drawn frame.
type FrameReader interface {
	ReadFrame() (*image.RGBA, error)
}
