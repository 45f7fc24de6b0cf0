package heatmap

import "fmt"

// RenderPipeline owns the per-dataset device state: the encoded texture,
// the baked gradient, the viewport and the transposed flag. It issues one
// triangle-list draw per frame.
//
// RenderPipeline is not safe for concurrent use.
type RenderPipeline struct {
	device     Device
	texture    Texture
	baked      *BakedGradient
	uniforms   Uniforms
	filter     FilterMode
	transposed bool
	width      int
	height     int
}

// NewRenderPipeline wraps an initialized device.
func NewRenderPipeline(device Device, filter FilterMode, opacity float32) *RenderPipeline {
	p := &RenderPipeline{
		device: device,
		filter: filter,
	}
	p.uniforms.Opacity = opacity
	return p
}

// UploadTexture replaces the texture with a fresh R8 texture holding enc.
// The previous texture is destroyed first; a texture is never updated in
// place.
func (p *RenderPipeline) UploadTexture(enc *Encoded) error {
	if p.texture != nil {
		p.device.DestroyTexture(p.texture)
		p.texture = nil
	}
	if enc == nil || enc.Width == 0 || enc.Height == 0 {
		return nil
	}

	tex, err := p.device.CreateTexture(&TextureDescriptor{
		Label:  "heatmap_data",
		Width:  enc.Width,
		Height: enc.Height,
		Format: TextureFormatR8,
		Filter: p.filter,
		Wrap:   WrapClampToEdge,
	}, enc.Pixels)
	if err != nil {
		return fmt.Errorf("heatmap: upload %dx%d texture: %w", enc.Width, enc.Height, err)
	}
	p.texture = tex
	return nil
}

// SetGradient writes the baked color and offset tables into the uniform
// block. The texture is not touched.
func (p *RenderPipeline) SetGradient(b *BakedGradient) error {
	if b == nil {
		return ErrEmptyGradient
	}
	n := min(b.Count, MaxStops)
	p.uniforms.StopCount = uint32(n)
	p.uniforms.Colors = [MaxStops][4]float32{}
	p.uniforms.Offsets = [MaxStops]float32{}
	for i := range n {
		copy(p.uniforms.Colors[i][:], b.Colors[i*4:i*4+4])
		p.uniforms.Offsets[i] = b.Offsets[i]
	}
	if err := p.device.WriteUniforms(&p.uniforms); err != nil {
		return fmt.Errorf("heatmap: write gradient uniforms: %w", err)
	}
	p.baked = b
	return nil
}

// SetOpacity changes the global alpha multiplier, clamped to [0, 1], and
// writes the uniform block. The next Draw uses it.
func (p *RenderPipeline) SetOpacity(opacity float32) error {
	p.uniforms.Opacity = min(max(opacity, 0), 1)
	if err := p.device.WriteUniforms(&p.uniforms); err != nil {
		return fmt.Errorf("heatmap: write opacity uniforms: %w", err)
	}
	return nil
}

// Opacity returns the global alpha multiplier.
func (p *RenderPipeline) Opacity() float32 { return p.uniforms.Opacity }

// SetViewport resizes the device surface and updates the resolution
// uniform.
func (p *RenderPipeline) SetViewport(width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidViewport, width, height)
	}
	if err := p.device.Resize(width, height); err != nil {
		return fmt.Errorf("heatmap: resize viewport: %w", err)
	}
	p.width, p.height = width, height
	p.uniforms.Resolution = [2]float32{float32(width), float32(height)}
	if err := p.device.WriteUniforms(&p.uniforms); err != nil {
		return fmt.Errorf("heatmap: write viewport uniforms: %w", err)
	}
	return nil
}

// SetTransposed selects the transposed vertex layout for later draws.
func (p *RenderPipeline) SetTransposed(transposed bool) {
	p.transposed = transposed
}

// Ready reports whether both a texture and a gradient are bound.
func (p *RenderPipeline) Ready() bool {
	return p.texture != nil && p.baked != nil
}

// Draw renders the full-viewport quad. It is a no-op until both a texture
// and a gradient have been set.
func (p *RenderPipeline) Draw() error {
	if !p.Ready() {
		return nil
	}
	quad := QuadVertices(float64(p.width), float64(p.height), p.transposed)
	if err := p.device.Draw(p.texture, quad[:]); err != nil {
		return fmt.Errorf("heatmap: draw: %w", err)
	}
	return nil
}

// Destroy releases the texture. The device itself stays open.
func (p *RenderPipeline) Destroy() {
	if p.texture != nil {
		p.device.DestroyTexture(p.texture)
		p.texture = nil
	}
	p.baked = nil
}
