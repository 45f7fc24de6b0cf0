//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/heatmap"
)

// maxVertices is the capacity of the vertex buffer: one quad.
const maxVertices = 6

// quadPipeline owns the device objects shared by every frame: shader,
// layouts, render pipeline, uniform and vertex buffers, and one sampler
// per filter mode.
type quadPipeline struct {
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline

	uniformBuf hal.Buffer
	vertexBuf  hal.Buffer

	linearSampler  hal.Sampler
	nearestSampler hal.Sampler
}

// texture is an R8 data texture with its view and bind group.
type texture struct {
	pipeline  *quadPipeline
	width     int
	height    int
	tex       hal.Texture
	view      hal.TextureView
	bindGroup hal.BindGroup
}

func (t *texture) Width() int  { return t.width }
func (t *texture) Height() int { return t.height }

// newQuadPipeline creates all shared objects. On error everything created
// so far is destroyed.
func newQuadPipeline(device hal.Device) (*quadPipeline, error) {
	p := &quadPipeline{}
	if err := p.create(device); err != nil {
		p.destroy(device)
		return nil, err
	}
	return p, nil
}

func (p *quadPipeline) create(device hal.Device) error {
	shader, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "heatmap_shader",
		Source: hal.ShaderSource{WGSL: heatmapShaderWGSL},
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrShaderCompile, err)
	}
	p.shader = shader

	// Bind group layout:
	//   Binding 0: Uniforms (vertex + fragment)
	//   Binding 1: data texture (fragment)
	//   Binding 2: sampler (fragment)
	bindLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "heatmap_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "heatmap_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	pipeline, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "heatmap_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    quadVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					// No blending: the pass clears and the quad covers the target.
					Format:    gputypes.TextureFormatRGBA8Unorm,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}
	p.pipeline = pipeline

	uniformBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "heatmap_uniforms",
		Size:  uniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}
	p.uniformBuf = uniformBuf

	vertexBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "heatmap_vertices",
		Size:  maxVertices * vertexStride,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create vertex buffer: %w", err)
	}
	p.vertexBuf = vertexBuf

	if p.linearSampler, err = createSampler(device, "heatmap_sampler_linear", gputypes.FilterModeLinear); err != nil {
		return err
	}
	if p.nearestSampler, err = createSampler(device, "heatmap_sampler_nearest", gputypes.FilterModeNearest); err != nil {
		return err
	}
	return nil
}

// createSampler returns a clamp-to-edge sampler; grids never wrap.
func createSampler(device hal.Device, label string, filter gputypes.FilterMode) (hal.Sampler, error) {
	s, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        label,
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    filter,
		MinFilter:    filter,
		MipmapFilter: filter,
	})
	if err != nil {
		return nil, fmt.Errorf("create sampler %s: %w", label, err)
	}
	return s, nil
}

// quadVertexLayout matches VertexInput in heatmap.wgsl:
//
//	location 0: position (vec2<f32>)
//	location 1: tex_coord (vec2<f32>)
func quadVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: vertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
			},
		},
	}
}

// createTexture uploads an R8 texture and builds its bind group.
func (p *quadPipeline) createTexture(device hal.Device, queue hal.Queue, desc *heatmap.TextureDescriptor, pixels []byte) (*texture, error) {
	w, h := uint32(desc.Width), uint32(desc.Height) //nolint:gosec // validated positive by caller

	t := &texture{pipeline: p, width: desc.Width, height: desc.Height}
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatR8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create data texture: %w", err)
	}
	t.tex = tex

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         desc.Label + "_view",
		Format:        gputypes.TextureFormatR8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		t.destroy(device)
		return nil, fmt.Errorf("create data texture view: %w", err)
	}
	t.view = view

	// R8 rows are tightly packed; WriteTexture has no 256-byte pitch rule.
	err = queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		pixels,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		t.destroy(device)
		return nil, fmt.Errorf("write data texture: %w", err)
	}

	sampler := p.linearSampler
	if desc.Filter == heatmap.FilterNearest {
		sampler = p.nearestSampler
	}
	bg, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  desc.Label + "_bind",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: p.uniformBuf.NativeHandle(), Offset: 0, Size: uniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: view.NativeHandle(),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		t.destroy(device)
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	t.bindGroup = bg
	return t, nil
}

// record issues the draw into an open render pass.
func (p *quadPipeline) record(rp hal.RenderPassEncoder, t *texture, vertexCount uint32) {
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, t.bindGroup, nil)
	rp.SetVertexBuffer(0, p.vertexBuf, 0)
	rp.Draw(vertexCount, 1, 0, 0)
}

// destroy releases everything in reverse creation order. It tolerates a
// partially created pipeline.
func (p *quadPipeline) destroy(device hal.Device) {
	if p.nearestSampler != nil {
		device.DestroySampler(p.nearestSampler)
		p.nearestSampler = nil
	}
	if p.linearSampler != nil {
		device.DestroySampler(p.linearSampler)
		p.linearSampler = nil
	}
	if p.vertexBuf != nil {
		device.DestroyBuffer(p.vertexBuf)
		p.vertexBuf = nil
	}
	if p.uniformBuf != nil {
		device.DestroyBuffer(p.uniformBuf)
		p.uniformBuf = nil
	}
	if p.pipeline != nil {
		device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// destroy releases the texture's bind group, view and texture. It is safe
// to call twice.
func (t *texture) destroy(device hal.Device) {
	if t.bindGroup != nil {
		device.DestroyBindGroup(t.bindGroup)
		t.bindGroup = nil
	}
	if t.view != nil {
		device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		device.DestroyTexture(t.tex)
		t.tex = nil
	}
}
