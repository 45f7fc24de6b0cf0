//go:build !nogpu

package wgpu

import (
	"fmt"
	"image"
	"sync"
	"unsafe"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/heatmap"
	"github.com/gogpu/heatmap/backend"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

func init() {
	backend.Register(backend.BackendWGPU, func() heatmap.Device {
		return New()
	})
}

// halProvider is implemented by device providers that can hand out their
// HAL device and queue (e.g. gogpu.App).
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// Device renders the heatmap quad on the GPU through wgpu/hal.
//
// The quad is drawn into an offscreen RGBA8 target; ReadFrame copies it
// back. The device either opens its own Vulkan adapter on Init or draws on
// a device shared by a host through NewFromProvider.
type Device struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	external bool // shared device: never destroyed by Close

	adapterName string

	pipeline *quadPipeline

	target     hal.Texture
	targetView hal.TextureView
	width      uint32
	height     uint32

	initialized bool
}

// New returns a device that opens its own GPU adapter on Init.
func New() *Device {
	return &Device{}
}

// NewFromProvider returns a device drawing on the host's GPU device. The
// provider must expose HalDevice() and HalQueue() returning hal.Device and
// hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALProvider)
	}
	name := provider.AdapterInfo().Name
	if name == "" {
		name = "shared"
	}
	return newShared(device, queue, name), nil
}

// newShared wraps an already opened HAL device.
func newShared(device hal.Device, queue hal.Queue, name string) *Device {
	return &Device{
		device:      device,
		queue:       queue,
		external:    true,
		adapterName: name,
	}
}

// Name returns the backend identifier.
func (d *Device) Name() string { return backend.BackendWGPU }

// AdapterName returns the name of the GPU in use. A provider's device
// reports the provider's adapter name, or "shared" when it has none.
func (d *Device) AdapterName() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.adapterName
}

// Init validates the shader, opens the GPU (unless shared) and creates the
// render pipeline. Any failure is fatal for this device.
func (d *Device) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.initialized {
		return nil
	}

	if _, err := naga.Compile(heatmapShaderWGSL); err != nil {
		return fmt.Errorf("%w: %w", ErrShaderCompile, err)
	}

	if d.device == nil {
		if err := d.openDevice(); err != nil {
			return err
		}
	}

	p, err := newQuadPipeline(d.device)
	if err != nil {
		d.releaseDevice()
		return fmt.Errorf("create pipeline: %w", err)
	}
	d.pipeline = p
	d.initialized = true
	heatmap.Logger().Info("wgpu: device initialized", "adapter", d.adapterName, "shared", d.external)
	return nil
}

// openDevice selects a discrete or integrated GPU, falling back to the
// first adapter.
func (d *Device) openDevice() error {
	vk, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("%w: vulkan backend not available", ErrNoAdapter)
	}
	instance, err := vk.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("%w: create instance: %w", ErrNoAdapter, err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return fmt.Errorf("%w: no adapters found", ErrNoAdapter)
	}

	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return fmt.Errorf("open device: %w", err)
	}

	d.instance = instance
	d.device = openDev.Device
	d.queue = openDev.Queue
	d.adapterName = selected.Info.Name
	return nil
}

// releaseDevice destroys an owned device and instance.
func (d *Device) releaseDevice() {
	if d.external {
		return
	}
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
		d.queue = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}

// Resize recreates the offscreen target. A zero size drops it; draws are
// skipped until a non-empty size is set.
func (d *Device) Resize(width, height int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return ErrNotInitialized
	}
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: %dx%d", heatmap.ErrInvalidViewport, width, height)
	}
	w, h := uint32(width), uint32(height) //nolint:gosec // checked non-negative above
	if w == d.width && h == d.height && (d.target != nil || w == 0 || h == 0) {
		return nil
	}

	d.destroyTarget()
	d.width, d.height = w, h
	if w == 0 || h == 0 {
		return nil
	}

	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "heatmap_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create render target: %w", err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "heatmap_target_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return fmt.Errorf("create render target view: %w", err)
	}
	d.target, d.targetView = tex, view
	return nil
}

func (d *Device) destroyTarget() {
	if d.targetView != nil {
		d.device.DestroyTextureView(d.targetView)
		d.targetView = nil
	}
	if d.target != nil {
		d.device.DestroyTexture(d.target)
		d.target = nil
	}
}

// CreateTexture uploads pixels into a new R8 texture and binds it with the
// uniform buffer and the sampler matching desc.Filter.
func (d *Device) CreateTexture(desc *heatmap.TextureDescriptor, pixels []byte) (heatmap.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return nil, ErrNotInitialized
	}
	if desc.Format != heatmap.TextureFormatR8 {
		return nil, fmt.Errorf("%w: unsupported format %s", ErrInvalidTexture, desc.Format)
	}
	if want, ok := desc.ByteSize(); !ok || len(pixels) != want {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d", ErrInvalidTexture, len(pixels), desc.Width, desc.Height)
	}
	return d.pipeline.createTexture(d.device, d.queue, desc, pixels)
}

// DestroyTexture releases the texture, its view and its bind group.
func (d *Device) DestroyTexture(tex heatmap.Texture) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := tex.(*texture)
	if !ok || t.pipeline != d.pipeline {
		heatmap.Logger().Warn("wgpu: destroy of foreign texture ignored")
		return
	}
	t.destroy(d.device)
}

// WriteUniforms uploads the uniform block.
func (d *Device) WriteUniforms(u *heatmap.Uniforms) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return ErrNotInitialized
	}
	if err := d.queue.WriteBuffer(d.pipeline.uniformBuf, 0, packUniforms(u)); err != nil {
		return fmt.Errorf("write uniforms: %w", err)
	}
	return nil
}

// Draw records one render pass drawing vertices into the offscreen target
// and waits for it to complete.
func (d *Device) Draw(tex heatmap.Texture, vertices []heatmap.Vertex) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return ErrNotInitialized
	}
	t, ok := tex.(*texture)
	if !ok || t.pipeline != d.pipeline || t.bindGroup == nil {
		return ErrInvalidTexture
	}
	if d.target == nil || len(vertices) == 0 {
		return nil
	}
	if len(vertices) > maxVertices {
		return fmt.Errorf("wgpu: %d vertices exceed the %d-vertex buffer", len(vertices), maxVertices)
	}

	if err := d.queue.WriteBuffer(d.pipeline.vertexBuf, 0, packVertices(vertices)); err != nil {
		return fmt.Errorf("write vertices: %w", err)
	}

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "heatmap_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("heatmap_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "heatmap_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       d.targetView,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})
	d.pipeline.record(rp, t, uint32(len(vertices))) //nolint:gosec // bounded by maxVertices
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	return d.submitAndWait(cmdBuf)
}

// submitAndWait submits one command buffer and blocks until the device is
// idle.
func (d *Device) submitAndWait(cmdBuf hal.CommandBuffer) error {
	if _, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	if err := d.device.WaitIdle(); err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	return nil
}

// ReadFrame copies the offscreen target back to the CPU.
func (d *Device) ReadFrame() (*image.RGBA, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return nil, ErrNotInitialized
	}
	w, h := d.width, d.height
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	if d.target == nil {
		return img, nil
	}

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "heatmap_readback"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("heatmap_readback"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	// CopyTextureToBuffer requires TRANSFER_SRC layout; no-op on noop/Metal.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: d.target,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	// BytesPerRow must be aligned to 256 bytes.
	bytesPerRow := w * 4
	const copyPitchAlignment = 256
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "heatmap_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	encoder.CopyTextureToBuffer(d.target, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: d.target, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	// Back to RenderAttachment for the next frame's pass.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: d.target,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	if err := d.submitAndWait(cmdBuf); err != nil {
		return nil, err
	}

	m, err := d.device.MapBuffer(staging, 0, stagingSize)
	if err != nil {
		return nil, fmt.Errorf("map staging buffer: %w", err)
	}
	readback := unsafe.Slice((*byte)(m.Ptr), stagingSize)
	for row := range h {
		src := readback[uint64(row)*uint64(alignedBytesPerRow):]
		copy(img.Pix[int(row)*img.Stride:int(row)*img.Stride+int(bytesPerRow)], src[:bytesPerRow])
	}
	if err := d.device.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("unmap staging buffer: %w", err)
	}
	return img, nil
}

// Close releases the target, the pipeline and, unless shared, the device.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.device == nil {
		return
	}
	d.destroyTarget()
	d.width, d.height = 0, 0
	if d.pipeline != nil {
		d.pipeline.destroy(d.device)
		d.pipeline = nil
	}
	d.releaseDevice()
	d.initialized = false
}

var (
	_ heatmap.Device      = (*Device)(nil)
	_ heatmap.FrameReader = (*Device)(nil)
)
