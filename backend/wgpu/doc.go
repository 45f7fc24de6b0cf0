// Package wgpu provides a GPU heatmap backend using gogpu/wgpu.
//
// The device compiles one WGSL shader (validated with naga on Init), keeps
// the data grid in an R8Unorm texture and resolves colors in the fragment
// stage against the gradient table in a 528-byte uniform block. Frames are
// drawn into an offscreen RGBA8 target that ReadFrame copies back.
//
// # Usage
//
// The backend registers itself under "wgpu" when imported:
//
//	import _ "github.com/gogpu/heatmap/backend/wgpu"
//
//	dev, err := backend.InitDefault()
//	hm, err := heatmap.New(dev, heatmap.WithViewport(800, 600))
//
// A host that already owns a GPU device (for example a gogpu window) shares
// it through NewFromProvider. The shared device is never destroyed by Close.
//
// # Build Tags
//
// Build with -tags nogpu to exclude the HAL-dependent files; only the
// uniform packing helpers remain.
package wgpu
