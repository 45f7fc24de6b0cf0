// Package backend provides the registry heatmap devices plug into.
//
// Device implementations live in sub-packages and register themselves from
// init() functions, so importing a backend is enough to make it selectable:
//
//	import (
//		_ "github.com/gogpu/heatmap/backend/software"
//		_ "github.com/gogpu/heatmap/backend/wgpu"
//	)
//
// # Backend Selection
//
// Use InitDefault() to get the best device that actually initializes, or
// Get() to request a specific backend by name:
//
//	dev, err := backend.InitDefault()
//	if err != nil {
//		log.Fatal(err)
//	}
//	hm, err := heatmap.New(dev)
//
//	// Or request a specific backend
//	dev := backend.Get("software")
//
// # Available Backends
//
//   - "wgpu": GPU rendering via gogpu/wgpu (Vulkan), offscreen with readback
//   - "software": CPU reference implementation (always available)
package backend
