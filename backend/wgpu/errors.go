package wgpu

import "errors"

var (
	// ErrNotInitialized is returned when the device is used before Init.
	ErrNotInitialized = errors.New("wgpu: device not initialized")

	// ErrNoAdapter is returned when no Vulkan backend or adapter is present.
	ErrNoAdapter = errors.New("wgpu: no GPU adapter available")

	// ErrShaderCompile is returned when the heatmap shader fails to compile.
	ErrShaderCompile = errors.New("wgpu: shader compilation failed")

	// ErrInvalidTexture is returned for textures this device did not
	// create, destroyed textures, and uploads of the wrong size.
	ErrInvalidTexture = errors.New("wgpu: invalid texture")

	// ErrNilProvider is returned by NewFromProvider for a nil provider.
	ErrNilProvider = errors.New("wgpu: nil DeviceProvider")

	// ErrNoHALProvider is returned when a provider does not expose
	// HalDevice and HalQueue.
	ErrNoHALProvider = errors.New("wgpu: provider does not expose HAL types")
)
