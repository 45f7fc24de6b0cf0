package backend

import (
	"errors"

	"github.com/gogpu/heatmap"
)

// Backend name constants.
const (
	// BackendSoftware is the name of the CPU reference device.
	BackendSoftware = "software"
	// BackendWGPU is the name of the Pure Go GPU device (gogpu/wgpu).
	BackendWGPU = "wgpu"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or every registered factory declined.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Factory creates a new, uninitialized device. A factory may return nil
// when the backend cannot run on this machine.
type Factory func() heatmap.Device
