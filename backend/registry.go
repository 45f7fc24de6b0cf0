package backend

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/heatmap"
)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for backend selection (first available wins).
	// The GPU device is preferred; software is the fallback.
	backendPriority = []string{BackendWGPU, BackendSoftware}
)

// Register registers a device factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the registered backend names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get returns a new device by name.
// Returns nil if the backend is not registered.
func Get(name string) heatmap.Device {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()

	if !ok {
		return nil
	}
	return factory()
}

// Default returns a device from the best available backend.
// Priority order: wgpu > software, then any other registered name.
// Returns nil if no backends are registered.
func Default() heatmap.Device {
	for _, name := range order() {
		if d := Get(name); d != nil {
			return d
		}
	}
	return nil
}

// MustDefault returns the default device or panics.
func MustDefault() heatmap.Device {
	d := Default()
	if d == nil {
		panic("backend: no backend available")
	}
	return d
}

// InitDefault returns an initialized device, walking the priority list
// until one initializes. A GPU backend that is registered but finds no
// adapter falls through to the next one.
func InitDefault() (heatmap.Device, error) {
	var errs []error
	for _, name := range order() {
		d := Get(name)
		if d == nil {
			continue
		}
		if err := d.Init(); err != nil {
			heatmap.Logger().Warn("backend: init failed, trying next", "backend", name, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		heatmap.Logger().Info("backend: selected", "backend", name)
		return d, nil
	}
	if len(errs) == 0 {
		return nil, ErrBackendNotAvailable
	}
	return nil, fmt.Errorf("%w: %v", ErrBackendNotAvailable, errs)
}

// order returns the registered names, priority list first.
func order() []string {
	names := Available()
	out := make([]string, 0, len(names))
	for _, name := range backendPriority {
		if slices.Contains(names, name) {
			out = append(out, name)
		}
	}
	for _, name := range names {
		if !slices.Contains(backendPriority, name) {
			out = append(out, name)
		}
	}
	return out
}
