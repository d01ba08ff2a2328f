package device

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry indexes the live device facades of the process by name
// (case-insensitive). The API layer reads snapshots from it.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]*Device
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{devices: make(map[string]*Device)}
}

// Add registers a device. Re-registering a name replaces the previous
// entry; device re-initialisation reuses the same facade, so in practice
// replacement only happens in tests.
func (r *Registry) Add(d *Device) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[strings.ToLower(d.Name())] = d
}

// Remove unregisters a device by name. Unknown names are a no-op.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.devices, strings.ToLower(name))
}

// Get returns the device registered under name.
func (r *Registry) Get(name string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.devices[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("device: not registered: %s", name)
	}
	return d, nil
}

// List returns all registered devices sorted by name.
func (r *Registry) List() []*Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.devices))
	for name := range r.devices {
		names = append(names, name)
	}
	sort.Strings(names)

	devices := make([]*Device, 0, len(names))
	for _, name := range names {
		devices = append(devices, r.devices[name])
	}
	return devices
}

// Len returns the number of registered devices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}
