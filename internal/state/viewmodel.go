package state

import (
	"fmt"
	"sync"

	"github.com/muurk/relaydeck/internal/api"
)

// Key addresses a single relay control: device identifier plus relay index.
type Key struct {
	DeviceID string
	Relay    int
}

// String returns the key in "ip/index" form for logs
func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.DeviceID, k.Relay)
}

// ViewModel is the in-memory projection of devices and per-relay state: the
// single source of truth for rendering. Devices keep the hub's listing order
// so room grouping stays stable across rebuilds.
//
// Invariants maintained by the mutators: every relay-state key references a
// known device, and its index is below that device's relay count. Writes that
// would violate either are dropped.
//
// All methods are safe for concurrent use. Command completions, the poll, and
// the push pump run on separate goroutines; individual operations are atomic
// and overlapping passes resolve last-write-wins, which is sound because
// snapshots are idempotent reports of authoritative state, not deltas.
type ViewModel struct {
	mu      sync.RWMutex
	devices map[string]*api.Device
	order   []string
	states  map[Key]bool
}

// NewViewModel creates an empty view model
func NewViewModel() *ViewModel {
	return &ViewModel{
		devices: make(map[string]*api.Device),
		states:  make(map[Key]bool),
	}
}

// UpsertDevice inserts or replaces a device. An existing device keeps its
// position in the listing order; a new one is appended. Relay states that
// fall outside the new relay count are pruned.
func (vm *ViewModel) UpsertDevice(d api.Device) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if _, exists := vm.devices[d.ID()]; !exists {
		vm.order = append(vm.order, d.ID())
	}
	stored := copyDevice(&d)
	vm.devices[d.ID()] = &stored
	vm.pruneLocked(d.ID())
}

// RemoveDevice drops a device and all of its relay states
func (vm *ViewModel) RemoveDevice(id string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if _, exists := vm.devices[id]; !exists {
		return
	}
	delete(vm.devices, id)
	for i, existing := range vm.order {
		if existing == id {
			vm.order = append(vm.order[:i], vm.order[i+1:]...)
			break
		}
	}
	for key := range vm.states {
		if key.DeviceID == id {
			delete(vm.states, key)
		}
	}
}

// ReplaceDevices swaps in a fresh device listing, resetting the order to the
// hub's. States for devices no longer listed (or indices no longer valid) are
// pruned; surviving states are kept so the next snapshot only reports diffs.
func (vm *ViewModel) ReplaceDevices(list []api.Device) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vm.devices = make(map[string]*api.Device, len(list))
	vm.order = vm.order[:0]
	for _, d := range list {
		if _, dup := vm.devices[d.ID()]; !dup {
			vm.order = append(vm.order, d.ID())
		}
		stored := copyDevice(&d)
		vm.devices[d.ID()] = &stored
	}
	for key := range vm.states {
		d, ok := vm.devices[key.DeviceID]
		if !ok || key.Relay >= d.NumRelays {
			delete(vm.states, key)
		}
	}
}

// Device returns a copy of the device with the given identifier
func (vm *ViewModel) Device(id string) (api.Device, bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()

	d, ok := vm.devices[id]
	if !ok {
		return api.Device{}, false
	}
	return copyDevice(d), true
}

// Devices returns copies of all devices in the hub's listing order
func (vm *ViewModel) Devices() []api.Device {
	vm.mu.RLock()
	defer vm.mu.RUnlock()

	out := make([]api.Device, 0, len(vm.order))
	for _, id := range vm.order {
		if d, ok := vm.devices[id]; ok {
			out = append(out, copyDevice(d))
		}
	}
	return out
}

// Len returns the number of devices
func (vm *ViewModel) Len() int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return len(vm.devices)
}

// SetRelayState writes a relay value. Returns whether the stored value
// actually changed; writes for unknown devices or out-of-range indices are
// dropped and report no change.
func (vm *ViewModel) SetRelayState(id string, index int, on bool) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	d, ok := vm.devices[id]
	if !ok || index < 0 || index >= d.NumRelays {
		return false
	}
	key := Key{DeviceID: id, Relay: index}
	if current, exists := vm.states[key]; exists && current == on {
		return false
	}
	vm.states[key] = on
	return true
}

// ClearRelayState removes a relay value, returning it to "absent". Used by
// rollback when the optimistic write was the first value ever recorded.
func (vm *ViewModel) ClearRelayState(id string, index int) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	delete(vm.states, Key{DeviceID: id, Relay: index})
}

// RelayState reads a relay value. The second return reports whether any
// value is recorded for the key.
func (vm *ViewModel) RelayState(id string, index int) (bool, bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()

	v, ok := vm.states[Key{DeviceID: id, Relay: index}]
	return v, ok
}

// SetRelayName records a relay display name on the device (optimistic rename)
func (vm *ViewModel) SetRelayName(id string, index int, name string) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	d, ok := vm.devices[id]
	if !ok || index < 0 || index >= d.NumRelays {
		return false
	}
	d.SetRelayName(index, name)
	return true
}

// pruneLocked drops states outside the device's relay count. Caller holds mu.
func (vm *ViewModel) pruneLocked(id string) {
	d := vm.devices[id]
	for key := range vm.states {
		if key.DeviceID == id && key.Relay >= d.NumRelays {
			delete(vm.states, key)
		}
	}
}

// copyDevice deep-copies a device, including its RelayNames map. Used on
// both insert and read so neither the caller nor the store can reach the
// other's map outside the mutex.
func copyDevice(d *api.Device) api.Device {
	out := *d
	if d.RelayNames != nil {
		out.RelayNames = make(map[string]string, len(d.RelayNames))
		for k, v := range d.RelayNames {
			out.RelayNames[k] = v
		}
	}
	return out
}
