package api

import (
	"fmt"
	"strconv"
)

// Device is a relay board registered with the hub. The network address (IP)
// is the device identifier; the hub guarantees it is unique.
type Device struct {
	Name string `json:"name"`
	IP   string `json:"ip"`
	Room string `json:"room"`

	// NumRelays is the relay count reported by the board at registration.
	NumRelays int `json:"numRelays"`

	// RelayNames maps stringified relay index to display name. The hub seeds
	// every index with a default; entries may be empty or missing after edits,
	// in which case the default label applies.
	RelayNames map[string]string `json:"relayNames"`
}

// ID returns the device identifier (its network address).
func (d *Device) ID() string {
	return d.IP
}

// RelayLabel returns the display name for the given relay index, falling back
// to the default "Relay N" label (1-based, matching the hub's seeding).
func (d *Device) RelayLabel(index int) string {
	if name, ok := d.RelayNames[strconv.Itoa(index)]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("Relay %d", index+1)
}

// SetRelayName records a display name for the given relay index.
func (d *Device) SetRelayName(index int, name string) {
	if d.RelayNames == nil {
		d.RelayNames = make(map[string]string)
	}
	d.RelayNames[strconv.Itoa(index)] = name
}

// Snapshot is a full or partial report of relay states from the hub, keyed by
// device identifier and relay index. The hub is authoritative only for the
// keys it reports; absent keys carry no information.
type Snapshot map[string]map[int]bool

// wire representation of the states endpoint: {"ip": {"0": "on", "1": "off"}}
type wireStates map[string]map[string]string

// decodeSnapshot converts the hub's string-keyed on/off mapping into a
// Snapshot. Indices that fail to parse and states other than "on"/"off" are
// dropped rather than failing the whole snapshot.
func decodeSnapshot(w wireStates) Snapshot {
	snap := make(Snapshot, len(w))
	for id, relays := range w {
		states := make(map[int]bool, len(relays))
		for idx, state := range relays {
			i, err := strconv.Atoi(idx)
			if err != nil || i < 0 {
				continue
			}
			switch state {
			case "on":
				states[i] = true
			case "off":
				states[i] = false
			}
		}
		snap[id] = states
	}
	return snap
}

// stateString converts a relay value to the hub's wire representation.
func stateString(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
