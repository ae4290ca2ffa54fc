package render

import (
	"testing"

	"github.com/muurk/relaydeck/internal/api"
	"github.com/muurk/relaydeck/internal/state"
)

func device(ip, room string, relays int) api.Device {
	return api.Device{Name: "dev-" + ip, IP: ip, Room: room, NumRelays: relays}
}

// TestRenderAll_RoomGrouping tests first-seen room order and bucket counts
func TestRenderAll_RoomGrouping(t *testing.T) {
	vm := state.NewViewModel()
	vm.UpsertDevice(device("10.0.0.1", "Kitchen", 1))
	vm.UpsertDevice(device("10.0.0.2", "Den", 1))
	vm.UpsertDevice(device("10.0.0.3", "Kitchen", 1))

	v := NewView()
	v.RenderAll(vm)

	if v.Empty {
		t.Fatal("View must not be empty")
	}
	if len(v.Rooms) != 2 {
		t.Fatalf("Expected exactly 2 room groups, got %d", len(v.Rooms))
	}
	if v.Rooms[0].Name != "Kitchen" || v.Rooms[1].Name != "Den" {
		t.Errorf("Expected first-seen order [Kitchen Den], got [%s %s]", v.Rooms[0].Name, v.Rooms[1].Name)
	}
	if len(v.Rooms[0].Cards) != 2 {
		t.Errorf("Expected 2 devices in Kitchen, got %d", len(v.Rooms[0].Cards))
	}
	if len(v.Rooms[1].Cards) != 1 {
		t.Errorf("Expected 1 device in Den, got %d", len(v.Rooms[1].Cards))
	}
}

// TestRenderAll_EmptyDeviceSet tests the placeholder path
func TestRenderAll_EmptyDeviceSet(t *testing.T) {
	v := NewView()
	v.RenderAll(state.NewViewModel())

	if !v.Empty {
		t.Error("Expected placeholder for empty device set")
	}
	if len(v.Rooms) != 0 {
		t.Errorf("Expected zero room sections, got %d", len(v.Rooms))
	}
}

// TestRenderAll_CellContent tests labels and on indicators
func TestRenderAll_CellContent(t *testing.T) {
	vm := state.NewViewModel()
	d := device("10.0.0.1", "Kitchen", 2)
	d.RelayNames = map[string]string{"0": "Main Light"}
	vm.UpsertDevice(d)
	vm.SetRelayState("10.0.0.1", 0, true)

	v := NewView()
	v.RenderAll(vm)

	card, ok := v.Card("10.0.0.1")
	if !ok {
		t.Fatal("Card missing from rendered tree")
	}
	if len(card.Cells) != 2 {
		t.Fatalf("Expected 2 cells, got %d", len(card.Cells))
	}
	if card.Cells[0].Label != "Main Light" || !card.Cells[0].On {
		t.Errorf("Cell 0: expected [Main Light on], got [%s %v]", card.Cells[0].Label, card.Cells[0].On)
	}
	// No recorded state renders as off with the default label
	if card.Cells[1].Label != "Relay 2" || card.Cells[1].On {
		t.Errorf("Cell 1: expected [Relay 2 off], got [%s %v]", card.Cells[1].Label, card.Cells[1].On)
	}
}

// TestRenderChanged_TouchesOnlyChangedKeys tests the incremental contract
func TestRenderChanged_TouchesOnlyChangedKeys(t *testing.T) {
	vm := state.NewViewModel()
	vm.UpsertDevice(device("10.0.0.1", "Kitchen", 2))
	vm.UpsertDevice(device("10.0.0.2", "Den", 1))

	v := NewView()
	v.RenderAll(vm)

	vm.SetRelayState("10.0.0.1", 1, true)
	vm.SetRelayState("10.0.0.2", 0, true) // changed in the model but not named

	patched := v.RenderChanged(vm, []state.Key{{DeviceID: "10.0.0.1", Relay: 1}})

	if len(patched) != 1 || patched[0] != (state.Key{DeviceID: "10.0.0.1", Relay: 1}) {
		t.Fatalf("Expected exactly the named key patched, got %v", patched)
	}

	card1, _ := v.Card("10.0.0.1")
	if !card1.Cells[1].On {
		t.Error("Named cell must be updated")
	}
	card2, _ := v.Card("10.0.0.2")
	if card2.Cells[0].On {
		t.Error("Unnamed cell must keep its previous rendering")
	}
}

// TestRenderChanged_RefreshesLabel tests that a patched cell picks up a new
// relay name along with its state
func TestRenderChanged_RefreshesLabel(t *testing.T) {
	vm := state.NewViewModel()
	vm.UpsertDevice(device("10.0.0.1", "Kitchen", 1))

	v := NewView()
	v.RenderAll(vm)

	vm.SetRelayName("10.0.0.1", 0, "Ceiling Fan")
	v.RenderChanged(vm, []state.Key{{DeviceID: "10.0.0.1", Relay: 0}})

	card, _ := v.Card("10.0.0.1")
	if card.Cells[0].Label != "Ceiling Fan" {
		t.Errorf("Expected patched label Ceiling Fan, got %q", card.Cells[0].Label)
	}
}

// TestRenderChanged_SkipsAbsentDevices tests the skip path for keys outside
// the rendered tree
func TestRenderChanged_SkipsAbsentDevices(t *testing.T) {
	vm := state.NewViewModel()
	vm.UpsertDevice(device("10.0.0.1", "Kitchen", 1))

	v := NewView()
	v.RenderAll(vm)

	patched := v.RenderChanged(vm, []state.Key{
		{DeviceID: "10.0.0.9", Relay: 0}, // not in the rendered tree
		{DeviceID: "10.0.0.1", Relay: 7}, // out of range
	})

	if len(patched) != 0 {
		t.Errorf("Expected no patches for absent keys, got %v", patched)
	}
}
