package tui

import (
	"testing"
	"time"

	"github.com/muurk/relaydeck/internal/api"
	"github.com/muurk/relaydeck/internal/config"
	"github.com/muurk/relaydeck/internal/state"
)

func testModel(t *testing.T) (Model, *state.Store) {
	t.Helper()
	cfg := &config.Config{
		ServerURL:      "http://localhost:5001",
		PushPath:       "/push",
		PollInterval:   5 * time.Second,
		RequestTimeout: time.Second,
	}
	client := api.NewClient(cfg.ServerURL)
	store := state.NewStore()
	dispatcher := state.NewDispatcher(client, store)
	return NewModel(cfg, client, store, dispatcher, nil), store
}

func TestRebuildViewNavigationOrder(t *testing.T) {
	m, store := testModel(t)

	store.VM.ReplaceDevices([]api.Device{
		{Name: "Plug", IP: "10.0.0.1", Room: "Kitchen", NumRelays: 2},
		{Name: "Lamp", IP: "10.0.0.2", Room: "Den", NumRelays: 1},
	})
	m.rebuildView()

	want := []state.Key{
		{DeviceID: "10.0.0.1", Relay: 0},
		{DeviceID: "10.0.0.1", Relay: 1},
		{DeviceID: "10.0.0.2", Relay: 0},
	}
	if len(m.cells) != len(want) {
		t.Fatalf("expected %d cells, got %d", len(want), len(m.cells))
	}
	for i, k := range want {
		if m.cells[i] != k {
			t.Errorf("cell %d: expected %v, got %v", i, k, m.cells[i])
		}
	}
}

func TestRebuildViewClampsCursor(t *testing.T) {
	m, store := testModel(t)

	store.VM.ReplaceDevices([]api.Device{
		{Name: "Plug", IP: "10.0.0.1", Room: "Kitchen", NumRelays: 3},
	})
	m.rebuildView()
	m.cursor = 2

	// Shrink to one relay; cursor must land on the last remaining cell
	store.VM.ReplaceDevices([]api.Device{
		{Name: "Plug", IP: "10.0.0.1", Room: "Kitchen", NumRelays: 1},
	})
	m.rebuildView()

	if m.cursor != 0 {
		t.Errorf("expected cursor clamped to 0, got %d", m.cursor)
	}

	store.VM.ReplaceDevices(nil)
	m.rebuildView()
	if m.cursor != 0 {
		t.Errorf("expected cursor 0 on empty grid, got %d", m.cursor)
	}
	if _, ok := m.selectedKey(); ok {
		t.Error("expected no selected key on empty grid")
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		name    string
		status  state.AssistantStatus
		message string
		want    string
	}{
		{"idle is blank", state.StatusIdle, "", ""},
		{"listening", state.StatusListening, "", "listening for wake word..."},
		{"recording", state.StatusRecording, "", "recording command..."},
		{"processing default", state.StatusProcessing, "", "thinking..."},
		{"processing with message", state.StatusProcessing, "Turning on the lamp", "Turning on the lamp"},
		{"unknown verbatim", state.AssistantStatus("rebooting"), "", "rebooting"},
		{"unknown with message", state.AssistantStatus("rebooting"), "back soon", "rebooting: back soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusLabel(tt.status, tt.message); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
