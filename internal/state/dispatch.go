package state

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/relaydeck/internal/api"
	"github.com/muurk/relaydeck/internal/logging"
)

// Notifier is the error-surfacing collaborator. The dispatcher recovers from
// failures itself (rollback, state restore) and reports them here so the UI
// can show a non-blocking notification instead of swallowing them.
type Notifier interface {
	ToggleFailed(key Key, err error)
}

// nopNotifier drops notifications; used when no collaborator is attached.
type nopNotifier struct{}

func (nopNotifier) ToggleFailed(Key, error) {}

// PendingEdit records the confirmed value that an in-flight optimistic write
// replaced, so a failed command can roll back. At most one exists per key:
// a second toggle on the same key is refused while the first is unresolved.
type PendingEdit struct {
	Previous bool
	Existed  bool // false when no value was recorded before the edit
}

// Dispatcher translates user gestures into hub calls. It applies optimistic
// view-model updates before a call resolves and rolls them back on failure.
// Each command is a small two-phase machine: Begin* applies the optimistic
// write synchronously (so the caller can repaint immediately), Complete*
// performs the network call and resolves to confirmed or rolled-back.
type Dispatcher struct {
	client   *api.Client
	store    *Store
	notifier Notifier

	mu       sync.Mutex
	pending  map[Key]PendingEdit // in-flight toggles
	captured map[Key]string      // rename rollback values, keyed by edit target
}

// NewDispatcher creates a dispatcher over the given client and store
func NewDispatcher(client *api.Client, store *Store) *Dispatcher {
	return &Dispatcher{
		client:   client,
		store:    store,
		notifier: nopNotifier{},
		pending:  make(map[Key]PendingEdit),
		captured: make(map[Key]string),
	}
}

// SetNotifier attaches the error-surfacing collaborator
func (d *Dispatcher) SetNotifier(n Notifier) {
	if n != nil {
		d.notifier = n
	}
}

// BeginToggle applies the requested relay value optimistically and records
// the rollback value. Returns false when the key is unknown to the view
// model or already has an unresolved toggle; the caller should then ignore
// the gesture.
func (d *Dispatcher) BeginToggle(id string, index int, on bool) bool {
	device, ok := d.store.VM.Device(id)
	if !ok || index < 0 || index >= device.NumRelays {
		return false
	}
	key := Key{DeviceID: id, Relay: index}

	d.mu.Lock()
	if _, inFlight := d.pending[key]; inFlight {
		d.mu.Unlock()
		return false
	}
	prev, existed := d.store.VM.RelayState(id, index)
	d.pending[key] = PendingEdit{Previous: prev, Existed: existed}
	d.mu.Unlock()

	d.store.VM.SetRelayState(id, index, on)
	return true
}

// CompleteToggle issues the relay command for a toggle begun with
// BeginToggle and resolves the pending edit. On failure the view model is
// rolled back to the pre-toggle value, the notifier informed, and rolledBack
// reported so the caller repaints the key.
func (d *Dispatcher) CompleteToggle(ctx context.Context, id string, index int, on bool) (rolledBack bool, err error) {
	key := Key{DeviceID: id, Relay: index}

	err = d.client.SetRelay(ctx, id, index, on)
	if err == nil {
		// Value already correct in the view model; the next snapshot confirms.
		d.clearPending(key)
		return false, nil
	}

	d.mu.Lock()
	edit, ok := d.pending[key]
	delete(d.pending, key)
	d.mu.Unlock()

	if ok {
		if edit.Existed {
			d.store.VM.SetRelayState(id, index, edit.Previous)
		} else {
			d.store.VM.ClearRelayState(id, index)
		}
	}

	logging.Warn("Toggle rolled back",
		zap.String("key", key.String()),
		zap.Error(err),
	)
	d.notifier.ToggleFailed(key, err)
	return true, err
}

func (d *Dispatcher) clearPending(key Key) {
	d.mu.Lock()
	delete(d.pending, key)
	d.mu.Unlock()
}

// AddDevice registers a new relay board and, on success, reloads the full
// device set. On failure the device set is untouched and the error returned
// so the caller can surface it inline without closing the input form.
func (d *Dispatcher) AddDevice(ctx context.Context, name, ip, room string) error {
	if _, err := d.client.CreateDevice(ctx, name, ip, room); err != nil {
		return err
	}
	return d.Reload(ctx)
}

// RemoveDevice deletes a device and, on success, reloads the full device
// set. Explicit user confirmation is the caller's responsibility.
func (d *Dispatcher) RemoveDevice(ctx context.Context, id string) error {
	if err := d.client.DeleteDevice(ctx, id); err != nil {
		return err
	}
	return d.Reload(ctx)
}

// Reload fetches the device listing and full state snapshot and replaces the
// view model contents. Used after add/remove and at startup.
func (d *Dispatcher) Reload(ctx context.Context) error {
	devices, err := d.client.ListDevices(ctx)
	if err != nil {
		return err
	}
	snap, err := d.client.FetchAllStates(ctx)
	if err != nil {
		return err
	}

	d.store.VM.ReplaceDevices(devices)
	for id, relays := range snap {
		for index, on := range relays {
			d.store.VM.SetRelayState(id, index, on)
		}
	}
	return nil
}

// BeginRename enters edit mode for a relay name, capturing the currently
// displayed name as the rollback value. Returns the captured name, or false
// when the key is unknown or already being edited.
func (d *Dispatcher) BeginRename(id string, index int) (string, bool) {
	device, ok := d.store.VM.Device(id)
	if !ok || index < 0 || index >= device.NumRelays {
		return "", false
	}
	key := Key{DeviceID: id, Relay: index}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, editing := d.captured[key]; editing {
		return "", false
	}
	name := device.RelayLabel(index)
	d.captured[key] = name
	return name, true
}

// CancelRename leaves edit mode restoring the captured name. No hub call is
// made. Returns the restored name, or false when no edit was active.
func (d *Dispatcher) CancelRename(id string, index int) (string, bool) {
	key := Key{DeviceID: id, Relay: index}

	d.mu.Lock()
	name, ok := d.captured[key]
	delete(d.captured, key)
	d.mu.Unlock()

	return name, ok
}

// CommitRename leaves edit mode, applying newName to the view model
// optimistically. It reports whether a hub call is required: only when the
// new name is non-empty and differs from the captured value. The caller then
// issues PerformRename; the displayed name is never rolled back on failure.
func (d *Dispatcher) CommitRename(id string, index int, newName string) bool {
	key := Key{DeviceID: id, Relay: index}

	d.mu.Lock()
	captured, ok := d.captured[key]
	delete(d.captured, key)
	d.mu.Unlock()

	if !ok {
		return false
	}
	if newName == "" || newName == captured {
		return false
	}

	d.store.VM.SetRelayName(id, index, newName)
	return true
}

// PerformRename sends the rename to the hub. Failures are logged and
// swallowed: the rename stays applied locally and the hub's registry simply
// keeps the old name until the next successful edit. The error return exists
// for tests.
func (d *Dispatcher) PerformRename(ctx context.Context, id string, index int, name string) error {
	err := d.client.RenameRelay(ctx, id, index, name)
	if err != nil {
		logging.Warn("Rename not persisted",
			zap.String("device", id),
			zap.Int("relay", index),
			zap.Error(err),
		)
	}
	return err
}

// SendChat appends the user's message to the chat log and submits it to the
// assistant. A send failure is rendered as an assistant-sender message
// carrying the error text, preserving conversational flow.
func (d *Dispatcher) SendChat(ctx context.Context, text string) {
	d.store.Chat.Append(SenderUser, text)

	if err := d.client.SendChatMessage(ctx, text); err != nil {
		d.store.Chat.Append(SenderAssistant, "Sorry, I couldn't reach the hub: "+api.UserMessage(err))
	}
}
