package state

import (
	"sort"

	"go.uber.org/zap"

	"github.com/muurk/relaydeck/internal/api"
	"github.com/muurk/relaydeck/internal/logging"
)

// Reconciler merges incoming state snapshots (poll results or push-triggered
// refreshes) into the view model and computes the minimal set of changed keys
// for incremental repaint.
//
// The merge is the meeting point between optimistic local writes and
// authoritative remote state. A snapshot arriving after a successful command
// reports the same value the dispatcher already wrote, so it produces no
// change and no repaint: applying the same snapshot twice is idempotent by
// construction. A snapshot racing ahead of a command's own response may
// transiently show the pre-command value; the command's success path
// re-asserts the optimistic value and the next snapshot converges. Nothing
// stronger than "eventually matches last successful write" is claimed.
type Reconciler struct {
	store *Store
}

// NewReconciler creates a reconciler over the given store
func NewReconciler(store *Store) *Reconciler {
	return &Reconciler{store: store}
}

// ApplySnapshot merges a full or partial snapshot into the view model and
// returns the keys whose value changed, sorted for deterministic repaint
// order. Keys absent from the snapshot are left untouched: the hub is
// authoritative only for what it reports. Reports for unknown devices or
// out-of-range indices are dropped.
func (r *Reconciler) ApplySnapshot(snap api.Snapshot) []Key {
	var changed []Key
	for id, relays := range snap {
		for index, on := range relays {
			if r.store.VM.SetRelayState(id, index, on) {
				changed = append(changed, Key{DeviceID: id, Relay: index})
			}
		}
	}

	sort.Slice(changed, func(i, j int) bool {
		if changed[i].DeviceID != changed[j].DeviceID {
			return changed[i].DeviceID < changed[j].DeviceID
		}
		return changed[i].Relay < changed[j].Relay
	})

	if len(changed) > 0 {
		logging.Debug("Snapshot reconciled",
			zap.Int("devices", len(snap)),
			zap.Int("changed", len(changed)),
		)
	}

	return changed
}
