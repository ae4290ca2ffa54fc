// Package state is the synchronization engine of relaydeck: the view model,
// the reconciler, and the command dispatcher.
//
// Three independent channels feed the view model: user-initiated commands
// (optimistic, with rollback on failure), a periodic full-state poll, and
// asynchronous push notifications from the hub. They are neither queued nor
// mutually exclusive; overlapping updates resolve last-write-wins. That is
// sound because snapshots are idempotent reports of authoritative state, so
// no correctness property depends on ordering beyond eventual convergence:
// the view model ends up matching the last successful write.
//
// The flow for a user command:
//
//	gesture -> Dispatcher.Begin* (optimistic write, repaint)
//	        -> hub call in flight
//	        -> success: pending edit cleared, next snapshot confirms
//	        -> failure: rollback to the recorded value, repaint, notify
//
// The flow for poll and push:
//
//	snapshot -> Reconciler.ApplySnapshot -> changed keys -> repaint only those
package state
