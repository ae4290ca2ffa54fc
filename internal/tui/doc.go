// Package tui implements the interactive dashboard.
//
// The dashboard is a single Bubble Tea model composing several areas:
//
//   - The relay grid, painted from the retained render tree in
//     internal/render. Full rebuilds happen only when the device list
//     changes; state changes from polls, pushes and toggles patch
//     individual cells.
//   - The chat pane with the assistant status line and a text input.
//   - Transient overlays: the add-device form, the remove confirmation
//     and the inline rename editor.
//
// All network work runs in tea.Cmd functions so the event loop never
// blocks. Toggles paint optimistically before their command resolves;
// a failed command rolls the cell back and surfaces a notice through
// the dispatcher's notifier.
package tui
