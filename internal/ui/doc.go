// Package ui provides the terminal user interface for tabshelf.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program with three panes side by side: the
// collections pane (groups and their collections), the content pane (stored
// tabs of the selected collection) and the live pane (one window group per
// browser window, each a grid of tab cards). Panes are resized by dragging
// the borders between them.
//
// # Package Structure
//
//   - app.go: Model, Options, messages and the Run entry point
//   - layout.go: pane geometry
//   - panes.go: row and grid building, hit testing, drag origin and target resolution
//   - mouse.go: press, motion and release handling, drop dispatch
//   - input_handlers.go, actions.go: keyboard bindings and the commands they start
//   - navigation.go: cursors and scrolling
//   - render.go, header.go: drawing
//   - modal.go, help.go, logs.go: overlays
//
// # Event Flow
//
//  1. A press captures the element under the pointer through drag.Tracker.
//     Live tab cards fetch their authoritative snapshot in the background.
//  2. Motion resolves the drop target under the pointer and highlights it.
//     A dragged collection is previewed at the position it would land.
//  3. Release hands the target to reconcile.Reconciler, which applies the
//     matching rule and reports which panes to redraw.
//  4. A release without motion is a click: select, open or activate.
//
// Host and store calls never run on the Update goroutine; they run inside
// tea.Cmd functions bounded by a timeout and report back as messages.
//
// # External Dependencies
//
//   - collection.Store: the collection tree and selection
//   - state.Store: live tab snapshots written by the monitor
//   - host.Provider: the browser
//   - bulk.Actions: multi-step commands (open all, hibernate, sort)
//   - logtail: the log overlay
package ui
