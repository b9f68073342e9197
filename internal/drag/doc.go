// Package drag captures what the pointer is dragging.
//
// A Tracker holds the single process-wide Session. Begin classifies the
// element under the pointer (collection card, tab card in the live or
// content pane, window group) and snapshots the data a later drop needs.
// Live tab data arrives asynchronously through Fetch; a drop that fires
// before it lands sees a nil TabData and must abort.
//
// CanDrop, AfterElement and GridIndex are pure helpers for drag-over
// highlighting and insertion-point math. None of them mutate anything.
package drag
