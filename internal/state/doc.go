// Package state holds the most recent view of the browser's live tabs.
//
// # Overview
//
// The tab monitor polls the host provider and writes each result into a
// Store. The UI reads Snapshot values on its own tick and re-renders the live
// pane only when Version moved, so a quiet browser costs nothing to draw.
//
//	Producer (monitor):            Consumer (UI):
//	┌────────────────────┐         ┌────────────────────┐
//	│ provider.QueryTabs │         │                    │
//	│        ↓           │         │                    │
//	│ store.Update()     │────────→│ store.Snapshot()   │
//	│        ↓           │ (mutex) │        ↓           │
//	│ wait poll interval │         │ render live pane   │
//	└────────────────────┘         └────────────────────┘
//
// # Update Semantics
//
// A successful Update replaces the tab list and clears LastError. Version is
// incremented only when the visible list differs from the previous one
// (tab identity, window membership, order, title, URL, icon or active flag).
//
// A failed Update keeps the previous tabs, records the error and counts the
// failure. IsOffline reports two or more consecutive failures, which the UI
// surfaces in the status line while keeping the last known tabs on screen.
//
// # Transient Tabs
//
// A freshly opened tab can be listed before it has a title or URL. Snapshot
// reports these through HasTransient so the monitor can schedule a short
// follow-up query instead of waiting a full poll interval.
//
// # Copies
//
// Update and Snapshot both copy the tab slice; callers may mutate what they
// receive.
package state
