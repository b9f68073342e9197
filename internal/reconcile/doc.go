// Package reconcile applies a drop to the collection store and the host.
//
// Reconciler.Drop takes the drag session ended by the release and a resolved
// drop target, checks the guards, then dispatches on (drag kind, target kind,
// source tag) to exactly one branch. Result.Rule names the branch:
//
//	1  collection  → collection, group or list   move the collection
//	2  live tab    → collection                  store it (Shift closes it)
//	3  stored tab  → collection                  move it between collections
//	4  stored tab  → window group                open it in that window
//	5  live tab    → window group                reorder or move between windows
//	6  live tab    → content panel               store it in the selection
//	7  stored tab  → content panel               reorder inside the collection
//	8  window      → collection or content panel copy every tab of the window
//	9  anything else                             rejected
//
// The caller clears the tracker before calling Drop, on the UI goroutine, so
// a drag started while a drop is still waiting on the host stays intact. The
// Result says which panes to
// redraw; the reconciler never draws anything itself. Collection indices are
// always resolved from collection ids at the moment they are needed, never
// carried across a host call.
package reconcile
