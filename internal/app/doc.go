// Package app wires configuration, storage, the browser connection, the
// live tab monitor and the UI into the tabshelf TUI.
//
// # Startup
//
//  1. Load configuration (config.Load) and open the log file
//  2. Open the blob backend and load the collection store
//  3. Connect to the browser over DevTools, or seed an in-memory browser
//     in demo mode, and wrap it in the URL ignore filter
//  4. Poll the live tabs once so the first frame has data
//  5. Start the Monitor and run the UI until the user quits
//
// # Monitor
//
// The Monitor polls the host for live tabs and records each result in a
// state.Store. The UI reads snapshots at its own tick rate and asks for an
// early poll (Monitor.Refresh) after it changes the browser.
//
// Polling starts after a configurable delay. Consecutive failures back off
// exponentially up to 30 seconds. When a poll sees a tab that is still
// loading (no title or URL yet) the next poll is brought forward once so
// the card fills in quickly.
//
// # Error Handling
//
// Fatal (returned from Run): invalid configuration, unreadable storage, an
// unreachable browser at startup. Recoverable (logged, polling continues):
// poll failures after startup.
package app
