// Package blob stores opaque documents under string keys.
//
// The collection tree is persisted as a single document, so every backend
// only needs Get and Put. File keeps each key in its own JSON file and
// replaces it atomically; SQLite keeps them in one table managed by embedded
// migrations; Memory backs tests and the demo mode.
package blob
