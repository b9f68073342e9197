// Package logtail reads the tail of tabshelf's structured log file for the
// in-app log overlay.
//
// Read returns the last N lines using a ring buffer, so memory stays
// O(N) regardless of file size. Parse decodes one pslog JSON line into an
// Entry; lines that are not JSON come back as a raw entry rather than an
// error. Entry.String renders the compact one-line form the overlay shows:
//
//	14:32:15 INFO  drop applied component=reconcile rule=2
//
// Read returns nil, nil for a missing file.
package logtail
