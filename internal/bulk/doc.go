// Package bulk implements the toolbar actions that work on a whole
// collection or window at once: open all, open in a new window, remove all,
// hibernate, sort by domain, close, activate and open a single stored tab.
package bulk
