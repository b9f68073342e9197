// Package collection owns the persisted tree of groups, collections and
// stored tabs.
//
// A Group holds an ordered list of Collections; a Collection holds an ordered
// list of StoredTabs. Every collection carries a CollectionID that is unique
// across the whole tree and never changes, so it is the only identity that
// survives moves. GroupID and Pos are positional caches rewritten after every
// mutation; callers that suspend (host calls, user prompts) must re-resolve
// positions through Find instead of holding on to them.
//
// The Store serializes all access with a mutex and writes the whole tree to
// its blob backend after each mutation. A failed write is reported to the
// caller but the in-memory change is kept.
package collection
