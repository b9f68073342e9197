// Package host abstracts the browser's tab and window control surface.
//
// Provider is the contract the rest of tabshelf consumes: enumerate tabs,
// move, create and remove tabs, create, remove and focus windows. Every
// failure comes back as a *CallError so callers can tell host failures from
// their own validation errors.
//
// Three implementations are provided:
//
//   - Memory: a complete in-process browser used by tests and --demo.
//   - Chrome: a real Chromium browser reached over the DevTools HTTP
//     endpoints and the Chrome DevTools Protocol (chromedp).
//   - Filtered: a decorator hiding tabs whose URL matches ignore globs.
package host
