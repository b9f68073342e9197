package bulk

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/five82/tabshelf/internal/collection"
	"github.com/five82/tabshelf/internal/host"
	"github.com/five82/tabshelf/internal/logging"
	"pkt.systems/pslog"
)

// ErrAborted marks an action the user declined at a confirmation. Callers
// treat it as a silent no-op.
var ErrAborted = errors.New("aborted by user")

// ErrEmptyCollection is returned when opening a collection without tabs.
var ErrEmptyCollection = errors.New("collection has no tabs")

// HibernateLabel names the collection a hibernated window is stored in.
// ordinal is the window's 1-based position in the live pane.
func HibernateLabel(ordinal, windowID int) string {
	return fmt.Sprintf("Window %d (ID: %d)", ordinal, windowID)
}

// Actions runs bulk operations against the store and host.
type Actions struct {
	store *collection.Store
	host  host.Provider
	log   pslog.Logger
}

// New returns Actions over store and provider.
func New(store *collection.Store, provider host.Provider, logger pslog.Logger) *Actions {
	return &Actions{store: store, host: provider, log: logging.OrDiscard(logger).With("component", "bulk")}
}

func (a *Actions) selected() (collection.Collection, error) {
	c, ok := a.store.SelectedCollection()
	if !ok {
		return collection.Collection{}, &collection.ValidationError{Reason: "open tabs", Err: collection.ErrNoSelection}
	}
	return c, nil
}

// OpenAll opens every tab of the selected collection in the current window
// and returns how many were opened.
func (a *Actions) OpenAll(ctx context.Context) (int, error) {
	c, err := a.selected()
	if err != nil {
		return 0, err
	}
	if len(c.Tabs) == 0 {
		return 0, &collection.ValidationError{Reason: c.Name, Err: ErrEmptyCollection}
	}
	win, err := a.host.CurrentWindow(ctx)
	if err != nil {
		return 0, err
	}
	opened := 0
	for _, tab := range c.Tabs {
		if _, err := a.host.CreateTab(ctx, host.Create{WindowID: win.ID, URL: tab.URL}); err != nil {
			a.log.Warn("open tab failed", "url", tab.URL, "err", err)
			return opened, err
		}
		opened++
	}
	a.log.Info("opened collection", "collection", c.CollectionID, "tabs", opened, "window", win.ID)
	return opened, nil
}

// OpenAllInNewWindow opens the selected collection in one new window.
func (a *Actions) OpenAllInNewWindow(ctx context.Context) (host.Window, error) {
	c, err := a.selected()
	if err != nil {
		return host.Window{}, err
	}
	if len(c.Tabs) == 0 {
		return host.Window{}, &collection.ValidationError{Reason: c.Name, Err: ErrEmptyCollection}
	}
	urls := make([]string, 0, len(c.Tabs))
	for _, tab := range c.Tabs {
		urls = append(urls, tab.URL)
	}
	w, err := a.host.CreateWindow(ctx, urls)
	if err != nil {
		return host.Window{}, err
	}
	a.log.Info("opened collection in new window", "collection", c.CollectionID, "tabs", len(urls), "window", w.ID)
	return w, nil
}

// RemoveAll empties the selected collection. Confirmation is the caller's.
func (a *Actions) RemoveAll(ctx context.Context) error {
	id, ok := a.store.Selected()
	if !ok {
		return &collection.ValidationError{Reason: "remove all tabs", Err: collection.ErrNoSelection}
	}
	return a.store.RemoveAllTabs(ctx, id)
}

// Hibernate copies every tab of window windowID into the collection label
// inside the hibernate group, creating both as needed, then closes the
// window. The window stays open if storing failed.
func (a *Actions) Hibernate(ctx context.Context, windowID int, label string) (int, error) {
	tabs, err := a.host.QueryTabs(ctx, host.Query{WindowID: windowID})
	if err != nil {
		return -1, err
	}
	gi, err := a.store.EnsureGroup(ctx, collection.HibernateGroupName)
	if err != nil {
		return -1, err
	}
	id, err := a.store.EnsureCollection(ctx, gi, label)
	if err != nil {
		return -1, err
	}
	stored := make([]collection.StoredTab, 0, len(tabs))
	for _, t := range tabs {
		stored = append(stored, t.Stored())
	}
	if err := a.store.AppendTabs(ctx, id, stored...); err != nil {
		return id, err
	}
	if err := a.host.RemoveWindow(ctx, windowID); err != nil {
		return id, err
	}
	a.log.Info("hibernated window", "window", windowID, "collection", id, "tabs", len(stored))
	return id, nil
}

// SortWindow reorders a window's tabs by domain, keeping the current order
// among tabs of one domain. It reports whether anything moved.
func (a *Actions) SortWindow(ctx context.Context, windowID int) (bool, error) {
	tabs, err := a.host.QueryTabs(ctx, host.Query{WindowID: windowID})
	if err != nil {
		return false, err
	}
	sorted := append([]host.LiveTab(nil), tabs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := Domain(sorted[i].URL), Domain(sorted[j].URL)
		if di == dj {
			return sorted[i].Index < sorted[j].Index
		}
		return di < dj
	})
	sameOrder := slices.EqualFunc(tabs, sorted, func(x, y host.LiveTab) bool { return x.ID == y.ID })
	if sameOrder {
		return false, nil
	}
	for i, t := range sorted {
		if err := a.host.MoveTab(ctx, t.ID, host.Move{WindowID: windowID, Index: i}); err != nil {
			return true, err
		}
	}
	return true, nil
}

// CloseWindow closes window id.
func (a *Actions) CloseWindow(ctx context.Context, id int) error {
	return a.host.RemoveWindow(ctx, id)
}

// CloseTab closes tab id and its window when that leaves it empty.
func (a *Actions) CloseTab(ctx context.Context, id int) error {
	tab, err := a.host.GetTab(ctx, id)
	if err != nil {
		return err
	}
	if err := a.host.RemoveTab(ctx, id); err != nil {
		return err
	}
	_, err = host.CloseIfEmpty(ctx, a.host, tab.WindowID)
	return err
}

// ActivateTab brings tab id to the front of its window and focuses it.
func (a *Actions) ActivateTab(ctx context.Context, id int) error {
	tab, err := a.host.GetTab(ctx, id)
	if err != nil {
		return err
	}
	if err := a.host.UpdateTab(ctx, id, host.Update{Active: true}); err != nil {
		return err
	}
	return a.host.FocusWindow(ctx, tab.WindowID)
}

// OpenStored opens url in a new tab of the current window.
func (a *Actions) OpenStored(ctx context.Context, url string) (host.LiveTab, error) {
	if url == "" {
		return host.LiveTab{}, &collection.ValidationError{Reason: "open stored tab", Err: errors.New("empty url")}
	}
	return a.host.CreateTab(ctx, host.Create{URL: url})
}
