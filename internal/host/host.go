package host

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/five82/tabshelf/internal/collection"
)

// AppendIndex asks MoveTab to place the tab after the last tab of the window.
const AppendIndex = -1

var (
	// ErrTabNotFound is returned for an unknown tab id.
	ErrTabNotFound = errors.New("tab not found")
	// ErrWindowNotFound is returned for an unknown window id.
	ErrWindowNotFound = errors.New("window not found")
	// ErrUnsupported is returned when the host cannot perform an operation.
	ErrUnsupported = errors.New("operation not supported by host")
)

// LiveTab is a tab as the host currently reports it.
type LiveTab struct {
	ID         int
	WindowID   int
	Index      int
	Title      string
	URL        string
	FavIconURL string
	Active     bool
}

// Stored returns the durable snapshot of t without its live identity.
func (t LiveTab) Stored() collection.StoredTab {
	return collection.StoredTab{Title: t.Title, URL: t.URL, FavIconURL: t.FavIconURL}
}

// Window identifies a host window and its tabs in order.
type Window struct {
	ID     int
	TabIDs []int
}

// Query filters QueryTabs. A zero WindowID matches every window.
type Query struct {
	WindowID int
}

// Move is the destination of MoveTab. Index AppendIndex appends.
type Move struct {
	WindowID int
	Index    int
}

// Create describes a tab to open. A zero WindowID targets the current window.
type Create struct {
	WindowID int
	URL      string
}

// Update changes tab properties.
type Update struct {
	Active bool
}

// Provider is the host browser's tab/window control surface.
type Provider interface {
	QueryTabs(ctx context.Context, q Query) ([]LiveTab, error)
	GetTab(ctx context.Context, id int) (LiveTab, error)
	MoveTab(ctx context.Context, id int, to Move) error
	CreateTab(ctx context.Context, c Create) (LiveTab, error)
	RemoveTab(ctx context.Context, id int) error
	RemoveWindow(ctx context.Context, id int) error
	UpdateTab(ctx context.Context, id int, u Update) error
	FocusWindow(ctx context.Context, id int) error
	CreateWindow(ctx context.Context, urls []string) (Window, error)
	CurrentWindow(ctx context.Context) (Window, error)
}

// CallError wraps any failure reported by a Provider.
type CallError struct {
	Op  string
	Err error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("host %s: %v", e.Op, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// IsCallFailure reports whether err came from a Provider.
func IsCallFailure(err error) bool {
	var ce *CallError
	return errors.As(err, &ce)
}

func callErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *CallError
	if errors.As(err, &ce) {
		return err
	}
	return &CallError{Op: op, Err: err}
}

// GroupByWindow splits tabs into per-window slices. Window ids are returned
// in ascending order; tabs keep their relative order.
func GroupByWindow(tabs []LiveTab) ([]int, map[int][]LiveTab) {
	var order []int
	byWindow := make(map[int][]LiveTab)
	for _, t := range tabs {
		if _, ok := byWindow[t.WindowID]; !ok {
			order = append(order, t.WindowID)
		}
		byWindow[t.WindowID] = append(byWindow[t.WindowID], t)
	}
	sort.Ints(order)
	return order, byWindow
}

// CloseIfEmpty removes window id when it has no tabs left and reports
// whether it did. A window the host already dropped counts as closed.
func CloseIfEmpty(ctx context.Context, p Provider, id int) (bool, error) {
	tabs, err := p.QueryTabs(ctx, Query{WindowID: id})
	if errors.Is(err, ErrWindowNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(tabs) > 0 {
		return false, nil
	}
	return true, p.RemoveWindow(ctx, id)
}
