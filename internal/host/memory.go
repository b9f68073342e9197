package host

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process browser. Windows keep their slot until
// RemoveWindow is called, even when their last tab is removed, so callers
// decide when an empty window goes away.
type Memory struct {
	mu       sync.Mutex
	windows  []*memWindow
	tabs     map[int]*LiveTab
	current  int
	nextTab  int
	nextWin  int
	failures map[string]error
}

type memWindow struct {
	id   int
	tabs []int
}

var _ Provider = (*Memory)(nil)

// NewMemory returns an empty in-memory browser.
func NewMemory() *Memory {
	return &Memory{
		tabs:     make(map[int]*LiveTab),
		nextTab:  1,
		nextWin:  1,
		failures: make(map[string]error),
	}
}

// AddWindow seeds a window with the given tabs and makes it current.
// Only Title, URL and FavIconURL of each tab are used.
func (m *Memory) AddWindow(tabs ...LiveTab) Window {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := m.newWindowLocked()
	for _, t := range tabs {
		m.appendTabLocked(w, t.Title, t.URL, t.FavIconURL)
	}
	m.current = w.id
	return windowOf(w)
}

// Fail makes every later call of op fail with err until cleared with a nil err.
// Op names match the CallError.Op values ("query tabs", "move tab", ...).
func (m *Memory) Fail(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// SetTitle changes a tab's title and URL the way a page load would.
func (m *Memory) SetTitle(id int, title, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tabs[id]
	if !ok {
		return &CallError{Op: "update tab", Err: ErrTabNotFound}
	}
	t.Title = title
	t.URL = url
	return nil
}

// Windows returns every window in creation order.
func (m *Memory) Windows() []Window {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Window, 0, len(m.windows))
	for _, w := range m.windows {
		out = append(out, windowOf(w))
	}
	return out
}

func (m *Memory) QueryTabs(ctx context.Context, q Query) ([]LiveTab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, "query tabs"); err != nil {
		return nil, err
	}
	var out []LiveTab
	for _, w := range m.windows {
		if q.WindowID != 0 && w.id != q.WindowID {
			continue
		}
		for _, id := range w.tabs {
			out = append(out, *m.tabs[id])
		}
	}
	if q.WindowID != 0 && m.window(q.WindowID) == nil {
		return nil, &CallError{Op: "query tabs", Err: fmt.Errorf("window %d: %w", q.WindowID, ErrWindowNotFound)}
	}
	return out, nil
}

func (m *Memory) GetTab(ctx context.Context, id int) (LiveTab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, "get tab"); err != nil {
		return LiveTab{}, err
	}
	t, ok := m.tabs[id]
	if !ok {
		return LiveTab{}, &CallError{Op: "get tab", Err: fmt.Errorf("tab %d: %w", id, ErrTabNotFound)}
	}
	return *t, nil
}

func (m *Memory) MoveTab(ctx context.Context, id int, to Move) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, "move tab"); err != nil {
		return err
	}
	t, ok := m.tabs[id]
	if !ok {
		return &CallError{Op: "move tab", Err: fmt.Errorf("tab %d: %w", id, ErrTabNotFound)}
	}
	dst := m.window(to.WindowID)
	if dst == nil {
		return &CallError{Op: "move tab", Err: fmt.Errorf("window %d: %w", to.WindowID, ErrWindowNotFound)}
	}
	src := m.window(t.WindowID)
	src.tabs = removeID(src.tabs, id)
	idx := to.Index
	if idx < 0 || idx > len(dst.tabs) {
		idx = len(dst.tabs)
	}
	dst.tabs = append(dst.tabs, 0)
	copy(dst.tabs[idx+1:], dst.tabs[idx:])
	dst.tabs[idx] = id
	t.WindowID = dst.id
	m.reindexLocked(src)
	if dst != src {
		m.reindexLocked(dst)
	}
	return nil
}

func (m *Memory) CreateTab(ctx context.Context, c Create) (LiveTab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, "create tab"); err != nil {
		return LiveTab{}, err
	}
	wid := c.WindowID
	if wid == 0 {
		wid = m.current
	}
	w := m.window(wid)
	if w == nil {
		return LiveTab{}, &CallError{Op: "create tab", Err: fmt.Errorf("window %d: %w", wid, ErrWindowNotFound)}
	}
	t := m.appendTabLocked(w, "", c.URL, "")
	return *t, nil
}

func (m *Memory) RemoveTab(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, "remove tab"); err != nil {
		return err
	}
	t, ok := m.tabs[id]
	if !ok {
		return &CallError{Op: "remove tab", Err: fmt.Errorf("tab %d: %w", id, ErrTabNotFound)}
	}
	w := m.window(t.WindowID)
	w.tabs = removeID(w.tabs, id)
	delete(m.tabs, id)
	m.reindexLocked(w)
	return nil
}

func (m *Memory) RemoveWindow(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, "remove window"); err != nil {
		return err
	}
	for i, w := range m.windows {
		if w.id != id {
			continue
		}
		for _, tid := range w.tabs {
			delete(m.tabs, tid)
		}
		m.windows = append(m.windows[:i], m.windows[i+1:]...)
		if m.current == id {
			m.current = 0
			if len(m.windows) > 0 {
				m.current = m.windows[len(m.windows)-1].id
			}
		}
		return nil
	}
	return &CallError{Op: "remove window", Err: fmt.Errorf("window %d: %w", id, ErrWindowNotFound)}
}

func (m *Memory) UpdateTab(ctx context.Context, id int, u Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, "update tab"); err != nil {
		return err
	}
	t, ok := m.tabs[id]
	if !ok {
		return &CallError{Op: "update tab", Err: fmt.Errorf("tab %d: %w", id, ErrTabNotFound)}
	}
	if u.Active {
		for _, other := range m.window(t.WindowID).tabs {
			m.tabs[other].Active = other == id
		}
	}
	return nil
}

func (m *Memory) FocusWindow(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, "focus window"); err != nil {
		return err
	}
	if m.window(id) == nil {
		return &CallError{Op: "focus window", Err: fmt.Errorf("window %d: %w", id, ErrWindowNotFound)}
	}
	m.current = id
	return nil
}

func (m *Memory) CreateWindow(ctx context.Context, urls []string) (Window, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, "create window"); err != nil {
		return Window{}, err
	}
	w := m.newWindowLocked()
	for _, u := range urls {
		m.appendTabLocked(w, "", u, "")
	}
	m.current = w.id
	return windowOf(w), nil
}

func (m *Memory) CurrentWindow(ctx context.Context) (Window, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, "current window"); err != nil {
		return Window{}, err
	}
	w := m.window(m.current)
	if w == nil {
		return Window{}, &CallError{Op: "current window", Err: ErrWindowNotFound}
	}
	return windowOf(w), nil
}

func (m *Memory) check(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return &CallError{Op: op, Err: err}
	}
	if err := m.failures[op]; err != nil {
		return &CallError{Op: op, Err: err}
	}
	return nil
}

func (m *Memory) window(id int) *memWindow {
	for _, w := range m.windows {
		if w.id == id {
			return w
		}
	}
	return nil
}

func (m *Memory) newWindowLocked() *memWindow {
	w := &memWindow{id: m.nextWin}
	m.nextWin++
	m.windows = append(m.windows, w)
	return w
}

func (m *Memory) appendTabLocked(w *memWindow, title, url, icon string) *LiveTab {
	t := &LiveTab{
		ID:         m.nextTab,
		WindowID:   w.id,
		Index:      len(w.tabs),
		Title:      title,
		URL:        url,
		FavIconURL: icon,
		Active:     len(w.tabs) == 0,
	}
	m.nextTab++
	m.tabs[t.ID] = t
	w.tabs = append(w.tabs, t.ID)
	return t
}

func (m *Memory) reindexLocked(w *memWindow) {
	for i, id := range w.tabs {
		m.tabs[id].Index = i
	}
}

func windowOf(w *memWindow) Window {
	return Window{ID: w.id, TabIDs: append([]int(nil), w.tabs...)}
}

func removeID(ids []int, id int) []int {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
