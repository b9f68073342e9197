package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/five82/tabshelf/internal/devtools"
	"github.com/five82/tabshelf/internal/logging"
	"pkt.systems/pslog"
)

// protocol is the part of the DevTools protocol the HTTP endpoints lack.
type protocol interface {
	windowFor(ctx context.Context, id string) (int, error)
	openWindow(ctx context.Context, url string) (string, error)
	activate(ctx context.Context, id string) error
	close()
}

// Chrome drives a running Chromium browser started with
// --remote-debugging-port. Tab ids are small integers assigned on first
// sight of a target and stable for the life of the process.
//
// Chrome cannot reorder tabs through the debugging interface, so MoveTab
// always fails with ErrUnsupported. Tab indexes follow the browser's
// most-recently-used listing order within each window.
type Chrome struct {
	http  devtools.Endpoints
	proto protocol
	log   pslog.Logger

	mu      sync.Mutex
	ids     map[string]int
	targets map[int]string
	next    int
}

var _ Provider = (*Chrome)(nil)

// NewChrome connects to the browser behind endpoints.
func NewChrome(ctx context.Context, endpoints devtools.Endpoints, logger pslog.Logger) (*Chrome, error) {
	logger = logging.OrDiscard(logger)
	v, err := endpoints.Version(ctx)
	if err != nil {
		return nil, &CallError{Op: "connect", Err: err}
	}
	proto, err := dialProtocol(ctx, v.WebSocketDebuggerURL)
	if err != nil {
		return nil, &CallError{Op: "connect", Err: err}
	}
	logger.Info("browser connected", "browser", v.Browser, "debugger_url", v.WebSocketDebuggerURL)
	return newChrome(endpoints, proto, logger), nil
}

func newChrome(endpoints devtools.Endpoints, proto protocol, logger pslog.Logger) *Chrome {
	return &Chrome{
		http:    endpoints,
		proto:   proto,
		log:     logging.OrDiscard(logger),
		ids:     make(map[string]int),
		targets: make(map[int]string),
		next:    1,
	}
}

// Close drops the protocol connection. The browser keeps running.
func (c *Chrome) Close() error {
	c.proto.close()
	return nil
}

func (c *Chrome) QueryTabs(ctx context.Context, q Query) ([]LiveTab, error) {
	tabs, err := c.listTabs(ctx)
	if err != nil {
		return nil, callErr("query tabs", err)
	}
	if q.WindowID == 0 {
		return tabs, nil
	}
	var out []LiveTab
	for _, t := range tabs {
		if t.WindowID == q.WindowID {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil, &CallError{Op: "query tabs", Err: fmt.Errorf("window %d: %w", q.WindowID, ErrWindowNotFound)}
	}
	return out, nil
}

func (c *Chrome) GetTab(ctx context.Context, id int) (LiveTab, error) {
	tabs, err := c.listTabs(ctx)
	if err != nil {
		return LiveTab{}, callErr("get tab", err)
	}
	for _, t := range tabs {
		if t.ID == id {
			return t, nil
		}
	}
	return LiveTab{}, &CallError{Op: "get tab", Err: fmt.Errorf("tab %d: %w", id, ErrTabNotFound)}
}

func (c *Chrome) MoveTab(context.Context, int, Move) error {
	return &CallError{Op: "move tab", Err: ErrUnsupported}
}

func (c *Chrome) CreateTab(ctx context.Context, cr Create) (LiveTab, error) {
	if cr.WindowID != 0 {
		if err := c.FocusWindow(ctx, cr.WindowID); err != nil {
			return LiveTab{}, callErr("create tab", err)
		}
	}
	created, err := c.http.New(ctx, cr.URL)
	if err != nil {
		return LiveTab{}, callErr("create tab", err)
	}
	id := c.idFor(created.ID)
	tab, err := c.GetTab(ctx, id)
	if err != nil {
		// Listed lazily by some builds; report what we know.
		return LiveTab{ID: id, WindowID: cr.WindowID, Index: -1, Title: created.Title, URL: cr.URL}, nil
	}
	return tab, nil
}

func (c *Chrome) RemoveTab(ctx context.Context, id int) error {
	tid, ok := c.targetFor(id)
	if !ok {
		return &CallError{Op: "remove tab", Err: fmt.Errorf("tab %d: %w", id, ErrTabNotFound)}
	}
	if err := c.http.Close(ctx, tid); err != nil {
		return callErr("remove tab", err)
	}
	c.forget(tid)
	return nil
}

// RemoveWindow closes every tab of the window, which closes the window.
func (c *Chrome) RemoveWindow(ctx context.Context, id int) error {
	tabs, err := c.QueryTabs(ctx, Query{WindowID: id})
	if err != nil {
		return callErr("remove window", err)
	}
	for _, t := range tabs {
		if err := c.RemoveTab(ctx, t.ID); err != nil {
			return callErr("remove window", err)
		}
	}
	return nil
}

func (c *Chrome) UpdateTab(ctx context.Context, id int, u Update) error {
	if !u.Active {
		return nil
	}
	tid, ok := c.targetFor(id)
	if !ok {
		return &CallError{Op: "update tab", Err: fmt.Errorf("tab %d: %w", id, ErrTabNotFound)}
	}
	return callErr("update tab", c.http.Activate(ctx, tid))
}

// FocusWindow raises the window by activating its most recent tab.
func (c *Chrome) FocusWindow(ctx context.Context, id int) error {
	tabs, err := c.QueryTabs(ctx, Query{WindowID: id})
	if err != nil {
		return callErr("focus window", err)
	}
	tid, _ := c.targetFor(tabs[0].ID)
	return callErr("focus window", c.proto.activate(ctx, tid))
}

func (c *Chrome) CreateWindow(ctx context.Context, urls []string) (Window, error) {
	if len(urls) == 0 {
		urls = []string{"about:blank"}
	}
	first, err := c.proto.openWindow(ctx, urls[0])
	if err != nil {
		return Window{}, callErr("create window", err)
	}
	wid, err := c.proto.windowFor(ctx, first)
	if err != nil {
		return Window{}, callErr("create window", err)
	}
	w := Window{ID: wid, TabIDs: []int{c.idFor(first)}}
	for _, u := range urls[1:] {
		if err := c.proto.activate(ctx, first); err != nil {
			return w, callErr("create window", err)
		}
		t, err := c.http.New(ctx, u)
		if err != nil {
			return w, callErr("create window", err)
		}
		w.TabIDs = append(w.TabIDs, c.idFor(t.ID))
	}
	return w, nil
}

// CurrentWindow reports the window owning the most recently used tab.
func (c *Chrome) CurrentWindow(ctx context.Context) (Window, error) {
	tabs, err := c.listTabs(ctx)
	if err != nil {
		return Window{}, callErr("current window", err)
	}
	if len(tabs) == 0 {
		return Window{}, &CallError{Op: "current window", Err: ErrWindowNotFound}
	}
	w := Window{ID: tabs[0].WindowID}
	for _, t := range tabs {
		if t.WindowID == w.ID {
			w.TabIDs = append(w.TabIDs, t.ID)
		}
	}
	return w, nil
}

func (c *Chrome) listTabs(ctx context.Context) ([]LiveTab, error) {
	targets, err := c.http.List(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[int]int)
	var tabs []LiveTab
	for _, t := range targets {
		if !t.IsPage() {
			continue
		}
		wid, err := c.proto.windowFor(ctx, t.ID)
		if err != nil {
			c.log.Debug("window lookup failed", "target", t.ID, "err", err)
			continue
		}
		idx := counts[wid]
		counts[wid]++
		tabs = append(tabs, LiveTab{
			ID:         c.idFor(t.ID),
			WindowID:   wid,
			Index:      idx,
			Title:      t.Title,
			URL:        t.URL,
			FavIconURL: t.FaviconURL,
			Active:     idx == 0,
		})
	}
	return tabs, nil
}

func (c *Chrome) idFor(tid string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.ids[tid]; ok {
		return id
	}
	id := c.next
	c.next++
	c.ids[tid] = id
	c.targets[id] = tid
	return id
}

func (c *Chrome) targetFor(id int) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tid, ok := c.targets[id]
	return tid, ok
}

func (c *Chrome) forget(tid string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.ids[tid]; ok {
		delete(c.targets, id)
		delete(c.ids, tid)
	}
}

// cdpProtocol issues browser-level commands over the debugger websocket.
type cdpProtocol struct {
	browserCtx context.Context
	cancels    []context.CancelFunc
}

func dialProtocol(ctx context.Context, wsURL string) (*cdpProtocol, error) {
	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(context.Background(), wsURL, chromedp.NoModifyURL)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	p := &cdpProtocol{browserCtx: browserCtx, cancels: []context.CancelFunc{cancelBrowser, cancelAlloc}}

	// Targets dials the browser without attaching to or creating a page.
	if _, err := chromedp.Targets(browserCtx); err != nil {
		p.close()
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}
	if err := ctx.Err(); err != nil {
		p.close()
		return nil, err
	}
	return p, nil
}

func (p *cdpProtocol) exec(ctx context.Context) context.Context {
	return cdp.WithExecutor(ctx, chromedp.FromContext(p.browserCtx).Browser)
}

func (p *cdpProtocol) windowFor(ctx context.Context, id string) (int, error) {
	wid, _, err := browser.GetWindowForTarget().WithTargetID(target.ID(id)).Do(p.exec(ctx))
	if err != nil {
		return 0, err
	}
	return int(wid), nil
}

func (p *cdpProtocol) openWindow(ctx context.Context, url string) (string, error) {
	tid, err := target.CreateTarget(url).WithNewWindow(true).Do(p.exec(ctx))
	if err != nil {
		return "", err
	}
	return string(tid), nil
}

func (p *cdpProtocol) activate(ctx context.Context, id string) error {
	return target.ActivateTarget(target.ID(id)).Do(p.exec(ctx))
}

// close releases the websocket only. chromedp.Cancel on the first context
// sends Browser.close, which would quit the user's browser.
func (p *cdpProtocol) close() {
	for _, cancel := range p.cancels {
		cancel()
	}
}
