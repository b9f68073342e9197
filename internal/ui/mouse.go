package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tabshelf/internal/drag"
	"github.com/five82/tabshelf/internal/prefs"
	"github.com/five82/tabshelf/internal/reconcile"
)

const wheelStep = 3

func (m Model) handleMouse(ev tea.MouseEvent) (Model, tea.Cmd) {
	switch ev.Action {
	case tea.MouseActionPress:
		switch ev.Button {
		case tea.MouseButtonWheelUp:
			m.scrollAt(ev.X, ev.Y, -wheelStep)
		case tea.MouseButtonWheelDown:
			m.scrollAt(ev.X, ev.Y, wheelStep)
		case tea.MouseButtonLeft:
			return m.pressAt(ev.X, ev.Y)
		}
	case tea.MouseActionMotion:
		if m.press != nil {
			m.dragTo(ev.X, ev.Y)
		}
	case tea.MouseActionRelease:
		return m.releaseAt(ev.X, ev.Y, ev.Shift)
	}
	return m, nil
}

func (m *Model) scrollAt(x, y, delta int) {
	h := m.frame().hitTest(x, y)
	if h.pane == drag.PaneNone {
		return
	}
	m.scroll[h.pane] = max(m.scroll[h.pane]+delta, 0)
	m.clampScroll(h.pane)
}

// pressAt starts a drag on whatever sits under the pointer. A pressed live
// tab card fetches its authoritative snapshot in the background.
func (m Model) pressAt(x, y int) (Model, tea.Cmd) {
	f := m.frame()
	h := f.hitTest(x, y)
	if h.kind == hitDivider {
		m.press = &pressState{x: x, y: y, divider: h.divider}
		return m, nil
	}
	if h.pane != drag.PaneNone {
		m.focus = h.pane
		m.moveCursorTo(f, h)
	}

	sel, _ := m.selectedID()
	s, err := m.tracker.Begin(f.origin(h, sel), m.store, m.scroll[drag.PaneLive])
	m.press = &pressState{x: x, y: y, hit: h}
	if err != nil {
		m.setError(err)
		return m, nil
	}
	if s.Kind == drag.KindTabCard && s.Source == drag.SourceLiveTab {
		return m, m.fetchCmd(s.Serial, s.TabID)
	}
	return m, nil
}

// dragTo follows the pointer while the button is held: it resizes panes
// when a divider is held, otherwise it tracks the hovered drop target.
func (m *Model) dragTo(x, y int) {
	p := m.press
	if p.divider != 0 {
		m.resizePane(p.divider, x)
		return
	}
	if !p.moved && (x != p.x || y != p.y) {
		p.moved = true
		m.tracker.MarkDragging()
	}
	s := m.tracker.Current()
	if !s.Active() {
		return
	}
	f := m.frame()
	m.hover = f.hitTest(x, y)
	m.hoverTarget = f.target(s, m.hover, x, y)
	m.hoverOK = drag.CanDrop(s, m.hoverTarget.Kind)
}

func (m *Model) resizePane(divider, x int) {
	switch divider {
	case 1:
		m.leftWidth = clampPaneWidth(x+1, m.width)
	case 2:
		m.rightWidth = clampPaneWidth(m.width-x, m.width)
	}
}

// releaseAt ends the press: a divider drag saves the widths, a press
// without motion is a click, a drag is a drop, and motion that never
// started a drag does nothing.
func (m Model) releaseAt(x, y int, shift bool) (Model, tea.Cmd) {
	p := m.press
	m.press = nil
	m.hover = hit{}
	m.hoverTarget = reconcile.Target{}
	m.hoverOK = false
	if p == nil {
		return m, nil
	}
	if p.divider != 0 {
		return m, m.savePrefsCmd()
	}
	if !p.moved {
		m.tracker.End()
		return m.click(p.hit)
	}

	// The session ends here, on the UI goroutine, before any host call runs.
	s := m.tracker.End()
	if !s.Active() {
		m.log.Debug("release without a drag", "x", x, "y", y)
		return m, nil
	}
	f := m.frame()
	h := f.hitTest(x, y)
	d := reconcile.Drop{Session: s, Target: f.target(s, h, x, y), Shift: shift}
	return m, m.dropCmd(d)
}

// click runs the default action for a pressed element.
func (m Model) click(h hit) (Model, tea.Cmd) {
	switch h.kind {
	case hitCollection:
		if err := m.store.Select(h.collectionID); err != nil {
			m.setError(err)
			return m, nil
		}
		m.cursor[drag.PaneContent] = 0
		m.scroll[drag.PaneContent] = 0
	case hitStoredCard:
		c, ok := m.selectedCollection()
		if !ok || h.tabIndex >= len(c.Tabs) {
			return m, nil
		}
		url := c.Tabs[h.tabIndex].URL
		return m, m.hostCmd("Opened tab", true, func(ctx context.Context) error {
			_, err := m.bulk.OpenStored(ctx, url)
			return err
		})
	case hitLiveCard:
		id := h.tab.ID
		return m, m.hostCmd("Activated tab", true, func(ctx context.Context) error {
			return m.bulk.ActivateTab(ctx, id)
		})
	}
	return m, nil
}

func (m Model) fetchCmd(serial uint64, id int) tea.Cmd {
	ctx, tracker, provider := m.ctx, m.tracker, m.host
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, hostCallTimeout)
		defer cancel()
		return fetchMsg{serial: serial, err: tracker.Fetch(ctx, provider, serial, id)}
	}
}

func (m Model) dropCmd(d reconcile.Drop) tea.Cmd {
	ctx, r := m.ctx, m.reconciler
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, hostCallTimeout)
		defer cancel()
		return dropMsg{res: r.Drop(ctx, d)}
	}
}

func (m Model) savePrefsCmd() tea.Cmd {
	path := m.prefsPath
	p := prefs.Prefs{Theme: m.theme.Name, LeftWidth: m.leftWidth, RightWidth: m.rightWidth}
	log := m.log
	return func() tea.Msg {
		if err := prefs.Save(path, p); err != nil {
			log.Warn("save prefs failed", "err", err)
		}
		return nil
	}
}

var ruleDone = map[int]string{
	1: "Collection moved",
	2: "Tab saved to collection",
	3: "Tab moved to collection",
	4: "Tab opened",
	5: "Tab moved",
	6: "Tab saved to selected collection",
	7: "Tab reordered",
	8: "Window saved to collection",
}

// applyDrop redraws what the drop touched and reports it.
func (m Model) applyDrop(res reconcile.Result) (Model, tea.Cmd) {
	switch {
	case res.Err != nil:
		m.setError(res.Err)
	case res.Mutated || res.Render != 0:
		m.setStatus(ruleDone[res.Rule])
	}
	if res.Render.Has(reconcile.RenderRestoreScroll) {
		m.scroll[drag.PaneLive] = res.ScrollOffset
	}
	if res.Render.Has(reconcile.RenderLive) {
		return m, m.refreshLiveCmd()
	}
	return m, nil
}
