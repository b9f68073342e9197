package ui

import (
	"github.com/five82/tabshelf/internal/drag"
	"github.com/five82/tabshelf/internal/host"
)

var paneOrder = []drag.Pane{drag.PaneCollections, drag.PaneContent, drag.PaneLive}

func nextPane(p drag.Pane, delta int) drag.Pane {
	idx := 0
	for i, candidate := range paneOrder {
		if candidate == p {
			idx = i
		}
	}
	n := len(paneOrder)
	return paneOrder[((idx+delta)%n+n)%n]
}

// itemCount is the number of cursor positions in pane p.
func (f frame) itemCount(p drag.Pane) int {
	switch p {
	case drag.PaneCollections:
		return len(f.rows)
	case drag.PaneContent:
		if !f.selected {
			return 0
		}
		return len(f.stored)
	case drag.PaneLive:
		total := 0
		for _, s := range f.sections {
			total += len(s.tabs)
		}
		return total
	}
	return 0
}

// lineCount is the number of content lines in pane p.
func (f frame) lineCount(p drag.Pane) int {
	if p == drag.PaneLive {
		return liveLines(f.sections)
	}
	return f.itemCount(p)
}

// liveItem maps a flat live cursor to its section and card index.
func (f frame) liveItem(cursor int) (section, idx int, ok bool) {
	for i, s := range f.sections {
		if cursor < len(s.tabs) {
			return i, cursor, true
		}
		cursor -= len(s.tabs)
	}
	return -1, -1, false
}

// liveCursor is the inverse of liveItem.
func (f frame) liveCursor(section, idx int) int {
	n := 0
	for i := 0; i < section && i < len(f.sections); i++ {
		n += len(f.sections[i].tabs)
	}
	return n + idx
}

// cursorLine is the content line the cursor of pane p sits on.
func (f frame) cursorLine(p drag.Pane, cursor int) int {
	if p != drag.PaneLive {
		return cursor
	}
	si, idx, ok := f.liveItem(cursor)
	if !ok {
		return 0
	}
	return f.sections[si].gridTop + (idx/f.perRow)*liveCardHeight
}

func (m *Model) clampScroll(p drag.Pane) {
	f := m.frame()
	limit := max(f.lineCount(p)-f.layout.bodyHeight(), 0)
	m.scroll[p] = min(max(m.scroll[p], 0), limit)
}

// clampCursors keeps every cursor on an existing item after the data
// changed underneath it.
func (m *Model) clampCursors() {
	if !m.ready {
		return
	}
	f := m.frame()
	for _, p := range paneOrder {
		m.cursor[p] = min(max(m.cursor[p], 0), max(f.itemCount(p)-1, 0))
		m.clampScroll(p)
	}
}

// moveCursor moves the focused pane's cursor by delta and scrolls it into
// view.
func (m *Model) moveCursor(delta int) {
	p := m.focus
	f := m.frame()
	m.cursor[p] = min(max(m.cursor[p]+delta, 0), max(f.itemCount(p)-1, 0))
	m.ensureVisible(f, p)
}

func (m *Model) ensureVisible(f frame, p drag.Pane) {
	line := f.cursorLine(p, m.cursor[p])
	height := max(f.layout.bodyHeight(), 1)
	if p == drag.PaneLive {
		height = max(height-liveCardHeight+1, 1)
	}
	switch {
	case line < m.scroll[p]:
		m.scroll[p] = line
	case line >= m.scroll[p]+height:
		m.scroll[p] = line - height + 1
	}
	m.clampScroll(p)
}

// moveCursorTo puts the cursor of h's pane on the element h points at.
func (m *Model) moveCursorTo(f frame, h hit) {
	switch h.kind {
	case hitGroup, hitCollection:
		n := m.cursor[drag.PaneCollections]
		for i, r := range f.rows {
			if r.groupIdx == h.groupIdx && r.pos == h.pos && (r.kind == rowCollection) == (h.kind == hitCollection) {
				n = i
				break
			}
		}
		m.cursor[drag.PaneCollections] = n
	case hitStoredCard:
		m.cursor[drag.PaneContent] = h.tabIndex
	case hitLiveCard:
		m.cursor[drag.PaneLive] = f.liveCursor(h.section, h.tabIndex)
	}
}

// currentRow is the collections row under the cursor.
func (m Model) currentRow() (collectionRow, bool) {
	rows := buildCollectionRows(m.groups)
	c := m.cursor[drag.PaneCollections]
	if c < 0 || c >= len(rows) {
		return collectionRow{}, false
	}
	return rows[c], true
}

// currentLiveTab is the live tab under the cursor and its window's ordinal.
func (m Model) currentLiveTab() (host.LiveTab, int, bool) {
	f := m.frame()
	si, idx, ok := f.liveItem(m.cursor[drag.PaneLive])
	if !ok {
		return host.LiveTab{}, 0, false
	}
	return f.sections[si].tabs[idx], f.sections[si].ordinal, true
}
