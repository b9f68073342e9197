package ui

import (
	"fmt"

	"github.com/five82/tabshelf/internal/collection"
	"github.com/five82/tabshelf/internal/drag"
	"github.com/five82/tabshelf/internal/host"
	"github.com/five82/tabshelf/internal/reconcile"
)

type rowKind int

const (
	rowGroup rowKind = iota
	rowCollection
	rowEmptyGroup
)

// collectionRow is one line of the collections pane.
type collectionRow struct {
	kind     rowKind
	groupIdx int
	pos      int
	id       int
	name     string
	tabs     int
	dragging bool
}

func buildCollectionRows(groups []collection.Group) []collectionRow {
	var rows []collectionRow
	for gi, g := range groups {
		rows = append(rows, collectionRow{kind: rowGroup, groupIdx: gi, pos: -1, id: -1, name: g.Name, tabs: len(g.Collections)})
		if len(g.Collections) == 0 {
			rows = append(rows, collectionRow{kind: rowEmptyGroup, groupIdx: gi, pos: -1, id: -1})
			continue
		}
		for pos, c := range g.Collections {
			rows = append(rows, collectionRow{kind: rowCollection, groupIdx: gi, pos: pos, id: c.CollectionID, name: c.Name, tabs: len(c.Tabs)})
		}
	}
	return rows
}

// previewRows shows the dragged collection where a drop would put it:
// before collection before in group dest, or at the end of dest when before
// is -1. The dragged row is marked dragging.
func previewRows(groups []collection.Group, draggedID, dest, before int) []collectionRow {
	preview := collection.Clone(groups)
	var moved collection.Collection
	found := false
	for gi := range preview {
		for pos, c := range preview[gi].Collections {
			if c.CollectionID == draggedID {
				moved, found = c, true
				preview[gi].Collections = append(preview[gi].Collections[:pos], preview[gi].Collections[pos+1:]...)
				break
			}
		}
	}
	if found && dest >= 0 && dest < len(preview) {
		list := preview[dest].Collections
		at := len(list)
		for i, c := range list {
			if c.CollectionID == before {
				at = i
				break
			}
		}
		preview[dest].Collections = append(list[:at], append([]collection.Collection{moved}, list[at:]...)...)
	} else {
		preview = groups
	}
	rows := buildCollectionRows(preview)
	for i := range rows {
		if rows[i].kind == rowCollection && rows[i].id == draggedID {
			rows[i].dragging = true
		}
	}
	return rows
}

// windowSection is one window group of the live pane. Line numbers are
// relative to the top of the pane's content.
type windowSection struct {
	id      int
	ordinal int
	tabs    []host.LiveTab
	header  int
	gridTop int
	lines   int
}

// end is the first content line after the section, including its spacer.
func (s windowSection) end() int {
	return s.gridTop + s.lines + 1
}

func buildWindowSections(tabs []host.LiveTab, perRow int) []windowSection {
	perRow = max(perRow, 1)
	order, byWindow := host.GroupByWindow(tabs)
	sections := make([]windowSection, 0, len(order))
	line := 0
	for i, id := range order {
		wt := byWindow[id]
		rows := (len(wt) + perRow - 1) / perRow
		s := windowSection{
			id:      id,
			ordinal: i + 1,
			tabs:    wt,
			header:  line,
			gridTop: line + 1,
			lines:   max(rows, 1) * liveCardHeight,
		}
		sections = append(sections, s)
		line = s.end()
	}
	return sections
}

func cardsPerRow(width int) int {
	return max(width/liveCardWidth, 1)
}

type hitKind int

const (
	hitNone hitKind = iota
	hitDivider
	hitGroup
	hitCollection
	hitCollectionsList
	hitStoredCard
	hitContentPanel
	hitWindow
	hitLiveCard
	hitWindowGrid
)

// hit is what sits under a screen cell.
type hit struct {
	kind    hitKind
	pane    drag.Pane
	divider int

	groupIdx     int
	pos          int
	collectionID int

	tabIndex int
	tab      host.LiveTab
	windowID int
	section  int
}

// frame is everything hit testing needs from one rendered screen.
type frame struct {
	layout   paneLayout
	rows     []collectionRow
	stored   []collection.StoredTab
	selected bool
	groups   int
	sections []windowSection
	perRow   int
	scroll   [4]int
}

func (f frame) bodyTop() int {
	return f.layout.collections.inner().y
}

// line maps screen row y to a content line of pane p.
func (f frame) line(p drag.Pane, y int) int {
	return y - f.bodyTop() + f.scroll[p]
}

// screenY maps content line n of pane p to a screen row.
func (f frame) screenY(p drag.Pane, n int) int {
	return n - f.scroll[p] + f.bodyTop()
}

func (f frame) hitTest(x, y int) hit {
	h := hit{groupIdx: -1, pos: -1, collectionID: -1, tabIndex: -1, section: -1}
	if d := f.layout.dividerAt(x, y); d != 0 {
		h.kind, h.divider = hitDivider, d
		return h
	}
	switch {
	case f.layout.collections.inner().contains(x, y):
		h.pane = drag.PaneCollections
		n := f.line(h.pane, y)
		if n < 0 || n >= len(f.rows) {
			h.kind = hitCollectionsList
			return h
		}
		r := f.rows[n]
		h.groupIdx = r.groupIdx
		if r.kind == rowCollection {
			h.kind, h.pos, h.collectionID = hitCollection, r.pos, r.id
		} else {
			h.kind = hitGroup
		}
	case f.layout.content.inner().contains(x, y):
		h.pane = drag.PaneContent
		h.kind = hitContentPanel
		if n := f.line(h.pane, y); f.selected && n >= 0 && n < len(f.stored) {
			h.kind, h.tabIndex = hitStoredCard, n
		}
	case f.layout.live.inner().contains(x, y):
		h.pane = drag.PaneLive
		n := f.line(h.pane, y)
		for i, s := range f.sections {
			if n < s.header || n >= s.end() {
				continue
			}
			h.section, h.windowID = i, s.id
			h.kind = hitWindowGrid
			if n == s.header {
				h.kind = hitWindow
				return h
			}
			col := (x - f.layout.live.inner().x) / liveCardWidth
			within := (x - f.layout.live.inner().x) % liveCardWidth
			idx := ((n-s.gridTop)/liveCardHeight)*f.perRow + col
			if n < s.gridTop+s.lines && col < f.perRow && within < liveCardWidth-liveCardGap && idx < len(s.tabs) {
				h.kind, h.tab, h.tabIndex = hitLiveCard, s.tabs[idx], idx
			}
			return h
		}
	}
	return h
}

func collectionElement(id int) drag.Element { return drag.Element(fmt.Sprintf("collection:%d", id)) }
func storedElement(id, idx int) drag.Element {
	return drag.Element(fmt.Sprintf("stored:%d:%d", id, idx))
}
func tabElement(id int) drag.Element    { return drag.Element(fmt.Sprintf("tab:%d", id)) }
func windowElement(id int) drag.Element { return drag.Element(drag.WindowPayload(id)) }

// origin describes h for drag-start capture.
func (f frame) origin(h hit, selectedID int) drag.Origin {
	o := drag.Origin{Pane: h.pane, GroupIdx: -1, Pos: -1, TabIndex: -1}
	switch h.kind {
	case hitCollection:
		o.Element = collectionElement(h.collectionID)
		o.Collection, o.GroupIdx, o.Pos = true, h.groupIdx, h.pos
	case hitStoredCard:
		o.Element = storedElement(selectedID, h.tabIndex)
		o.Tab, o.TabIndex = true, h.tabIndex
	case hitLiveCard:
		o.Element = tabElement(h.tab.ID)
		o.Tab, o.TabIndex, o.TabID = true, h.tab.Index, h.tab.ID
		o.Window, o.WindowID = true, h.windowID
	case hitWindow, hitWindowGrid:
		o.Element = windowElement(h.windowID)
		o.Window, o.WindowID = true, h.windowID
	}
	return o
}

// siblings lists the collection rows of group gi in sub-row units: each
// terminal row is two units tall so a pointer can sit in a row's upper or
// lower half.
func (f frame) siblings(gi int) []reconcile.Sibling {
	var out []reconcile.Sibling
	for n, r := range f.rows {
		if r.kind != rowCollection || r.groupIdx != gi {
			continue
		}
		out = append(out, reconcile.Sibling{
			CollectionID: r.id,
			Box:          drag.Box{Top: 2 * f.screenY(drag.PaneCollections, n), Height: 2},
		})
	}
	return out
}

// gridCount is the number of cards a drop position is clamped against. The
// dragged live card does not count.
func gridCount(sec windowSection, s drag.Session) int {
	n := len(sec.tabs)
	if s.Kind != drag.KindTabCard || s.Source != drag.SourceLiveTab {
		return n
	}
	for _, tab := range sec.tabs {
		if tab.ID == s.TabID {
			return n - 1
		}
	}
	return n
}

// target resolves the drop target under (x, y) for session s.
func (f frame) target(s drag.Session, h hit, x, y int) reconcile.Target {
	t := reconcile.Target{GroupIdx: -1, CollectionID: -1, CardIndex: -1, PointerY: 2*y + 1}
	switch h.kind {
	case hitCollection:
		if s.Kind == drag.KindCollection {
			t.Kind, t.GroupIdx = drag.TargetCollectionGroup, h.groupIdx
			t.Siblings = f.siblings(h.groupIdx)
			return t
		}
		t.Kind, t.CollectionID, t.GroupIdx = drag.TargetCollection, h.collectionID, h.groupIdx
	case hitGroup:
		t.Kind, t.GroupIdx = drag.TargetCollectionGroup, h.groupIdx
		t.Siblings = f.siblings(h.groupIdx)
	case hitCollectionsList:
		t.Kind = drag.TargetCollectionsList
		if f.groups > 0 {
			t.GroupIdx = f.groups - 1
			t.Siblings = f.siblings(t.GroupIdx)
		}
	case hitStoredCard:
		t.Kind, t.CardIndex = drag.TargetContentPanel, h.tabIndex
	case hitContentPanel:
		t.Kind = drag.TargetContentPanel
	case hitWindow, hitWindowGrid, hitLiveCard:
		sec := f.sections[h.section]
		inner := f.layout.live.inner()
		t.Kind, t.WindowID = drag.TargetWindowGroup, sec.id
		t.Grid = &reconcile.GridHit{
			Container: drag.Rect{Left: inner.x, Top: f.screenY(drag.PaneLive, sec.gridTop), Width: f.perRow * liveCardWidth},
			Cell:      drag.Cell{Width: liveCardWidth, Height: liveCardHeight},
			X:         x,
			Y:         y,
			Count:     gridCount(sec, s),
		}
		if h.kind == hitLiveCard {
			t.CardIndex, t.CardTabID = h.tab.Index, h.tab.ID
		}
	}
	return t
}

// liveLines is the total number of content lines in the live pane.
func liveLines(sections []windowSection) int {
	if len(sections) == 0 {
		return 0
	}
	return sections[len(sections)-1].end()
}
