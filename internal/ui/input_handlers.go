package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tabshelf/internal/drag"
	"github.com/five82/tabshelf/internal/reconcile"
)

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.modal != nil {
		next, cmd, done := m.modal.Update(msg, m.keys)
		if done {
			m.modal = nil
		} else {
			m.modal = next
		}
		return m, cmd
	}

	// Any key closes help
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.showLogs {
		switch {
		case key.Matches(msg, m.keys.Logs), key.Matches(msg, m.keys.Escape):
			m.showLogs = false
			return m, nil
		case msg.String() == "ctrl+c":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.tracker.End()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		return m, m.savePrefsCmd()

	case key.Matches(msg, m.keys.Tab):
		m.focus = nextPane(m.focus, 1)
		return m, nil

	case key.Matches(msg, m.keys.ShiftTab):
		m.focus = nextPane(m.focus, -1)
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		if m.press != nil {
			m.tracker.End()
			m.press = nil
			m.hover, m.hoverTarget, m.hoverOK = hit{}, reconcile.Target{}, false
			m.setStatus("Drag cancelled")
			return m, nil
		}
		m.status, m.statusErr = "", false
		return m, nil

	case key.Matches(msg, m.keys.Logs):
		m.showLogs = true
		return m, m.loadLogsCmd()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshLiveCmd()

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.moveCursor(-m.cursor[m.focus])
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(m.frame().itemCount(m.focus))
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-max(m.layout().bodyHeight()/2, 1))
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(max(m.layout().bodyHeight()/2, 1))
		return m, nil

	case key.Matches(msg, m.keys.OpenAll):
		return m, m.openAllCmd()
	case key.Matches(msg, m.keys.OpenWindow):
		return m, m.openWindowCmd()
	case key.Matches(msg, m.keys.RemoveAll):
		m.confirmRemoveAll()
		return m, nil
	case key.Matches(msg, m.keys.Export):
		m.promptExport()
		return m, nil
	case key.Matches(msg, m.keys.Import):
		m.promptImport()
		return m, nil
	case key.Matches(msg, m.keys.AddGroup):
		m.promptAddGroup()
		return m, nil
	}

	switch m.focus {
	case drag.PaneCollections:
		return m.handleCollectionsKey(msg)
	case drag.PaneContent:
		return m.handleContentKey(msg)
	case drag.PaneLive:
		return m.handleLiveKey(msg)
	}
	return m, nil
}

func (m Model) handleCollectionsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	row, ok := m.currentRow()
	switch {
	case key.Matches(msg, m.keys.AddCollection):
		m.promptAddCollection(row, ok)
		return m, nil
	case !ok:
		return m, nil

	case key.Matches(msg, m.keys.Activate):
		if row.kind == rowCollection {
			return m.click(hit{kind: hitCollection, collectionID: row.id})
		}
	case key.Matches(msg, m.keys.Rename):
		m.promptRename(row)
	case key.Matches(msg, m.keys.Delete):
		m.confirmDelete(row)
	case key.Matches(msg, m.keys.GroupUp):
		return m, m.moveGroupCmd(row.groupIdx, -1)
	case key.Matches(msg, m.keys.GroupDown):
		return m, m.moveGroupCmd(row.groupIdx, 1)
	}
	return m, nil
}

func (m Model) handleContentKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	c, ok := m.selectedCollection()
	idx := m.cursor[drag.PaneContent]
	if !ok || idx >= len(c.Tabs) {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Activate):
		return m.click(hit{kind: hitStoredCard, tabIndex: idx})
	case key.Matches(msg, m.keys.Delete):
		return m, m.removeStoredCmd(c.CollectionID, idx)
	case key.Matches(msg, m.keys.CopyURL):
		return m, m.copyURLCmd(c.Tabs[idx].URL)
	}
	return m, nil
}

func (m Model) handleLiveKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	tab, ordinal, ok := m.currentLiveTab()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Activate):
		return m.click(hit{kind: hitLiveCard, tab: tab})
	case key.Matches(msg, m.keys.CloseTab), key.Matches(msg, m.keys.Delete):
		return m, m.closeTabCmd(tab.ID)
	case key.Matches(msg, m.keys.CloseWindow):
		m.confirmCloseWindow(tab.WindowID, ordinal)
	case key.Matches(msg, m.keys.Hibernate):
		return m, m.hibernateCmd(tab.WindowID, ordinal)
	case key.Matches(msg, m.keys.SortWindow):
		return m, m.sortWindowCmd(tab.WindowID)
	case key.Matches(msg, m.keys.CopyURL):
		return m, m.copyURLCmd(tab.URL)
	}
	return m, nil
}
