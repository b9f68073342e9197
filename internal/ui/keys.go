package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding
	Logs       key.Binding
	Refresh    key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Activate key.Binding

	// Collections
	AddCollection key.Binding
	AddGroup      key.Binding
	Rename        key.Binding
	Delete        key.Binding
	GroupUp       key.Binding
	GroupDown     key.Binding
	OpenAll       key.Binding
	OpenWindow    key.Binding
	RemoveAll     key.Binding
	Export        key.Binding
	Import        key.Binding
	CopyURL       key.Binding

	// Live tabs
	Hibernate   key.Binding
	SortWindow  key.Binding
	CloseTab    key.Binding
	CloseWindow key.Binding

	// Modals
	Confirm key.Binding
	Decline key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next pane"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous pane"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close overlay"),
		),
		Logs: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Toggle log overlay"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Refresh live tabs"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("ctrl+u", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("ctrl+d", "Page down"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Select / open / activate"),
		),

		AddCollection: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Add collection"),
		),
		AddGroup: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "Add group"),
		),
		Rename: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Rename"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "Delete / close"),
		),
		GroupUp: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "Move group up"),
		),
		GroupDown: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "Move group down"),
		),
		OpenAll: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Open all tabs"),
		),
		OpenWindow: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", "Open all in new window"),
		),
		RemoveAll: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "Remove all tabs"),
		),
		Export: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "Export collections"),
		),
		Import: key.NewBinding(
			key.WithKeys("I"),
			key.WithHelp("I", "Import collections"),
		),
		CopyURL: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "Copy URL"),
		),

		Hibernate: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "Hibernate window"),
		),
		SortWindow: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Sort window by domain"),
		),
		CloseTab: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Close tab"),
		),
		CloseWindow: key.NewBinding(
			key.WithKeys("W"),
			key.WithHelp("W", "Close window"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter", "y"),
			key.WithHelp("y/enter", "Confirm"),
		),
		Decline: key.NewBinding(
			key.WithKeys("esc", "n"),
			key.WithHelp("n/esc", "Cancel"),
		),
	}
}

// ShortHelp returns key bindings for the status line.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings grouped for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.Up, k.Down, k.Top, k.Bottom, k.PageUp, k.PageDown, k.Activate},
		{k.AddGroup, k.AddCollection, k.Rename, k.Delete, k.GroupUp, k.GroupDown},
		{k.OpenAll, k.OpenWindow, k.RemoveAll, k.CopyURL, k.Export, k.Import},
		{k.Hibernate, k.SortWindow, k.CloseTab, k.CloseWindow, k.Refresh},
		{k.Logs, k.CycleTheme, k.Help, k.Quit},
	}
}
