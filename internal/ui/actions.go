package ui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tabshelf/internal/bulk"
	"github.com/five82/tabshelf/internal/collection"
	"github.com/five82/tabshelf/internal/drag"
	"github.com/five82/tabshelf/internal/host"
)

// liveSettle is how long the UI waits after poking the monitor before it
// re-reads the live snapshot.
const liveSettle = 250 * time.Millisecond

const defaultExportPath = "tabshelf-collections.json"

// modalMsg opens a modal from a command.
type modalMsg struct {
	modal Modal
}

func outcome(text string, err error) actionMsg {
	return actionMsg{done: text, err: err, selectID: -1, group: -1}
}

// run executes fn off the UI goroutine with a bounded context.
func (m Model) run(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, hostCallTimeout)
		defer cancel()
		return fn(ctx)
	}
}

// hostCmd runs fn and reports done on success. live refreshes the live pane
// afterwards either way, since host calls may have partially applied.
func (m Model) hostCmd(text string, live bool, fn func(ctx context.Context) error) tea.Cmd {
	return m.run(func(ctx context.Context) tea.Msg {
		msg := outcome(text, fn(ctx))
		msg.live = live
		return msg
	})
}

func (m Model) refreshLiveCmd() tea.Cmd {
	m.refresh()
	return tea.Tick(liveSettle, func(time.Time) tea.Msg {
		return snapshotMsg(m.live.Snapshot())
	})
}

// applyAction reports a finished action and applies its follow-ups.
func (m Model) applyAction(msg actionMsg) (Model, tea.Cmd) {
	switch {
	case errors.Is(msg.err, bulk.ErrAborted):
	case msg.err != nil:
		m.log.Warn("action failed", "action", msg.done, "err", msg.err)
		m.setError(msg.err)
	case msg.done != "":
		m.setStatus(msg.done)
	}
	if msg.selectID >= 0 {
		if err := m.store.Select(msg.selectID); err == nil {
			m.cursor[drag.PaneContent] = 0
			m.scroll[drag.PaneContent] = 0
		}
	}
	if msg.group >= 0 {
		m.syncGroups()
		for i, r := range buildCollectionRows(m.groups) {
			if r.kind == rowGroup && r.groupIdx == msg.group {
				m.cursor[drag.PaneCollections] = i
				m.ensureVisible(m.frame(), drag.PaneCollections)
				break
			}
		}
	}
	if msg.live {
		return m, m.refreshLiveCmd()
	}
	return m, nil
}

// describeError turns err into a status line.
func describeError(err error) string {
	var ve *collection.ValidationError
	var ce *host.CallError
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.Is(err, collection.ErrPersist):
		return "Save failed: " + err.Error()
	case errors.As(err, &ce):
		return fmt.Sprintf("Browser %s failed: %v", ce.Op, ce.Err)
	}
	return err.Error()
}

// Collections

func (m *Model) promptAddGroup() {
	store := m.store
	m.modal = newPrompt("New group name", "", func(name string) tea.Cmd {
		return m.run(func(ctx context.Context) tea.Msg {
			gi, err := store.AddGroup(ctx, name)
			msg := outcome("Group added", err)
			if err == nil {
				msg.group = gi
			}
			return msg
		})
	})
}

func (m *Model) promptAddCollection(row collectionRow, ok bool) {
	store := m.store
	gi := -1
	if ok {
		gi = row.groupIdx
	}
	m.modal = newPrompt("New collection name", "", func(name string) tea.Cmd {
		return m.run(func(ctx context.Context) tea.Msg {
			target := gi
			if target < 0 {
				var err error
				if target, err = store.EnsureGroup(ctx, collection.DefaultGroupName); err != nil {
					return outcome("", err)
				}
			}
			id, err := store.AddCollection(ctx, target, name)
			msg := outcome("Collection added", err)
			if err == nil {
				msg.selectID = id
			}
			return msg
		})
	})
}

func (m *Model) promptRename(row collectionRow) {
	store := m.store
	title := "Rename collection"
	if row.kind != rowCollection {
		title = "Rename group"
	}
	m.modal = newPrompt(title, row.name, func(name string) tea.Cmd {
		return m.run(func(ctx context.Context) tea.Msg {
			if row.kind == rowCollection {
				return outcome("Collection renamed", store.RenameCollection(ctx, row.id, name))
			}
			return outcome("Group renamed", store.RenameGroup(ctx, row.groupIdx, name))
		})
	})
}

func (m *Model) confirmDelete(row collectionRow) {
	store := m.store
	if row.kind == rowCollection {
		m.modal = newConfirm(
			fmt.Sprintf("Delete collection %q?", row.name),
			fmt.Sprintf("Its %d stored tabs are removed.", row.tabs),
			func() tea.Cmd {
				return m.run(func(ctx context.Context) tea.Msg {
					return outcome("Collection deleted", store.DeleteCollection(ctx, row.id))
				})
			})
		return
	}
	name := ""
	if row.groupIdx < len(m.groups) {
		name = m.groups[row.groupIdx].Name
	}
	m.modal = newConfirm(
		fmt.Sprintf("Delete group %q?", name),
		"All collections in the group are removed.",
		func() tea.Cmd {
			return m.run(func(ctx context.Context) tea.Msg {
				return outcome("Group deleted", store.DeleteGroup(ctx, row.groupIdx))
			})
		})
}

func (m Model) moveGroupCmd(gi, delta int) tea.Cmd {
	store := m.store
	return m.run(func(ctx context.Context) tea.Msg {
		moved, err := store.MoveGroup(ctx, gi, delta)
		if !moved || err != nil {
			return outcome("", err)
		}
		msg := outcome("Group moved", nil)
		msg.group = gi + delta
		return msg
	})
}

func (m Model) removeStoredCmd(id, idx int) tea.Cmd {
	store := m.store
	return m.run(func(ctx context.Context) tea.Msg {
		return outcome("Tab removed", store.RemoveTab(ctx, id, idx))
	})
}

// Selected collection

func (m Model) openAllCmd() tea.Cmd {
	b := m.bulk
	return m.run(func(ctx context.Context) tea.Msg {
		n, err := b.OpenAll(ctx)
		msg := outcome(fmt.Sprintf("Opened %d tabs", n), err)
		msg.live = true
		return msg
	})
}

func (m Model) openWindowCmd() tea.Cmd {
	return m.hostCmd("Opened new window", true, func(ctx context.Context) error {
		_, err := m.bulk.OpenAllInNewWindow(ctx)
		return err
	})
}

func (m *Model) confirmRemoveAll() {
	c, ok := m.selectedCollection()
	if !ok {
		m.setError(collection.ErrNoSelection)
		return
	}
	b := m.bulk
	m.modal = newConfirm(
		fmt.Sprintf("Remove all tabs from %q?", c.Name),
		fmt.Sprintf("%d stored tabs are removed.", len(c.Tabs)),
		func() tea.Cmd {
			return m.run(func(ctx context.Context) tea.Msg {
				return outcome("Removed all tabs", b.RemoveAll(ctx))
			})
		})
}

// Live tabs

func (m Model) closeTabCmd(id int) tea.Cmd {
	return m.hostCmd("Tab closed", true, func(ctx context.Context) error {
		return m.bulk.CloseTab(ctx, id)
	})
}

func (m *Model) confirmCloseWindow(id, ordinal int) {
	m.modal = newConfirm(
		fmt.Sprintf("Close window %d?", ordinal),
		"All of its tabs are closed.",
		func() tea.Cmd {
			return m.hostCmd("Window closed", true, func(ctx context.Context) error {
				return m.bulk.CloseWindow(ctx, id)
			})
		})
}

func (m Model) hibernateCmd(windowID, ordinal int) tea.Cmd {
	b := m.bulk
	return m.run(func(ctx context.Context) tea.Msg {
		id, err := b.Hibernate(ctx, windowID, bulk.HibernateLabel(ordinal, windowID))
		msg := outcome("Window hibernated", err)
		msg.live = true
		if id >= 0 {
			msg.selectID = id
		}
		return msg
	})
}

func (m Model) sortWindowCmd(windowID int) tea.Cmd {
	b := m.bulk
	return m.run(func(ctx context.Context) tea.Msg {
		moved, err := b.SortWindow(ctx, windowID)
		text := "Window already sorted"
		if moved {
			text = "Window sorted by domain"
		}
		msg := outcome(text, err)
		msg.live = true
		return msg
	})
}

func (m Model) copyURLCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(url); err != nil {
			return outcome("", fmt.Errorf("copy url: %w", err))
		}
		return outcome("Copied "+truncate(url, 60), nil)
	}
}

// Import and export

func (m *Model) promptExport() {
	store := m.store
	m.modal = newPrompt("Export collections to file", defaultExportPath, func(path string) tea.Cmd {
		return func() tea.Msg {
			var buf bytes.Buffer
			if err := collection.Encode(&buf, store.Groups()); err != nil {
				return outcome("", err)
			}
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return outcome("", fmt.Errorf("write export: %w", err))
			}
			return outcome("Exported to "+path, nil)
		}
	})
}

// promptImport asks for a file, validates it, then asks how to merge it and
// confirms before anything changes.
func (m *Model) promptImport() {
	m.modal = newPrompt("Import collections from file", defaultExportPath, func(path string) tea.Cmd {
		return func() tea.Msg {
			raw, err := os.ReadFile(path)
			if err != nil {
				return outcome("", fmt.Errorf("read import: %w", err))
			}
			groups, err := collection.DecodeBytes(raw)
			if err != nil {
				return outcome("", err)
			}
			return modalMsg{modal: m.importChoice(path, groups)}
		}
	})
}

func (m Model) importChoice(path string, groups []collection.Group) Modal {
	confirm := func(mode collection.ImportMode, verb, body string) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg {
				return modalMsg{modal: newConfirm(
					fmt.Sprintf("%s collections from %s?", verb, path),
					body,
					func() tea.Cmd { return m.importCmd(groups, mode) },
				)}
			}
		}
	}
	summary := fmt.Sprintf("%d groups, %d collections, %d tabs",
		len(groups), collection.CountCollections(groups), collection.CountTabs(groups))
	return &choiceModal{
		title: "Import " + summary,
		choices: []choice{
			{key: "r", label: "Replace all collections", run: confirm(collection.ImportReplace, "Replace", "Every existing group and collection is removed.")},
			{key: "a", label: "Append to existing collections", run: confirm(collection.ImportAppend, "Append", "Imported collections get new ids.")},
		},
	}
}

func (m Model) importCmd(groups []collection.Group, mode collection.ImportMode) tea.Cmd {
	store := m.store
	return m.run(func(ctx context.Context) tea.Msg {
		return outcome("Imported collections ("+mode.String()+")", store.Import(ctx, groups, mode))
	})
}
