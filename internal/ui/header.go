package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tabshelf/internal/collection"
	"github.com/five82/tabshelf/internal/drag"
)

// renderHeader renders the top bar with store and browser state.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := newPaint(m.theme.Surface)
	compact := m.width < 100

	parts := []string{bg.text("tabshelf", styles.Logo)}

	switch {
	case !m.snapshot.HasTabs && m.snapshot.LastError == nil:
		parts = append(parts, bg.text("Connecting to browser...", styles.WarningText.Bold(true)))
	case m.snapshot.IsOffline():
		parts = append(parts, bg.text("● "+classifyConnectionError(m.snapshot.LastError), styles.DangerText))
	default:
		parts = append(parts, bg.text("● ON", styles.SuccessText))
	}
	if m.source != "" {
		parts = append(parts, bg.text(m.source, styles.MutedText))
	}

	parts = append(parts,
		bg.field("Collections:", fmt.Sprintf("%d", collection.CountCollections(m.groups)), styles),
		bg.field("Live:", fmt.Sprintf("%d tabs / %d windows", len(m.snapshot.Tabs), len(m.snapshot.Windows())), styles),
	)

	if ts := formatTimestamp(m.snapshot.LastUpdated); ts != "" {
		parts = append(parts, bg.text(ts, styles.MutedText))
	}

	if err := m.snapshot.LastError; err != nil {
		maxErr := 60
		if compact {
			maxErr = 30
		}
		label := "ERROR"
		if !m.snapshot.IsOffline() {
			label = "RETRY"
		}
		parts = append(parts,
			bg.text(label, styles.DangerText.Bold(true))+bg.blank(1)+
				bg.text(truncate(err.Error(), maxErr), styles.DangerText))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		MaxHeight(headerRows).
		Render(bg.join(parts))
}

// formatTimestamp formats the last update time with relative indicator.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	since := time.Since(t)
	s := t.Format("15:04:05")
	switch {
	case since < time.Minute:
		s += " (now)"
	case since < time.Hour:
		s += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	}
	return s
}

// classifyConnectionError returns a short description of the connection error.
func classifyConnectionError(err error) string {
	if err == nil {
		return "OFFLINE"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the status line: the last action's outcome, the
// drag in flight, or key hints for the focused pane.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := newPaint(m.theme.Surface)
	bar := lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Width(m.width).
		MaxHeight(statusRows)

	if s := m.tracker.Current(); m.press != nil && m.press.moved && s.Active() {
		text := "Dragging " + s.Kind.String()
		style := styles.InfoText
		if m.hoverTarget.Kind != drag.TargetNone {
			text += " → " + m.hoverTarget.Kind.String()
			if m.hoverOK {
				style = styles.SuccessText
			} else {
				style = styles.DangerText
			}
		}
		if s.Kind == drag.KindTabCard && s.Source == drag.SourceLiveTab {
			text += "  (shift: close after saving)"
		}
		return bar.Render(bg.text(truncate(text, m.width-2), style))
	}

	if m.status != "" {
		style := styles.SuccessText
		if m.statusErr {
			style = styles.DangerText
		}
		return bar.Render(bg.text(truncate(m.status, m.width-2), style))
	}

	type cmd struct{ key, desc string }
	commands := []cmd{{"tab", "Focus"}, {"j/k", "Navigate"}}
	switch m.focus {
	case drag.PaneCollections:
		commands = append(commands, cmd{"a/A", "Add"}, cmd{"r", "Rename"}, cmd{"d", "Delete"}, cmd{"J/K", "Move group"})
	case drag.PaneContent:
		commands = append(commands, cmd{"enter", "Open"}, cmd{"d", "Remove"}, cmd{"y", "Copy URL"})
	case drag.PaneLive:
		commands = append(commands, cmd{"enter", "Activate"}, cmd{"x", "Close"}, cmd{"z", "Hibernate"}, cmd{"s", "Sort"})
	}
	commands = append(commands, cmd{"o/O", "Open all"}, cmd{"L", "Logs"}, cmd{"?", "More"})

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments, bg.hint(c.key, c.desc, styles.AccentText, styles.MutedText))
	}
	segments = append(segments, bg.hint("T", m.theme.Name, styles.AccentText, styles.FaintText))
	return bar.Render(bg.join(segments))
}
