package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tabshelf/internal/logtail"
)

// logLinesMsg carries the tail of the log file.
type logLinesMsg struct {
	entries []logtail.Entry
	err     error
}

// loadLogsCmd reads the tail of the application log in the background.
func (m Model) loadLogsCmd() tea.Cmd {
	path := m.logPath
	return func() tea.Msg {
		if path == "" {
			return logLinesMsg{}
		}
		lines, err := logtail.Read(path, logOverlayLines)
		if err != nil {
			return logLinesMsg{err: err}
		}
		return logLinesMsg{entries: logtail.ParseLines(lines)}
	}
}

// setLogLines colors entries by level and follows the tail when the view
// was already at the bottom.
func (m *Model) setLogLines(msg logLinesMsg) {
	styles := m.theme.Styles()
	follow := m.logViewport.AtBottom() || m.logViewport.TotalLineCount() == 0

	var b strings.Builder
	switch {
	case msg.err != nil:
		b.WriteString(styles.DangerText.Render("read log: " + msg.err.Error()))
	case m.logPath == "":
		b.WriteString(styles.MutedText.Render("Logging to a file is disabled."))
	case len(msg.entries) == 0:
		b.WriteString(styles.MutedText.Render("No log entries yet."))
	}
	for i, e := range msg.entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(levelStyle(styles, e.Level).Render(e.String()))
	}
	m.logViewport.SetContent(b.String())
	if follow {
		m.logViewport.GotoBottom()
	}
}

func levelStyle(styles Styles, level string) lipgloss.Style {
	switch level {
	case "ERROR", "FATAL", "PANIC":
		return styles.DangerText
	case "WARN", "WARNING":
		return styles.WarningText
	case "DEBUG", "TRACE":
		return styles.FaintText
	case "":
		return styles.MutedText
	}
	return styles.Text
}

// renderLogs renders the log overlay.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	bg := newPaint(m.theme.FocusBg)
	title := "Log"
	if m.logPath != "" {
		title = "Log " + shortenPath(m.logPath, max(m.width/2, 10))
	}
	box := m.renderTitledBox(title, strings.Split(m.logViewport.View(), "\n"),
		rect{w: m.width, h: max(m.height-1, 3)}, m.focus)
	status := fmt.Sprintf("%d lines  %3.f%%  L/esc close", m.logViewport.TotalLineCount(), m.logViewport.ScrollPercent()*100)
	return box + "\n" + bg.line(bg.text(status, styles.FaintText), m.width)
}
