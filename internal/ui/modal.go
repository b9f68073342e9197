package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// promptModal asks for one line of text. Empty input is treated as a
// decline.
type promptModal struct {
	title    string
	input    textinput.Model
	onSubmit func(string) tea.Cmd
}

func newPrompt(title, value string, onSubmit func(string) tea.Cmd) *promptModal {
	in := textinput.New()
	in.Prompt = "› "
	in.CharLimit = 256
	in.SetValue(value)
	in.CursorEnd()
	in.Focus()
	return &promptModal{title: title, input: in, onSubmit: onSubmit}
}

func (p *promptModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			return p, nil, true
		case "enter":
			value := strings.TrimSpace(p.input.Value())
			if value == "" {
				return p, nil, true
			}
			return p, p.onSubmit(value), true
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd, false
}

func (p *promptModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	p.input.Width = max(min(width-16, 60), 10)
	body := styles.Text.Bold(true).Render(p.title) + "\n\n" +
		p.input.View() + "\n\n" +
		styles.FaintText.Render("enter confirm · esc cancel")
	return placeModal(theme, width, height, body)
}

// confirmModal asks a yes/no question. Declining runs nothing.
type confirmModal struct {
	title     string
	body      string
	onConfirm func() tea.Cmd
}

func newConfirm(title, body string, onConfirm func() tea.Cmd) *confirmModal {
	return &confirmModal{title: title, body: body, onConfirm: onConfirm}
}

func (c *confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(km, keys.Confirm):
		return c, c.onConfirm(), true
	case key.Matches(km, keys.Decline):
		return c, nil, true
	}
	return c, nil, false
}

func (c *confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	body := styles.WarningText.Bold(true).Render(c.title)
	if c.body != "" {
		body += "\n\n" + styles.Text.Render(c.body)
	}
	body += "\n\n" + styles.FaintText.Render("y confirm · n/esc cancel")
	return placeModal(theme, width, height, body)
}

// choice is one option of a choiceModal.
type choice struct {
	key   string
	label string
	run   func() tea.Cmd
}

// choiceModal offers a few single-key options. esc declines.
type choiceModal struct {
	title   string
	choices []choice
}

func (c *choiceModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	if km.String() == "esc" {
		return c, nil, true
	}
	for _, ch := range c.choices {
		if km.String() == ch.key {
			return c, ch.run(), true
		}
	}
	return c, nil, false
}

func (c *choiceModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(c.title))
	b.WriteString("\n\n")
	for _, ch := range c.choices {
		b.WriteString(styles.WarningText.Render(ch.key))
		b.WriteString("  ")
		b.WriteString(styles.Text.Render(ch.label))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("esc cancel"))
	return placeModal(theme, width, height, b.String())
}

func placeModal(theme Theme, width, height int, body string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(max(min(width-8, 70), 20)).
		Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
