package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// paint draws text onto one background: a pane body, the header or the
// command bar. lipgloss resets every attribute after a rendered segment, so
// text and the blanks between words are rendered as separate runs that each
// carry the background.
type paint struct {
	bg   lipgloss.Color
	cell lipgloss.Style
}

func newPaint(color string) paint {
	bg := lipgloss.Color(color)
	return paint{bg: bg, cell: lipgloss.NewStyle().Background(bg)}
}

// text renders s in style on the background, including its spaces.
func (p paint) text(s string, style lipgloss.Style) string {
	if s == "" {
		return ""
	}
	fg := style.Background(p.bg)
	var b strings.Builder
	start := 0
	inSpace := s[0] == ' '
	for i := 1; i <= len(s); i++ {
		if i < len(s) && (s[i] == ' ') == inSpace {
			continue
		}
		run := s[start:i]
		if inSpace {
			b.WriteString(p.cell.Render(run))
		} else {
			b.WriteString(fg.Render(run))
		}
		if i < len(s) {
			start, inSpace = i, s[i] == ' '
		}
	}
	return b.String()
}

// blank returns n background cells.
func (p paint) blank(n int) string {
	if n <= 0 {
		return ""
	}
	return p.cell.Render(strings.Repeat(" ", n))
}

// line pads rendered content with background out to width.
func (p paint) line(content string, width int) string {
	return p.cell.Width(width).Render(content)
}

// stripe is the one-cell color bar at the left edge of a tab card.
func (p paint) stripe(color string) string {
	return p.text("▌", lipgloss.NewStyle().Foreground(lipgloss.Color(color)))
}

// field renders a "label value" pair for the header.
func (p paint) field(label, value string, styles Styles) string {
	return p.text(label, styles.MutedText) + p.blank(1) + p.text(value, styles.Text)
}

// hint renders a "key:desc" pair for the command bar.
func (p paint) hint(key, desc string, keyStyle, descStyle lipgloss.Style) string {
	return p.text(key, keyStyle) + p.text(":", lipgloss.NewStyle()) + p.text(desc, descStyle)
}

// join lays out header and command bar segments two cells apart.
func (p paint) join(parts []string) string {
	return strings.Join(parts, p.blank(2))
}
