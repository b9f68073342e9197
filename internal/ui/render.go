package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tabshelf/internal/bulk"
	"github.com/five82/tabshelf/internal/drag"
	"github.com/five82/tabshelf/internal/host"
)

// renderMain renders the header, the three panes and the status line.
func (m Model) renderMain() string {
	f := m.frame()
	l := f.layout
	if l.collections.h < 3 || l.content.w < 4 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.theme.Styles().MutedText.Render("Terminal too small"))
	}
	s := m.tracker.Current()

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderTitledBox(m.collectionsTitle(), m.collectionLines(f, s), l.collections, drag.PaneCollections),
		m.renderTitledBox(m.contentTitle(), m.contentLines(f, s), l.content, drag.PaneContent),
		m.renderTitledBox(m.liveTitle(), m.liveLines(f, s), l.live, drag.PaneLive),
	)
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), panes, m.renderCommandBar())
}

func (m Model) collectionsTitle() string {
	return fmt.Sprintf("Collections (%d)", len(m.groups))
}

func (m Model) contentTitle() string {
	if c, ok := m.selectedCollection(); ok {
		return fmt.Sprintf("%s (%d)", c.Name, len(c.Tabs))
	}
	return "Contents"
}

func (m Model) liveTitle() string {
	return fmt.Sprintf("Live tabs (%d)", len(m.snapshot.Tabs))
}

// paneBg is the background of pane p's body.
func (m Model) paneBg(p drag.Pane) string {
	if m.focus == p {
		return m.theme.FocusBg
	}
	return m.theme.SurfaceAlt
}

// dropPane is the pane holding the hovered drop target.
func (m Model) dropPane() drag.Pane {
	switch m.hoverTarget.Kind {
	case drag.TargetCollection, drag.TargetCollectionGroup, drag.TargetCollectionsList:
		return drag.PaneCollections
	case drag.TargetContentPanel:
		return drag.PaneContent
	case drag.TargetWindowGroup:
		return drag.PaneLive
	}
	return drag.PaneNone
}

func (m Model) dropColor() string {
	if m.hoverOK {
		return m.theme.Success
	}
	return m.theme.Danger
}

// renderTitledBox renders lines in a box with the title embedded in the top
// border: ┌─── Title ───┐. The focused pane gets the focus colors and the
// pane under a drag gets the drop color.
func (m Model) renderTitledBox(title string, lines []string, r rect, p drag.Pane) string {
	borderColorStr := m.theme.Border
	if m.focus == p {
		borderColorStr = m.theme.BorderFocus
	}
	if m.press != nil && m.press.moved && m.dropPane() == p {
		borderColorStr = m.dropColor()
	}
	bg := newPaint(m.paneBg(p))
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(r.w-2, 0)
	title = truncate(title, max(innerWidth-4, 1))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.text("┌", borderStyle) +
		bg.text(strings.Repeat("─", leftPad), borderStyle) +
		bg.text(" "+title+" ", titleStyle) +
		bg.text(strings.Repeat("─", rightPad), borderStyle) +
		bg.text("┐", borderStyle)
	bottomBorder := bg.text("└", borderStyle) +
		bg.text(strings.Repeat("─", innerWidth), borderStyle) +
		bg.text("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(bg.bg)
	boxHeight := max(r.h-2, 0)
	out := make([]string, 0, boxHeight+2)
	out = append(out, topBorder)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		out = append(out, bg.text("│", borderStyle)+contentStyle.Render(line)+bg.text("│", borderStyle))
	}
	out = append(out, bottomBorder)
	return strings.Join(out, "\n")
}

// visible cuts the scrolled window of pane p out of lines.
func (m Model) visible(f frame, p drag.Pane, lines []string) []string {
	start := min(m.scroll[p], len(lines))
	end := min(start+f.layout.bodyHeight(), len(lines))
	return lines[start:end]
}

// collectionLines renders the collections pane. A collection being dragged
// over a group is previewed at its drop position.
func (m Model) collectionLines(f frame, s drag.Session) []string {
	styles := m.theme.Styles()
	bg := newPaint(m.paneBg(drag.PaneCollections))
	width := f.layout.collections.inner().w
	sel, _ := m.selectedID()

	rows := f.rows
	if s.Kind == drag.KindCollection && s.Dragging {
		t := m.hoverTarget
		dest, before := -1, -1
		if t.Kind == drag.TargetCollectionGroup || t.Kind == drag.TargetCollectionsList {
			dest, before = t.GroupIdx, t.InsertBefore(s.CollectionID)
		}
		rows = previewRows(m.groups, s.CollectionID, dest, before)
	}
	if len(rows) == 0 {
		return []string{bg.text(fit("No groups. Press A to add one.", width), styles.MutedText)}
	}

	lines := make([]string, 0, len(rows))
	for i, r := range rows {
		var text string
		style := styles.Text
		switch r.kind {
		case rowGroup:
			text = fmt.Sprintf("▾ %s (%d)", r.name, r.tabs)
			style = styles.AccentText.Bold(true)
		case rowEmptyGroup:
			text = "    (empty)"
			style = styles.FaintText
		case rowCollection:
			marker := "  "
			if r.id == sel {
				marker = "● "
				style = styles.AccentText
			}
			text = fmt.Sprintf("  %s%s · %d", marker, r.name, r.tabs)
		}
		text = fit(text, width)

		switch {
		case r.dragging:
			lines = append(lines, bg.text(text, styles.FaintText.Italic(true)))
		case m.isDropRow(r):
			lines = append(lines, styles.Badge(text, m.dropColor()))
		case m.focus == drag.PaneCollections && i == m.cursor[drag.PaneCollections] && !s.Dragging:
			lines = append(lines, styles.Selected.Render(text))
		default:
			lines = append(lines, bg.text(text, style))
		}
	}
	return m.visible(f, drag.PaneCollections, lines)
}

func (m Model) isDropRow(r collectionRow) bool {
	if m.press == nil || !m.press.moved {
		return false
	}
	t := m.hoverTarget
	switch t.Kind {
	case drag.TargetCollection:
		return r.kind == rowCollection && r.id == t.CollectionID
	case drag.TargetCollectionGroup, drag.TargetCollectionsList:
		return r.kind == rowGroup && r.groupIdx == t.GroupIdx
	}
	return false
}

// contentLines renders the stored cards of the selected collection.
func (m Model) contentLines(f frame, s drag.Session) []string {
	styles := m.theme.Styles()
	bg := newPaint(m.paneBg(drag.PaneContent))
	width := f.layout.content.inner().w
	if !f.selected {
		return []string{bg.text(fit("Select a collection.", width), styles.MutedText)}
	}
	if len(f.stored) == 0 {
		return []string{bg.text(fit("No tabs. Drop live tabs here.", width), styles.MutedText)}
	}

	lines := make([]string, 0, len(f.stored))
	for i, t := range f.stored {
		domain := bulk.Domain(t.URL)
		title := t.Title
		if title == "" {
			title = t.URL
		}
		stripe := bg.stripe(m.theme.DomainColor(domain))
		body := fit(" "+title, max(width-len([]rune(domain))-3, 4))
		tail := fit(" "+domain, width-lipgloss.Width(body)-1)

		dragged := s.Dragging && s.Source == drag.SourceContentTab && s.CardIndex == i
		dropHere := m.press != nil && m.press.moved && m.hoverTarget.Kind == drag.TargetContentPanel && m.hoverTarget.CardIndex == i
		switch {
		case dragged:
			lines = append(lines, stripe+bg.text(body+tail, styles.FaintText.Italic(true)))
		case dropHere:
			lines = append(lines, stripe+styles.Badge(body+tail, m.dropColor()))
		case m.focus == drag.PaneContent && i == m.cursor[drag.PaneContent] && !s.Dragging:
			lines = append(lines, stripe+styles.Selected.Render(body+tail))
		default:
			lines = append(lines, stripe+bg.text(body, styles.Text)+bg.text(tail, styles.FaintText))
		}
	}
	return m.visible(f, drag.PaneContent, lines)
}

// liveLines renders one window group per window: a header line, then a grid
// of tab cards two lines high, then a spacer.
func (m Model) liveLines(f frame, s drag.Session) []string {
	styles := m.theme.Styles()
	bg := newPaint(m.paneBg(drag.PaneLive))
	width := f.layout.live.inner().w
	if len(f.sections) == 0 {
		text := "No live tabs."
		if m.snapshot.IsOffline() {
			text = "Browser unreachable."
		}
		return []string{bg.text(fit(text, width), styles.MutedText)}
	}

	dragging := m.press != nil && m.press.moved
	cursorSection, cursorIdx, _ := f.liveItem(m.cursor[drag.PaneLive])
	cardText := liveCardWidth - liveCardGap - 1

	var lines []string
	for si, sec := range f.sections {
		header := fit(fmt.Sprintf("%s · %d tabs", bulk.HibernateLabel(sec.ordinal, sec.id), len(sec.tabs)), width)
		switch {
		case dragging && s.Kind == drag.KindWindowGroup && s.WindowID == sec.id:
			lines = append(lines, bg.text(header, styles.FaintText.Italic(true)))
		case dragging && m.hoverTarget.Kind == drag.TargetWindowGroup && m.hoverTarget.WindowID == sec.id:
			lines = append(lines, styles.Badge(header, m.dropColor()))
		default:
			lines = append(lines, bg.text(header, styles.InfoText.Bold(true)))
		}

		for start := 0; start < max(len(sec.tabs), 1); start += f.perRow {
			var top, bottom strings.Builder
			for i := start; i < min(start+f.perRow, len(sec.tabs)); i++ {
				t := sec.tabs[i]
				m.renderLiveCard(&top, &bottom, t, cardText, styles, bg, liveCardState{
					cursor:  m.focus == drag.PaneLive && si == cursorSection && i == cursorIdx && !dragging,
					dragged: dragging && s.Source == drag.SourceLiveTab && s.TabID == t.ID,
					drop:    dragging && m.hoverTarget.Kind == drag.TargetWindowGroup && m.hoverTarget.CardTabID == t.ID,
				})
			}
			lines = append(lines, top.String(), bottom.String())
		}
		lines = append(lines, "")
	}
	return m.visible(f, drag.PaneLive, lines)
}

type liveCardState struct {
	cursor  bool
	dragged bool
	drop    bool
}

// renderLiveCard writes one card: a color stripe and title on top, the
// domain below.
func (m Model) renderLiveCard(top, bottom *strings.Builder, t host.LiveTab, width int, styles Styles, bg paint, st liveCardState) {
	domain := bulk.Domain(t.URL)
	color := m.theme.DomainColor(domain)
	stripe := bg.stripe(color)

	title := t.Title
	if title == "" {
		title = t.URL
	}
	if t.Active {
		title = "★ " + title
	}
	title = fit(title, width)
	sub := fit(domain, width)

	switch {
	case st.dragged:
		top.WriteString(stripe + bg.text(title, styles.FaintText.Italic(true)))
		bottom.WriteString(stripe + bg.text(sub, styles.FaintText))
	case st.drop:
		top.WriteString(stripe + styles.Badge(title, m.dropColor()))
		bottom.WriteString(stripe + bg.text(sub, styles.FaintText))
	case st.cursor:
		top.WriteString(stripe + styles.Selected.Render(title))
		bottom.WriteString(stripe + styles.Selected.Render(sub))
	default:
		top.WriteString(stripe + bg.text(title, styles.Text))
		bottom.WriteString(stripe + bg.text(sub, styles.MutedText))
	}
	top.WriteString(bg.blank(liveCardGap))
	bottom.WriteString(bg.blank(liveCardGap))
}
