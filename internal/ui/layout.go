package ui

import "time"

// Pane geometry, in terminal cells.
const (
	// minPaneWidth is the narrowest a side pane may be dragged to.
	minPaneWidth = 20
	// minContentWidth keeps the middle pane usable on small terminals.
	minContentWidth = 16

	headerRows = 1
	statusRows = 1

	// Live tab cards: cellWidth includes the gap to the next card.
	liveCardWidth  = 24
	liveCardGap    = 2
	liveCardHeight = 2
)

// Timing constants.
const (
	// DefaultUIInterval is how often the UI re-reads the live snapshot.
	DefaultUIInterval = time.Second

	// hostCallTimeout bounds every host call started from the UI.
	hostCallTimeout = 5 * time.Second

	// logOverlayLines is how much of the log file the overlay loads.
	logOverlayLines = 400
)

// rect is a screen rectangle.
type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// inner is r without its border.
func (r rect) inner() rect {
	return rect{x: r.x + 1, y: r.y + 1, w: max(r.w-2, 0), h: max(r.h-2, 0)}
}

// paneLayout places the three pane boxes side by side between the header
// and the status line.
type paneLayout struct {
	width, height int
	collections   rect
	content       rect
	live          rect
}

// clampPaneWidth keeps a side pane between minPaneWidth and half the screen.
func clampPaneWidth(w, total int) int {
	upper := total / 2
	if upper < minPaneWidth {
		upper = minPaneWidth
	}
	return min(max(w, minPaneWidth), upper)
}

func defaultLeftWidth(total int) int  { return total / 5 }
func defaultRightWidth(total int) int { return total * 2 / 5 }

// computeLayout returns the pane boxes for a width x height screen. Zero
// widths use the defaults.
func computeLayout(width, height, left, right int) paneLayout {
	if left <= 0 {
		left = defaultLeftWidth(width)
	}
	if right <= 0 {
		right = defaultRightWidth(width)
	}
	left = clampPaneWidth(left, width)
	right = clampPaneWidth(right, width)
	if deficit := minContentWidth - (width - left - right); deficit > 0 {
		take := min(deficit, max(right-minPaneWidth, 0))
		right -= take
		deficit -= take
		left -= min(deficit, max(left-minPaneWidth, 0))
	}

	top := headerRows
	h := max(height-headerRows-statusRows, 0)
	mid := max(width-left-right, 0)
	return paneLayout{
		width:       width,
		height:      height,
		collections: rect{x: 0, y: top, w: left, h: h},
		content:     rect{x: left, y: top, w: mid, h: h},
		live:        rect{x: left + mid, y: top, w: width - left - mid, h: h},
	}
}

// dividerAt reports which divider, if any, sits at x: 1 between collections
// and content, 2 between content and live. The two border columns that meet
// at a divider both count.
func (l paneLayout) dividerAt(x, y int) int {
	if y < l.collections.y || y >= l.collections.y+l.collections.h {
		return 0
	}
	switch x {
	case l.content.x - 1, l.content.x:
		return 1
	case l.live.x - 1, l.live.x:
		return 2
	}
	return 0
}

// bodyHeight is the number of content lines inside a pane box.
func (l paneLayout) bodyHeight() int {
	return l.collections.inner().h
}
