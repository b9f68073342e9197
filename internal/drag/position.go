package drag

import "math"

// CanDrop reports whether dropping s on a target of kind k would be accepted.
// It drives highlighting only; the reconciler decides for real.
func CanDrop(s Session, k TargetKind) bool {
	switch s.Kind {
	case KindCollection:
		return s.Source == SourceCollectionsPanel &&
			(k == TargetCollection || k == TargetCollectionGroup || k == TargetCollectionsList)
	case KindTabCard:
		switch k {
		case TargetCollection, TargetContentPanel, TargetWindowGroup:
			return s.Source == SourceLiveTab || s.Source == SourceContentTab
		}
	case KindWindowGroup:
		return k == TargetCollection || k == TargetContentPanel
	}
	return false
}

// Box is the vertical extent of a sibling in a single-column list.
type Box struct {
	Top      int
	Height   int
	Dragging bool
}

// AfterElement returns the index of the sibling the dragged item should be
// inserted before, or -1 to append. Siblings are scanned in order; a
// non-dragging sibling wins when the pointer sits below its top and either
// within its upper half or closer to its top than the current best.
func AfterElement(boxes []Box, y int) int {
	best := -1
	bestOffset := math.Inf(1)
	for i, b := range boxes {
		if b.Dragging {
			continue
		}
		offset := float64(y - b.Top)
		if offset > 0 && (offset < float64(b.Height)/2 || offset < bestOffset) {
			best, bestOffset = i, offset
		}
	}
	return best
}

// Rect is a container's position and width in the same units as the pointer.
type Rect struct {
	Left  int
	Top   int
	Width int
}

// Cell is the footprint of one grid card including its gap.
type Cell struct {
	Width  int
	Height int
}

// GridIndex maps a pointer position inside a grid container to a linear
// card index clamped to [0, count].
func GridIndex(container Rect, x, y int, cell Cell, count int) int {
	if count <= 0 || cell.Width <= 0 || cell.Height <= 0 {
		return 0
	}
	row := int(math.Floor(float64(y-container.Top) / float64(cell.Height)))
	col := int(math.Floor(float64(x-container.Left) / float64(cell.Width)))
	perRow := container.Width / cell.Width
	idx := row*perRow + col
	return max(0, min(idx, count))
}
