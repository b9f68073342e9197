package reconcile

import (
	"errors"
	"strings"

	"github.com/five82/tabshelf/internal/drag"
)

var (
	// ErrNoTarget is returned when the drop landed on nothing droppable.
	ErrNoTarget = errors.New("no drop target")
	// ErrNoDrag is returned when no usable drag session exists.
	ErrNoDrag = errors.New("no dragged element")
	// ErrNoTabData is returned when the dragged tab's data never arrived.
	ErrNoTabData = errors.New("dragged tab data not available")
	// ErrInvalidCombination is returned for drag/target pairs no rule accepts.
	ErrInvalidCombination = errors.New("invalid drag type or target combination")
)

// Sibling is one entry of the visual collection list a collection is
// dropped into.
type Sibling struct {
	CollectionID int
	Box          drag.Box
}

// GridHit locates the pointer inside a window group's card grid.
type GridHit struct {
	Container drag.Rect
	Cell      drag.Cell
	X, Y      int
	Count     int
}

// Target is the resolved drop target: the nearest of window group,
// collection card (never the dragged one), collection group and content
// panel above the pointer.
type Target struct {
	Kind drag.TargetKind

	// CollectionID names the collection card dropped on.
	CollectionID int
	// GroupIdx is the explicit or enclosing group, -1 when unknown.
	GroupIdx int
	// Siblings and PointerY describe the destination list for rule 1.
	Siblings []Sibling
	PointerY int

	// WindowID names the window group dropped on.
	WindowID int
	// CardIndex is the card under the pointer, -1 for none. CardTabID is
	// that card's live tab id when it is a live card.
	CardIndex int
	CardTabID int
	Grid      *GridHit
}

// NoCard returns t with no card under the pointer.
func (t Target) NoCard() Target {
	t.CardIndex = -1
	t.CardTabID = 0
	return t
}

// InsertBefore returns the sibling collection that dragged should land
// before, or -1 to append to the group.
func (t Target) InsertBefore(dragged int) int {
	boxes := make([]drag.Box, len(t.Siblings))
	for i, sib := range t.Siblings {
		boxes[i] = sib.Box
		boxes[i].Dragging = sib.CollectionID == dragged
	}
	if i := drag.AfterElement(boxes, t.PointerY); i >= 0 {
		return t.Siblings[i].CollectionID
	}
	return -1
}

// Drop is one release of the pointer.
type Drop struct {
	// Session is the drag that ended with this release, already taken off
	// the tracker.
	Session drag.Session
	Target  Target
	// Source is the transfer's source tag; empty uses the session's.
	Source  drag.Source
	Shift   bool
}

// Render is a set of panes to redraw.
type Render uint8

const (
	RenderCollections Render = 1 << iota
	RenderContent
	RenderLive
	RenderRestoreScroll
)

// Has reports whether every pane in o is in r.
func (r Render) Has(o Render) bool {
	return r&o == o
}

func (r Render) String() string {
	var parts []string
	for _, p := range []struct {
		flag Render
		name string
	}{
		{RenderCollections, "collections"},
		{RenderContent, "content"},
		{RenderLive, "live"},
		{RenderRestoreScroll, "restore-scroll"},
	} {
		if r.Has(p.flag) {
			parts = append(parts, p.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Result reports what a drop did. Rule is 0 when a guard stopped the drop.
// Err may be set alongside Mutated when a host call failed after the store
// was already changed.
type Result struct {
	Rule         int
	Mutated      bool
	Render       Render
	ScrollOffset int
	Session      drag.Session
	Err          error
}
