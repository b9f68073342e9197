package drag

import (
	"fmt"

	"github.com/five82/tabshelf/internal/collection"
	"github.com/five82/tabshelf/internal/host"
)

// Kind classifies the dragged element.
type Kind int

const (
	KindNone Kind = iota
	KindCollection
	KindWindowGroup
	KindTabCard
)

func (k Kind) String() string {
	switch k {
	case KindCollection:
		return "collection"
	case KindWindowGroup:
		return "window-group"
	case KindTabCard:
		return "tab-card"
	default:
		return "none"
	}
}

// Source tags where a drag started.
type Source string

const (
	SourceNone             Source = ""
	SourceCollectionsPanel Source = "collections-panel"
	SourceLiveTab          Source = "tabs-panel-tab"
	SourceContentTab       Source = "collection-content-tab"
	SourceWindow           Source = "tabs-panel"
)

// Pane identifies one of the three panes.
type Pane int

const (
	PaneNone Pane = iota
	PaneCollections
	PaneContent
	PaneLive
)

func (p Pane) String() string {
	switch p {
	case PaneCollections:
		return "collections"
	case PaneContent:
		return "content"
	case PaneLive:
		return "live"
	default:
		return "none"
	}
}

// TargetKind classifies a drop target.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetWindowGroup
	TargetCollection
	TargetCollectionGroup
	TargetCollectionsList
	TargetContentPanel
)

func (k TargetKind) String() string {
	switch k {
	case TargetWindowGroup:
		return "window-group"
	case TargetCollection:
		return "collection"
	case TargetCollectionGroup:
		return "collection-group"
	case TargetCollectionsList:
		return "collections-list"
	case TargetContentPanel:
		return "content-panel"
	default:
		return "none"
	}
}

// Element is an opaque handle to the rendered element being dragged.
type Element string

// Origin describes the element under the pointer at press time and the
// containers it sits in. Flags are checked in classification priority.
type Origin struct {
	Element Element
	Pane    Pane

	Collection bool
	GroupIdx   int
	Pos        int

	Tab      bool
	TabIndex int
	TabID    int

	Window   bool
	WindowID int
}

// TabData is the captured snapshot of a dragged tab card. Live is set for
// tabs from the live pane and carries host identity; Stored is always the
// host-independent copy.
type TabData struct {
	Live   *host.LiveTab
	Stored collection.StoredTab
}

// WindowPayload is the textual payload carried by window-group drags.
func WindowPayload(id int) string {
	return fmt.Sprintf("window:%d", id)
}

// Session is the drag in flight. Unset positions and ids are -1.
type Session struct {
	Kind    Kind
	Element Element
	Source  Source
	Payload string
	Serial  uint64

	GroupID      int
	Pos          int
	CollectionID int
	CardIndex    int

	WindowID int
	TabID    int
	TabData  *TabData

	ScrollOffset int
	Dragging     bool
}

// Active reports whether a drag is in flight.
func (s Session) Active() bool {
	return s.Kind != KindNone
}

func emptySession() Session {
	return Session{GroupID: -1, Pos: -1, CollectionID: -1, CardIndex: -1}
}
