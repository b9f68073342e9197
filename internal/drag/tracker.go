package drag

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/five82/tabshelf/internal/collection"
	"github.com/five82/tabshelf/internal/host"
	"github.com/five82/tabshelf/internal/logging"
	"pkt.systems/pslog"
)

// ErrStaleOrigin is returned when the pressed element no longer matches the
// collection store.
var ErrStaleOrigin = errors.New("dragged element is out of date")

// Catalog is the read side of the collection store used at drag start.
type Catalog interface {
	Selected() (int, bool)
	Find(id int) (groupIdx, pos int, ok bool)
	IDAt(groupIdx, pos int) (int, bool)
	TabAt(id, index int) (collection.StoredTab, error)
}

// TabGetter fetches one live tab.
type TabGetter interface {
	GetTab(ctx context.Context, id int) (host.LiveTab, error)
}

// Tracker owns the single drag session.
type Tracker struct {
	mu     sync.Mutex
	cur    Session
	serial uint64
	log    pslog.Logger
}

// NewTracker returns a Tracker with no drag in flight.
func NewTracker(logger pslog.Logger) *Tracker {
	return &Tracker{cur: emptySession(), log: logging.OrDiscard(logger)}
}

// Begin resets the session and classifies origin. A live tab card starts a
// session without TabData; the caller runs Fetch with the returned Serial.
// An origin matching nothing leaves the session empty without error.
func (t *Tracker) Begin(o Origin, catalog Catalog, liveScroll int) (Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.serial++
	s := emptySession()
	s.Serial = t.serial
	s.Element = o.Element
	s.ScrollOffset = liveScroll
	t.cur = emptySession()
	t.cur.Serial = t.serial

	switch {
	case o.Collection:
		id, ok := catalog.IDAt(o.GroupIdx, o.Pos)
		if !ok {
			return t.cur, fmt.Errorf("collection card %d-%d: %w", o.GroupIdx, o.Pos, ErrStaleOrigin)
		}
		s.Kind = KindCollection
		s.Source = SourceCollectionsPanel
		s.GroupID, s.Pos, s.CollectionID = o.GroupIdx, o.Pos, id

	case o.Tab && o.Pane == PaneLive:
		s.Kind = KindTabCard
		s.Source = SourceLiveTab
		s.TabID = o.TabID
		s.WindowID = o.WindowID
		s.CardIndex = o.TabIndex

	case o.Tab && o.Pane == PaneContent:
		id, ok := catalog.Selected()
		if !ok {
			return t.cur, collection.ErrNoSelection
		}
		gi, pos, ok := catalog.Find(id)
		if !ok {
			return t.cur, collection.ErrNoSelection
		}
		tab, err := catalog.TabAt(id, o.TabIndex)
		if err != nil {
			return t.cur, fmt.Errorf("stored tab %d: %w", o.TabIndex, err)
		}
		s.Kind = KindTabCard
		s.Source = SourceContentTab
		s.GroupID, s.Pos, s.CollectionID = gi, pos, id
		s.CardIndex = o.TabIndex
		s.TabData = &TabData{Stored: tab}

	case o.Window:
		s.Kind = KindWindowGroup
		s.Source = SourceWindow
		s.WindowID = o.WindowID
		s.Payload = WindowPayload(o.WindowID)

	default:
		t.log.Debug("drag start ignored", "element", o.Element, "pane", o.Pane.String())
		return t.cur, nil
	}

	t.cur = s
	t.log.Debug("drag start", "kind", s.Kind.String(), "source", string(s.Source), "element", s.Element)
	return s, nil
}

// Fetch loads the authoritative snapshot of live tab id into the session
// started with serial. Results for a superseded session are dropped. On
// error TabData stays nil.
func (t *Tracker) Fetch(ctx context.Context, tabs TabGetter, serial uint64, id int) error {
	tab, err := tabs.GetTab(ctx, id)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.log.Warn("drag tab fetch failed", "tab", id, "err", err)
		return err
	}
	if t.cur.Serial != serial || t.cur.Kind != KindTabCard || t.cur.TabID != id {
		t.log.Debug("drag tab fetch superseded", "tab", id)
		return nil
	}
	t.cur.TabData = &TabData{Live: &tab, Stored: tab.Stored()}
	t.cur.WindowID = tab.WindowID
	return nil
}

// MarkDragging flags the session's element as being dragged. Marking is
// deferred until the pointer first moves.
func (t *Tracker) MarkDragging() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cur.Active() {
		t.cur.Dragging = true
	}
}

// Current returns a copy of the session.
func (t *Tracker) Current() Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cur
}

// End clears the session and returns what was in flight so the caller can
// clear the element's dragging mark. The element may already be gone.
func (t *Tracker) End() Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	ended := t.cur
	t.cur = emptySession()
	t.cur.Serial = t.serial
	return ended
}
