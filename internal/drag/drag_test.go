package drag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/tabshelf/internal/blob"
	"github.com/five82/tabshelf/internal/collection"
	"github.com/five82/tabshelf/internal/host"
)

func newCatalog(t *testing.T) *collection.Store {
	t.Helper()
	ctx := context.Background()
	s := collection.NewStore(blob.NewMemory(), collection.DefaultKey, nil)
	require.NoError(t, s.Load(ctx))
	id, err := s.AddCollection(ctx, 0, "Work")
	require.NoError(t, err)
	require.NoError(t, s.AppendTabs(ctx, id, collection.StoredTab{Title: "A", URL: "http://a.test"}, collection.StoredTab{Title: "B", URL: "http://b.test"}))
	return s
}

func TestBeginClassifiesByPriority(t *testing.T) {
	cat := newCatalog(t)
	tr := NewTracker(nil)

	s, err := tr.Begin(Origin{Element: "c", Pane: PaneCollections, Collection: true, GroupIdx: 0, Pos: 0, Tab: true, Window: true}, cat, 0)
	require.NoError(t, err)
	assert.Equal(t, KindCollection, s.Kind)
	assert.Equal(t, SourceCollectionsPanel, s.Source)
	assert.Equal(t, 0, s.CollectionID)

	s, err = tr.Begin(Origin{Element: "t", Pane: PaneLive, Tab: true, TabID: 7, TabIndex: 2, Window: true, WindowID: 1}, cat, 12)
	require.NoError(t, err)
	assert.Equal(t, KindTabCard, s.Kind)
	assert.Equal(t, SourceLiveTab, s.Source)
	assert.Nil(t, s.TabData)
	assert.Equal(t, 12, s.ScrollOffset)

	s, err = tr.Begin(Origin{Element: "w", Pane: PaneLive, Window: true, WindowID: 3}, cat, 5)
	require.NoError(t, err)
	assert.Equal(t, KindWindowGroup, s.Kind)
	assert.Equal(t, SourceWindow, s.Source)
	assert.Equal(t, "window:3", s.Payload)
	assert.Equal(t, 5, s.ScrollOffset)

	s, err = tr.Begin(Origin{Element: "x", Pane: PaneContent}, cat, 0)
	require.NoError(t, err)
	assert.False(t, s.Active())
	assert.Equal(t, -1, s.GroupID)
}

func TestBeginContentTabNeedsSelection(t *testing.T) {
	cat := newCatalog(t)
	tr := NewTracker(nil)

	_, err := tr.Begin(Origin{Element: "s", Pane: PaneContent, Tab: true, TabIndex: 1}, cat, 0)
	require.ErrorIs(t, err, collection.ErrNoSelection)
	assert.False(t, tr.Current().Active())

	require.NoError(t, cat.Select(0))
	s, err := tr.Begin(Origin{Element: "s", Pane: PaneContent, Tab: true, TabIndex: 1}, cat, 0)
	require.NoError(t, err)
	assert.Equal(t, SourceContentTab, s.Source)
	require.NotNil(t, s.TabData)
	assert.Nil(t, s.TabData.Live)
	assert.Equal(t, "B", s.TabData.Stored.Title)
	assert.Equal(t, 1, s.CardIndex)
	assert.Equal(t, 0, s.GroupID)
	assert.Equal(t, 0, s.Pos)

	_, err = tr.Begin(Origin{Element: "s", Pane: PaneContent, Tab: true, TabIndex: 9}, cat, 0)
	assert.ErrorIs(t, err, collection.ErrTabIndex)
}

func TestBeginStaleCollectionCard(t *testing.T) {
	cat := newCatalog(t)
	tr := NewTracker(nil)
	_, err := tr.Begin(Origin{Element: "c", Pane: PaneCollections, Collection: true, GroupIdx: 0, Pos: 4}, cat, 0)
	assert.ErrorIs(t, err, ErrStaleOrigin)
	assert.False(t, tr.Current().Active())
}

func TestFetchFillsTabData(t *testing.T) {
	cat := newCatalog(t)
	mem := host.NewMemory()
	w := mem.AddWindow(host.LiveTab{Title: "X", URL: "http://x.test", FavIconURL: "http://x.test/icon.png"})
	tr := NewTracker(nil)

	s, err := tr.Begin(Origin{Element: "t", Pane: PaneLive, Tab: true, TabID: w.TabIDs[0]}, cat, 0)
	require.NoError(t, err)
	require.NoError(t, tr.Fetch(context.Background(), mem, s.Serial, w.TabIDs[0]))

	cur := tr.Current()
	require.NotNil(t, cur.TabData)
	require.NotNil(t, cur.TabData.Live)
	assert.Equal(t, w.ID, cur.WindowID)
	assert.Equal(t, collection.StoredTab{Title: "X", URL: "http://x.test", FavIconURL: "http://x.test/icon.png"}, cur.TabData.Stored)
}

func TestFetchFailureLeavesTabDataNil(t *testing.T) {
	cat := newCatalog(t)
	mem := host.NewMemory()
	w := mem.AddWindow(host.LiveTab{Title: "X", URL: "http://x.test"})
	mem.Fail("get tab", errors.New("host gone"))
	tr := NewTracker(nil)

	s, err := tr.Begin(Origin{Element: "t", Pane: PaneLive, Tab: true, TabID: w.TabIDs[0]}, cat, 0)
	require.NoError(t, err)
	err = tr.Fetch(context.Background(), mem, s.Serial, w.TabIDs[0])
	assert.True(t, host.IsCallFailure(err))
	assert.Nil(t, tr.Current().TabData)
}

func TestFetchIgnoresSupersededSession(t *testing.T) {
	cat := newCatalog(t)
	mem := host.NewMemory()
	w := mem.AddWindow(host.LiveTab{Title: "X", URL: "http://x.test"})
	tr := NewTracker(nil)

	first, err := tr.Begin(Origin{Element: "t", Pane: PaneLive, Tab: true, TabID: w.TabIDs[0]}, cat, 0)
	require.NoError(t, err)
	tr.End()
	_, err = tr.Begin(Origin{Element: "w", Pane: PaneLive, Window: true, WindowID: w.ID}, cat, 0)
	require.NoError(t, err)

	require.NoError(t, tr.Fetch(context.Background(), mem, first.Serial, w.TabIDs[0]))
	assert.Nil(t, tr.Current().TabData)
	assert.Equal(t, KindWindowGroup, tr.Current().Kind)
}

func TestEndResetsAndReturnsSession(t *testing.T) {
	cat := newCatalog(t)
	tr := NewTracker(nil)
	_, err := tr.Begin(Origin{Element: "w", Pane: PaneLive, Window: true, WindowID: 2}, cat, 0)
	require.NoError(t, err)
	tr.MarkDragging()

	ended := tr.End()
	assert.True(t, ended.Dragging)
	assert.Equal(t, Element("w"), ended.Element)
	assert.False(t, tr.Current().Active())
	assert.False(t, tr.Current().Dragging)

	tr.MarkDragging()
	assert.False(t, tr.Current().Dragging, "no mark without a drag")
}

func TestCanDrop(t *testing.T) {
	coll := Session{Kind: KindCollection, Source: SourceCollectionsPanel}
	live := Session{Kind: KindTabCard, Source: SourceLiveTab}
	stored := Session{Kind: KindTabCard, Source: SourceContentTab}
	win := Session{Kind: KindWindowGroup, Source: SourceWindow}

	tests := []struct {
		name string
		s    Session
		k    TargetKind
		want bool
	}{
		{"collection on group", coll, TargetCollectionGroup, true},
		{"collection on list", coll, TargetCollectionsList, true},
		{"collection on window", coll, TargetWindowGroup, false},
		{"live tab on collection", live, TargetCollection, true},
		{"live tab on window", live, TargetWindowGroup, true},
		{"stored tab on content", stored, TargetContentPanel, true},
		{"stored tab on group", stored, TargetCollectionGroup, false},
		{"window on collection", win, TargetCollection, true},
		{"window on window", win, TargetWindowGroup, false},
		{"nothing", Session{}, TargetCollection, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanDrop(tt.s, tt.k))
		})
	}
}

func TestAfterElement(t *testing.T) {
	boxes := []Box{{Top: 0, Height: 4}, {Top: 4, Height: 4}, {Top: 8, Height: 4}}

	tests := []struct {
		name  string
		boxes []Box
		y     int
		want  int
	}{
		{"above everything", boxes, 0, -1},
		{"upper half of first", boxes, 1, 0},
		{"lower half of second", boxes, 7, 1},
		{"below last", boxes, 30, 2},
		{"skips dragging", []Box{{Top: 0, Height: 4}, {Top: 4, Height: 4, Dragging: true}}, 6, 0},
		{"empty", nil, 3, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AfterElement(tt.boxes, tt.y))
		})
	}
}

func TestGridIndex(t *testing.T) {
	container := Rect{Left: 10, Top: 5, Width: 60}
	cell := Cell{Width: 20, Height: 4}

	tests := []struct {
		name  string
		x, y  int
		count int
		want  int
	}{
		{"first cell", 11, 6, 5, 0},
		{"second column", 31, 6, 5, 1},
		{"second row", 11, 9, 5, 3},
		{"past the end clamps", 51, 20, 5, 5},
		{"left of container clamps", 0, 6, 5, 0},
		{"empty grid", 31, 9, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GridIndex(container, tt.x, tt.y, cell, tt.count))
		})
	}
}
