package ui

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tabshelf/internal/blob"
	"github.com/five82/tabshelf/internal/collection"
	"github.com/five82/tabshelf/internal/drag"
	"github.com/five82/tabshelf/internal/host"
	"github.com/five82/tabshelf/internal/prefs"
	"github.com/five82/tabshelf/internal/state"
)

type harness struct {
	model Model
	store *collection.Store
	host  *host.Memory
	live  *state.Store
	prefs string
}

func newHarness(t *testing.T, groups []collection.Group) *harness {
	t.Helper()
	ctx := context.Background()

	mem := blob.NewMemory()
	var buf bytes.Buffer
	if err := collection.Encode(&buf, groups); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := mem.Put(ctx, collection.DefaultKey, buf.Bytes()); err != nil {
		t.Fatalf("put: %v", err)
	}
	store := collection.NewStore(mem, collection.DefaultKey, nil)
	if err := store.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	h := host.NewMemory()
	h.AddWindow(
		host.LiveTab{Title: "Go", URL: "https://go.dev/doc"},
		host.LiveTab{Title: "News", URL: "https://news.example.com"},
	)
	live := &state.Store{}
	tabs, err := h.QueryTabs(ctx, host.Query{})
	if err != nil {
		t.Fatalf("query tabs: %v", err)
	}
	live.Update(tabs, nil)

	prefsPath := filepath.Join(t.TempDir(), "prefs.toml")
	m := New(Options{
		Context:   ctx,
		Store:     store,
		Host:      h,
		Live:      live,
		PrefsPath: prefsPath,
	})
	hs := &harness{model: m, store: store, host: h, live: live, prefs: prefsPath}
	hs.send(t, tea.WindowSizeMsg{Width: 120, Height: 30})
	return hs
}

// send delivers msg and returns the command it produced.
func (hs *harness) send(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := hs.model.Update(msg)
	m, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	hs.model = m
	return cmd
}

// exec runs cmd and feeds its message back into the model.
func (hs *harness) exec(t *testing.T, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	return hs.send(t, cmd())
}

func (hs *harness) mouse(t *testing.T, action tea.MouseAction, x, y int, shift bool) tea.Cmd {
	t.Helper()
	return hs.send(t, tea.MouseMsg{X: x, Y: y, Shift: shift, Action: action, Button: tea.MouseButtonLeft})
}

func (hs *harness) key(t *testing.T, k string) tea.Cmd {
	t.Helper()
	return hs.send(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
}

func oneCollection() []collection.Group {
	return []collection.Group{{Name: "Reading", Collections: []collection.Collection{{Name: "Later", CollectionID: 1}}}}
}

func TestDragLiveTabIntoCollection(t *testing.T) {
	hs := newHarness(t, oneCollection())
	f := hs.model.frame()
	top := f.bodyTop()
	cardX, cardY := f.layout.live.inner().x+1, top+1
	rowX, rowY := f.layout.collections.inner().x+2, top+1

	fetch := hs.mouse(t, tea.MouseActionPress, cardX, cardY, false)
	if s := hs.model.tracker.Current(); s.Kind != drag.KindTabCard || s.Source != drag.SourceLiveTab {
		t.Fatalf("session = %+v, want live tab card", s)
	}
	hs.exec(t, fetch)
	if s := hs.model.tracker.Current(); s.TabData == nil {
		t.Fatalf("tab data not fetched")
	}

	hs.mouse(t, tea.MouseActionMotion, rowX, rowY, false)
	if !hs.model.hoverOK || hs.model.hoverTarget.Kind != drag.TargetCollection {
		t.Fatalf("hover = %+v ok=%v, want collection target", hs.model.hoverTarget, hs.model.hoverOK)
	}

	hs.exec(t, hs.mouse(t, tea.MouseActionRelease, rowX, rowY, false))

	c, ok := hs.store.Collection(1)
	if !ok {
		t.Fatalf("collection 1 missing")
	}
	if len(c.Tabs) != 1 || c.Tabs[0].URL != "https://go.dev/doc" {
		t.Fatalf("stored tabs = %+v, want the dragged tab", c.Tabs)
	}
	if hs.model.statusErr {
		t.Fatalf("status error: %s", hs.model.status)
	}
	if hs.model.tracker.Current().Active() {
		t.Fatalf("drag session still active after drop")
	}
}

func TestShiftDropClosesLiveTab(t *testing.T) {
	hs := newHarness(t, oneCollection())
	f := hs.model.frame()
	top := f.bodyTop()

	hs.exec(t, hs.mouse(t, tea.MouseActionPress, f.layout.live.inner().x+1, top+1, false))
	hs.mouse(t, tea.MouseActionMotion, 3, top+1, false)
	hs.exec(t, hs.mouse(t, tea.MouseActionRelease, 3, top+1, true))

	tabs, err := hs.host.QueryTabs(context.Background(), host.Query{})
	if err != nil {
		t.Fatalf("query tabs: %v", err)
	}
	if len(tabs) != 1 {
		t.Fatalf("live tabs = %d, want 1 after shift drop", len(tabs))
	}
}

func TestClickSelectsCollection(t *testing.T) {
	hs := newHarness(t, oneCollection())
	top := hs.model.frame().bodyTop()

	hs.mouse(t, tea.MouseActionPress, 3, top+1, false)
	hs.mouse(t, tea.MouseActionRelease, 3, top+1, false)

	id, ok := hs.store.Selected()
	if !ok || id != 1 {
		t.Fatalf("Selected = %d, %v, want 1, true", id, ok)
	}
	if hs.model.tracker.Current().Active() {
		t.Fatalf("click left a drag session behind")
	}
}

func TestClickStoredCardOpensTab(t *testing.T) {
	groups := oneCollection()
	groups[0].Collections[0].Tabs = []collection.StoredTab{{Title: "Docs", URL: "https://pkg.go.dev"}}
	hs := newHarness(t, groups)
	if err := hs.store.Select(1); err != nil {
		t.Fatalf("select: %v", err)
	}
	f := hs.model.frame()
	x, y := f.layout.content.inner().x+2, f.bodyTop()

	hs.mouse(t, tea.MouseActionPress, x, y, false)
	hs.send(t, hs.mouse(t, tea.MouseActionRelease, x, y, false)())

	tabs, err := hs.host.QueryTabs(context.Background(), host.Query{})
	if err != nil {
		t.Fatalf("query tabs: %v", err)
	}
	if len(tabs) != 3 || tabs[2].URL != "https://pkg.go.dev" {
		t.Fatalf("live tabs = %+v, want the stored url opened", tabs)
	}
}

func TestDividerDragSavesWidths(t *testing.T) {
	hs := newHarness(t, oneCollection())
	hs.mouse(t, tea.MouseActionPress, 23, 5, false)
	hs.mouse(t, tea.MouseActionMotion, 39, 5, false)
	if hs.model.leftWidth != 40 {
		t.Fatalf("leftWidth = %d, want 40", hs.model.leftWidth)
	}
	save := hs.mouse(t, tea.MouseActionRelease, 39, 5, false)
	if save == nil {
		t.Fatalf("expected a save command")
	}
	save()

	p, err := prefs.Load(hs.prefs)
	if err != nil {
		t.Fatalf("prefs.Load: %v", err)
	}
	if p.LeftWidth != 40 {
		t.Fatalf("saved LeftWidth = %d, want 40", p.LeftWidth)
	}
}

func TestDeleteCollectionDeclineIsNoOp(t *testing.T) {
	hs := newHarness(t, oneCollection())
	hs.key(t, "j")
	hs.key(t, "d")
	if hs.model.modal == nil {
		t.Fatalf("expected a confirmation modal")
	}
	if cmd := hs.key(t, "n"); cmd != nil {
		t.Fatalf("decline returned a command")
	}
	if hs.model.modal != nil {
		t.Fatalf("modal still open after decline")
	}
	if _, _, ok := hs.store.Find(1); !ok {
		t.Fatalf("collection deleted after decline")
	}
}

func TestDeleteCollectionConfirm(t *testing.T) {
	hs := newHarness(t, oneCollection())
	hs.key(t, "j")
	hs.key(t, "d")
	hs.exec(t, hs.key(t, "y"))
	if _, _, ok := hs.store.Find(1); ok {
		t.Fatalf("collection still present after confirm")
	}
	if hs.model.status != "Collection deleted" {
		t.Fatalf("status = %q", hs.model.status)
	}
}

func TestAddCollectionPrompt(t *testing.T) {
	hs := newHarness(t, oneCollection())
	hs.key(t, "a")
	for _, r := range "Inbox" {
		hs.key(t, string(r))
	}
	hs.exec(t, hs.send(t, tea.KeyMsg{Type: tea.KeyEnter}))

	groups := hs.store.Groups()
	if len(groups[0].Collections) != 2 || groups[0].Collections[1].Name != "Inbox" {
		t.Fatalf("collections = %+v", groups[0].Collections)
	}
	id, ok := hs.store.Selected()
	if !ok || id != groups[0].Collections[1].CollectionID {
		t.Fatalf("new collection not selected: %d %v", id, ok)
	}
}

func TestFocusCycle(t *testing.T) {
	hs := newHarness(t, oneCollection())
	want := []drag.Pane{drag.PaneContent, drag.PaneLive, drag.PaneCollections}
	for _, p := range want {
		hs.send(t, tea.KeyMsg{Type: tea.KeyTab})
		if hs.model.focus != p {
			t.Fatalf("focus = %v, want %v", hs.model.focus, p)
		}
	}
}

func TestViewRendersPanes(t *testing.T) {
	hs := newHarness(t, oneCollection())
	out := hs.model.View()
	for _, want := range []string{"tabshelf", "Reading", "Later", "Window 1"} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Fatalf("view missing %q", want)
		}
	}
}

func TestDragStartedWhileDropPendingSurvives(t *testing.T) {
	hs := newHarness(t, oneCollection())
	f := hs.model.frame()
	top := f.bodyTop()

	hs.exec(t, hs.mouse(t, tea.MouseActionPress, f.layout.live.inner().x+1, top+1, false))
	hs.mouse(t, tea.MouseActionMotion, 3, top+1, false)
	pending := hs.mouse(t, tea.MouseActionRelease, 3, top+1, true)
	if pending == nil {
		t.Fatalf("release returned no drop command")
	}
	if hs.model.tracker.Current().Active() {
		t.Fatalf("session still active after release")
	}

	hs.mouse(t, tea.MouseActionPress, 3, top+1, false)
	if s := hs.model.tracker.Current(); s.Kind != drag.KindCollection {
		t.Fatalf("new session kind = %v, want collection", s.Kind)
	}

	hs.send(t, pending())
	if s := hs.model.tracker.Current(); s.Kind != drag.KindCollection {
		t.Fatalf("session after pending drop = %v, want collection", s.Kind)
	}
	c, _ := hs.store.Collection(1)
	if len(c.Tabs) != 1 {
		t.Fatalf("stored tabs = %d, want 1", len(c.Tabs))
	}
}

func TestMotionWithoutDragDoesNotDrop(t *testing.T) {
	hs := newHarness(t, oneCollection())
	f := hs.model.frame()
	x, y := f.layout.content.inner().x+4, f.bodyTop()+5

	hs.mouse(t, tea.MouseActionPress, x, y, false)
	hs.mouse(t, tea.MouseActionMotion, x+2, y+1, false)
	if cmd := hs.mouse(t, tea.MouseActionRelease, x+2, y+1, false); cmd != nil {
		t.Fatalf("release returned a command without a drag")
	}
	if hs.model.statusErr {
		t.Fatalf("status error: %s", hs.model.status)
	}
}
