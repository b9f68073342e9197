package collection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/tabshelf/internal/blob"
)

type failingBlob struct {
	*blob.Memory
	putErr error
}

func (f *failingBlob) Put(ctx context.Context, key string, data []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.Memory.Put(ctx, key, data)
}

func newLoadedStore(t *testing.T, groups []Group) (*Store, *blob.Memory) {
	t.Helper()
	mem := blob.NewMemory()
	if groups != nil {
		data, err := json.Marshal(groups)
		require.NoError(t, err)
		require.NoError(t, mem.Put(context.Background(), DefaultKey, data))
	}
	s := NewStore(mem, DefaultKey, nil)
	require.NoError(t, s.Load(context.Background()))
	return s, mem
}

func tabs(urls ...string) []StoredTab {
	out := make([]StoredTab, 0, len(urls))
	for _, u := range urls {
		out = append(out, StoredTab{Title: u, URL: "http://" + u + ".test"})
	}
	return out
}

func titles(c Collection) []string {
	out := make([]string, 0, len(c.Tabs))
	for _, tab := range c.Tabs {
		out = append(out, tab.Title)
	}
	return out
}

func sampleTree() []Group {
	return []Group{
		{Name: "G0", Collections: []Collection{
			{Name: "Work", CollectionID: 0, Tabs: tabs("a", "b", "c")},
			{Name: "Read", CollectionID: 3, Tabs: tabs("d")},
		}},
		{Name: "G1", Collections: []Collection{
			{Name: "Play", CollectionID: 1, Tabs: []StoredTab{}},
		}},
	}
}

func TestLoad_MissingBlobBootstrapsDefaultGroup(t *testing.T) {
	s, mem := newLoadedStore(t, nil)

	groups := s.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, DefaultGroupName, groups[0].Name)
	assert.Empty(t, groups[0].Collections)

	raw, err := mem.Get(context.Background(), DefaultKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Default Group","collections":[]}]`, string(raw))
}

func TestLoad_CorruptBlobStartsEmpty(t *testing.T) {
	mem := blob.NewMemory()
	require.NoError(t, mem.Put(context.Background(), DefaultKey, []byte("{not json")))
	s := NewStore(mem, DefaultKey, nil)
	require.NoError(t, s.Load(context.Background()))

	groups := s.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, DefaultGroupName, groups[0].Name)
}

func TestLoad_RecomputesCaches(t *testing.T) {
	tree := sampleTree()
	tree[0].Collections[1].GroupID = 9
	tree[0].Collections[1].Pos = 9
	s, _ := newLoadedStore(t, tree)

	c, ok := s.Collection(3)
	require.True(t, ok)
	assert.Equal(t, 0, c.GroupID)
	assert.Equal(t, 1, c.Pos)
}

func TestAddCollection_AllocatesHighWaterIDs(t *testing.T) {
	s, _ := newLoadedStore(t, sampleTree())
	ctx := context.Background()

	id, err := s.AddCollection(ctx, 1, "New")
	require.NoError(t, err)
	assert.Equal(t, 4, id)

	require.NoError(t, s.DeleteCollection(ctx, 4))
	require.NoError(t, s.DeleteCollection(ctx, 3))
	id, err = s.AddCollection(ctx, 0, "Again")
	require.NoError(t, err)
	assert.Equal(t, 2, id, "allocation is max+1 computed fresh")
}

func TestAddCollection_IDsStayUnique(t *testing.T) {
	s, _ := newLoadedStore(t, nil)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := s.AddCollection(ctx, 0, "c")
		require.NoError(t, err)
		if i%4 == 3 {
			groups := s.Groups()
			last := groups[0].Collections[len(groups[0].Collections)-2]
			require.NoError(t, s.DeleteCollection(ctx, last.CollectionID))
		}
	}
	seen := map[int]bool{}
	for _, g := range s.Groups() {
		for _, c := range g.Collections {
			assert.False(t, seen[c.CollectionID], "duplicate id %d", c.CollectionID)
			seen[c.CollectionID] = true
		}
	}
}

func TestDeleteGroup_RefusesLastGroup(t *testing.T) {
	s, _ := newLoadedStore(t, nil)
	before := s.Groups()

	err := s.DeleteGroup(context.Background(), 0)
	require.ErrorIs(t, err, ErrLastGroup)
	assert.Equal(t, before, s.Groups())
	assert.True(t, IsValidation(err))
}

func TestDeleteGroup_ClearsSelectionInside(t *testing.T) {
	s, _ := newLoadedStore(t, sampleTree())
	require.NoError(t, s.Select(3))

	require.NoError(t, s.DeleteGroup(context.Background(), 0))
	_, ok := s.Selected()
	assert.False(t, ok)
	require.Len(t, s.Groups(), 1)
	c, ok := s.Collection(1)
	require.True(t, ok)
	assert.Equal(t, 0, c.GroupID)
}

func TestDeleteCollection_ClearsSelection(t *testing.T) {
	s, _ := newLoadedStore(t, sampleTree())
	ctx := context.Background()
	require.NoError(t, s.Select(0))

	require.NoError(t, s.DeleteCollection(ctx, 3))
	id, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, 0, id)

	require.NoError(t, s.DeleteCollection(ctx, 0))
	_, ok = s.Selected()
	assert.False(t, ok)
}

func TestMoveGroup_AdjacentSwap(t *testing.T) {
	s, _ := newLoadedStore(t, sampleTree())
	ctx := context.Background()

	moved, err := s.MoveGroup(ctx, 0, -1)
	require.NoError(t, err)
	assert.False(t, moved)

	moved, err = s.MoveGroup(ctx, 0, +1)
	require.NoError(t, err)
	assert.True(t, moved)
	groups := s.Groups()
	assert.Equal(t, "G1", groups[0].Name)
	assert.Equal(t, "G0", groups[1].Name)
	assert.Equal(t, 1, groups[1].Collections[0].GroupID)
}

func TestMoveCollection_ToOtherGroupAppends(t *testing.T) {
	s, _ := newLoadedStore(t, []Group{
		{Name: "Group0", Collections: []Collection{{Name: "Work", CollectionID: 0, Tabs: []StoredTab{}}}},
		{Name: "Group1", Collections: []Collection{{Name: "Other", CollectionID: 1, Tabs: []StoredTab{}}}},
	})

	moved, err := s.MoveCollection(context.Background(), 0, 1, -1)
	require.NoError(t, err)
	assert.True(t, moved)

	groups := s.Groups()
	assert.Empty(t, groups[0].Collections)
	last := groups[1].Collections[len(groups[1].Collections)-1]
	assert.Equal(t, 0, last.CollectionID)
	assert.Equal(t, 1, last.GroupID)
	assert.Equal(t, 1, last.Pos)
}

func TestMoveCollection_BeforeAndNoOps(t *testing.T) {
	s, _ := newLoadedStore(t, sampleTree())
	ctx := context.Background()
	before := s.Groups()

	moved, err := s.MoveCollection(ctx, 3, 0, 3)
	require.NoError(t, err)
	assert.False(t, moved, "drop before itself")

	moved, err = s.MoveCollection(ctx, 3, 0, -1)
	require.NoError(t, err)
	assert.False(t, moved, "append to the group it already ends")
	assert.Equal(t, before, s.Groups())

	moved, err = s.MoveCollection(ctx, 3, 0, 0)
	require.NoError(t, err)
	assert.True(t, moved)
	groups := s.Groups()
	assert.Equal(t, 3, groups[0].Collections[0].CollectionID)
	assert.Equal(t, 0, groups[0].Collections[1].CollectionID)

	moved, err = s.MoveCollection(ctx, 0, 1, 1)
	require.NoError(t, err)
	assert.True(t, moved)
	groups = s.Groups()
	assert.Equal(t, []int{0, 1}, []int{groups[1].Collections[0].CollectionID, groups[1].Collections[1].CollectionID})
	assert.Equal(t, CountCollections(before), CountCollections(groups))
}

func TestMoveCollection_Errors(t *testing.T) {
	s, _ := newLoadedStore(t, sampleTree())
	ctx := context.Background()

	_, err := s.MoveCollection(ctx, 42, 0, -1)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.MoveCollection(ctx, 0, 7, -1)
	require.ErrorIs(t, err, ErrGroupNotFound)
}

func TestMoveTab_ConservesTabs(t *testing.T) {
	s, _ := newLoadedStore(t, sampleTree())
	ctx := context.Background()
	before := s.Groups()
	src, _ := s.Collection(0)
	movedTab := src.Tabs[1]

	moved, err := s.MoveTab(ctx, 0, 1, 1)
	require.NoError(t, err)
	assert.True(t, moved)

	after := s.Groups()
	assert.Equal(t, CountTabs(before), CountTabs(after))
	dst, _ := s.Collection(1)
	assert.Equal(t, movedTab, dst.Tabs[len(dst.Tabs)-1])
	src, _ = s.Collection(0)
	assert.Equal(t, []string{"a", "c"}, titles(src))
}

func TestMoveTab_SameCollectionIsNoOp(t *testing.T) {
	s, _ := newLoadedStore(t, sampleTree())
	before := s.Groups()

	moved, err := s.MoveTab(context.Background(), 0, 1, 0)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, before, s.Groups())
}

func TestReorderTab(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
		moved    bool
	}{
		{"first onto last", 0, 2, []string{"b", "c", "a"}, true},
		{"last onto first", 2, 0, []string{"c", "a", "b"}, true},
		{"middle onto last", 1, 2, []string{"a", "c", "b"}, true},
		{"onto itself", 1, 1, []string{"a", "b", "c"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newLoadedStore(t, sampleTree())
			moved, err := s.ReorderTab(context.Background(), 0, tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.moved, moved)
			c, _ := s.Collection(0)
			assert.Equal(t, tt.want, titles(c))
		})
	}
}

func TestReorderTab_OutOfRange(t *testing.T) {
	s, _ := newLoadedStore(t, sampleTree())
	_, err := s.ReorderTab(context.Background(), 0, 0, 3)
	require.ErrorIs(t, err, ErrTabIndex)
}

func TestRemoveTabAndRemoveAll(t *testing.T) {
	s, _ := newLoadedStore(t, sampleTree())
	ctx := context.Background()

	require.NoError(t, s.RemoveTab(ctx, 0, 0))
	c, _ := s.Collection(0)
	assert.Equal(t, []string{"b", "c"}, titles(c))

	require.ErrorIs(t, s.RemoveTab(ctx, 0, 5), ErrTabIndex)

	require.NoError(t, s.RemoveAllTabs(ctx, 0))
	c, _ = s.Collection(0)
	assert.Empty(t, c.Tabs)
	assert.NotNil(t, c.Tabs)
}

func TestEnsureGroupAndCollection(t *testing.T) {
	s, _ := newLoadedStore(t, sampleTree())
	ctx := context.Background()

	gi, err := s.EnsureGroup(ctx, HibernateGroupName)
	require.NoError(t, err)
	assert.Equal(t, 2, gi)
	again, err := s.EnsureGroup(ctx, HibernateGroupName)
	require.NoError(t, err)
	assert.Equal(t, gi, again)

	id, err := s.EnsureCollection(ctx, gi, "Window 1 (ID: 7)")
	require.NoError(t, err)
	same, err := s.EnsureCollection(ctx, gi, "Window 1 (ID: 7)")
	require.NoError(t, err)
	assert.Equal(t, id, same)
	assert.Len(t, s.Groups()[gi].Collections, 1)
}

func TestRenameOperations(t *testing.T) {
	s, _ := newLoadedStore(t, sampleTree())
	ctx := context.Background()

	require.NoError(t, s.RenameGroup(ctx, 1, "Fun"))
	require.NoError(t, s.RenameCollection(ctx, 1, "Games"))
	groups := s.Groups()
	assert.Equal(t, "Fun", groups[1].Name)
	assert.Equal(t, "Games", groups[1].Collections[0].Name)

	require.ErrorIs(t, s.RenameGroup(ctx, 5, "x"), ErrGroupNotFound)
	require.ErrorIs(t, s.RenameCollection(ctx, 99, "x"), ErrNotFound)
}

func TestSelect_UnknownID(t *testing.T) {
	s, _ := newLoadedStore(t, sampleTree())
	require.ErrorIs(t, s.Select(77), ErrNotFound)
	_, ok := s.SelectedCollection()
	assert.False(t, ok)

	require.NoError(t, s.Select(3))
	c, ok := s.SelectedCollection()
	require.True(t, ok)
	assert.Equal(t, "Read", c.Name)
}

func TestMutations_PersistEveryChange(t *testing.T) {
	s, mem := newLoadedStore(t, sampleTree())
	ctx := context.Background()

	require.NoError(t, s.AppendTabs(ctx, 1, StoredTab{Title: "x", URL: "http://x.test"}))

	raw, err := mem.Get(ctx, DefaultKey)
	require.NoError(t, err)
	stored, err := DecodeBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, s.Groups(), stored)
}

func TestMutations_PersistFailureKeepsChange(t *testing.T) {
	backend := &failingBlob{Memory: blob.NewMemory()}
	s := NewStore(backend, DefaultKey, nil)
	require.NoError(t, s.Load(context.Background()))

	backend.putErr = errors.New("disk full")
	_, err := s.AddGroup(context.Background(), "G")
	require.Error(t, err)
	assert.Len(t, s.Groups(), 2)
}

func TestImport_ReplaceRoundTrip(t *testing.T) {
	s, _ := newLoadedStore(t, sampleTree())
	ctx := context.Background()
	original := s.Groups()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, original))
	decoded, err := DecodeBytes(buf.Bytes())
	require.NoError(t, err)

	require.NoError(t, s.AppendTabs(ctx, 1, tabs("zzz")...))
	require.NoError(t, s.Import(ctx, decoded, ImportReplace))
	assert.Equal(t, original, s.Groups())
}

func TestImport_ReplaceEmptyTree(t *testing.T) {
	s, _ := newLoadedStore(t, sampleTree())
	require.NoError(t, s.Select(0))

	require.NoError(t, s.Import(context.Background(), []Group{}, ImportReplace))
	assert.Empty(t, s.Groups())
	_, ok := s.Selected()
	assert.False(t, ok)
}

func TestImport_AppendReassignsCollidingIDs(t *testing.T) {
	s, _ := newLoadedStore(t, sampleTree())
	ctx := context.Background()

	require.NoError(t, s.Import(ctx, []Group{
		{Name: "Imported", Collections: []Collection{
			{Name: "Dup", CollectionID: 0, Tabs: tabs("q")},
			{Name: "Fresh", CollectionID: 10, Tabs: []StoredTab{}},
		}},
	}, ImportAppend))

	groups := s.Groups()
	require.Len(t, groups, 3)
	imported := groups[2].Collections
	assert.Equal(t, 11, imported[0].CollectionID)
	assert.Equal(t, 10, imported[1].CollectionID)
	assert.Equal(t, 2, imported[0].GroupID)
}

func TestIDAt(t *testing.T) {
	s, _ := newLoadedStore(t, sampleTree())

	id, ok := s.IDAt(0, 0)
	require.True(t, ok)
	assert.Equal(t, 0, id)

	_, ok = s.IDAt(0, 99)
	assert.False(t, ok)
	_, ok = s.IDAt(-1, 0)
	assert.False(t, ok)
}
