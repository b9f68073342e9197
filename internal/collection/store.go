package collection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"pkt.systems/pslog"

	"github.com/five82/tabshelf/internal/blob"
	"github.com/five82/tabshelf/internal/logging"
)

// DefaultKey is the blob key the tree is stored under.
const DefaultKey = "collectionsData"

// Store is the single source of truth for persisted tabs.
type Store struct {
	mu      sync.Mutex
	blob    blob.Store
	key     string
	log     pslog.Logger
	groups  []Group
	version uint64

	selected    int
	hasSelected bool
}

// NewStore returns an empty store persisting under key. Call Load before use.
func NewStore(backend blob.Store, key string, logger pslog.Logger) *Store {
	if strings.TrimSpace(key) == "" {
		key = DefaultKey
	}
	if backend == nil {
		backend = blob.NewMemory()
	}
	return &Store{
		blob: backend,
		key:  key,
		log:  logging.OrDiscard(logger).With("component", "collections"),
	}
}

// Load reads the tree from the backend. A missing or unreadable document
// yields an empty tree; an empty tree is seeded with the default group.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var groups []Group
	data, err := s.blob.Get(ctx, s.key)
	switch {
	case errors.Is(err, blob.ErrNotFound):
		s.log.Info("no stored collections, starting empty")
	case err != nil:
		return fmt.Errorf("load collections: %w", err)
	default:
		decoded, derr := DecodeBytes(data)
		if derr != nil {
			s.log.Warn("stored collections unreadable, starting empty", "err", derr)
		} else {
			groups = decoded
		}
	}

	dedupeIDs(groups, make(map[int]bool))
	renumber(groups)
	s.groups = groups
	s.hasSelected = false
	s.version++

	if len(s.groups) == 0 {
		s.groups = []Group{{Name: DefaultGroupName, Collections: []Collection{}}}
		s.log.Info("created default group")
		return s.persistLocked(ctx)
	}
	s.log.Debug("collections loaded", "groups", len(s.groups), "collections", CountCollections(s.groups))
	return nil
}

// Groups returns a deep copy of the tree.
func (s *Store) Groups() []Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Clone(s.groups)
}

// Version increases on every change to the tree or the selection.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Find resolves a collection id to its current position.
func (s *Store) Find(id int) (groupIdx, pos int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return find(s.groups, id)
}

// IDAt returns the id of the collection at pos within group groupIdx.
func (s *Store) IDAt(groupIdx, pos int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if groupIdx < 0 || groupIdx >= len(s.groups) {
		return 0, false
	}
	list := s.groups[groupIdx].Collections
	if pos < 0 || pos >= len(list) {
		return 0, false
	}
	return list[pos].CollectionID, true
}

// Collection returns a copy of the collection with the given id.
func (s *Store) Collection(id int) (Collection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gi, pos, ok := find(s.groups, id)
	if !ok {
		return Collection{}, false
	}
	return cloneCollection(s.groups[gi].Collections[pos]), true
}

// TabAt returns the stored tab at index within collection id.
func (s *Store) TabAt(id, index int) (StoredTab, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.collectionLocked(id)
	if err != nil {
		return StoredTab{}, err
	}
	if index < 0 || index >= len(c.Tabs) {
		return StoredTab{}, ErrTabIndex
	}
	return c.Tabs[index], nil
}

// Selected returns the selected collection id.
func (s *Store) Selected() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.hasSelected
}

// SelectedCollection returns a copy of the selected collection.
func (s *Store) SelectedCollection() (Collection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasSelected {
		return Collection{}, false
	}
	gi, pos, ok := find(s.groups, s.selected)
	if !ok {
		return Collection{}, false
	}
	return cloneCollection(s.groups[gi].Collections[pos]), true
}

// Select marks collection id as selected.
func (s *Store) Select(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, _, ok := find(s.groups, id); !ok {
		return ErrNotFound
	}
	s.selected, s.hasSelected = id, true
	s.version++
	return nil
}

// ClearSelection drops the selection.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasSelected = false
	s.version++
}

// AddGroup appends a group and returns its index.
func (s *Store) AddGroup(ctx context.Context, name string) (int, error) {
	var idx int
	_, err := s.mutate(ctx, "add group", func() (bool, error) {
		s.groups = append(s.groups, Group{Name: name, Collections: []Collection{}})
		idx = len(s.groups) - 1
		return true, nil
	})
	return idx, err
}

// RenameGroup renames the group at idx.
func (s *Store) RenameGroup(ctx context.Context, idx int, name string) error {
	_, err := s.mutate(ctx, "rename group", func() (bool, error) {
		if idx < 0 || idx >= len(s.groups) {
			return false, ErrGroupNotFound
		}
		if s.groups[idx].Name == name {
			return false, nil
		}
		s.groups[idx].Name = name
		return true, nil
	})
	return err
}

// MoveGroup swaps the group at idx with its neighbour in direction delta
// (-1 up, +1 down). Moving past either end is a no-op.
func (s *Store) MoveGroup(ctx context.Context, idx, delta int) (bool, error) {
	return s.mutate(ctx, "move group", func() (bool, error) {
		if idx < 0 || idx >= len(s.groups) {
			return false, ErrGroupNotFound
		}
		if delta == 0 {
			return false, nil
		}
		if delta > 0 {
			delta = 1
		} else {
			delta = -1
		}
		other := idx + delta
		if other < 0 || other >= len(s.groups) {
			return false, nil
		}
		s.groups[idx], s.groups[other] = s.groups[other], s.groups[idx]
		return true, nil
	})
}

// DeleteGroup removes the group at idx with all of its collections. The last
// remaining group cannot be deleted.
func (s *Store) DeleteGroup(ctx context.Context, idx int) error {
	_, err := s.mutate(ctx, "delete group", func() (bool, error) {
		if idx < 0 || idx >= len(s.groups) {
			return false, ErrGroupNotFound
		}
		if len(s.groups) <= 1 {
			return false, ErrLastGroup
		}
		if s.hasSelected {
			for _, c := range s.groups[idx].Collections {
				if c.CollectionID == s.selected {
					s.hasSelected = false
					break
				}
			}
		}
		s.groups = append(s.groups[:idx], s.groups[idx+1:]...)
		return true, nil
	})
	return err
}

// EnsureGroup returns the index of the first group called name, creating it
// at the end when missing.
func (s *Store) EnsureGroup(ctx context.Context, name string) (int, error) {
	idx := -1
	_, err := s.mutate(ctx, "ensure group", func() (bool, error) {
		for i, g := range s.groups {
			if g.Name == name {
				idx = i
				return false, nil
			}
		}
		s.groups = append(s.groups, Group{Name: name, Collections: []Collection{}})
		idx = len(s.groups) - 1
		return true, nil
	})
	return idx, err
}

// AddCollection appends an empty collection to group groupIdx and returns
// its newly allocated id.
func (s *Store) AddCollection(ctx context.Context, groupIdx int, name string) (int, error) {
	id := -1
	_, err := s.mutate(ctx, "add collection", func() (bool, error) {
		if groupIdx < 0 || groupIdx >= len(s.groups) {
			return false, ErrGroupNotFound
		}
		id = NextID(s.groups)
		s.groups[groupIdx].Collections = append(s.groups[groupIdx].Collections, Collection{
			Name:         name,
			Tabs:         []StoredTab{},
			CollectionID: id,
		})
		return true, nil
	})
	return id, err
}

// EnsureCollection returns the id of the first collection called name in
// group groupIdx, creating it when missing.
func (s *Store) EnsureCollection(ctx context.Context, groupIdx int, name string) (int, error) {
	id := -1
	_, err := s.mutate(ctx, "ensure collection", func() (bool, error) {
		if groupIdx < 0 || groupIdx >= len(s.groups) {
			return false, ErrGroupNotFound
		}
		for _, c := range s.groups[groupIdx].Collections {
			if c.Name == name {
				id = c.CollectionID
				return false, nil
			}
		}
		id = NextID(s.groups)
		s.groups[groupIdx].Collections = append(s.groups[groupIdx].Collections, Collection{
			Name:         name,
			Tabs:         []StoredTab{},
			CollectionID: id,
		})
		return true, nil
	})
	return id, err
}

// RenameCollection renames collection id.
func (s *Store) RenameCollection(ctx context.Context, id int, name string) error {
	_, err := s.mutate(ctx, "rename collection", func() (bool, error) {
		c, err := s.collectionLocked(id)
		if err != nil {
			return false, err
		}
		if c.Name == name {
			return false, nil
		}
		c.Name = name
		return true, nil
	})
	return err
}

// DeleteCollection removes collection id, clearing the selection when it
// pointed at it.
func (s *Store) DeleteCollection(ctx context.Context, id int) error {
	_, err := s.mutate(ctx, "delete collection", func() (bool, error) {
		gi, pos, ok := find(s.groups, id)
		if !ok {
			return false, ErrNotFound
		}
		cols := s.groups[gi].Collections
		s.groups[gi].Collections = append(cols[:pos], cols[pos+1:]...)
		if s.hasSelected && s.selected == id {
			s.hasSelected = false
		}
		return true, nil
	})
	return err
}

// MoveCollection moves collection id into group destGroup, in front of
// collection beforeID. A negative or unknown beforeID appends. Dropping a
// collection in front of itself, or back into its current slot, is a no-op.
func (s *Store) MoveCollection(ctx context.Context, id, destGroup, beforeID int) (bool, error) {
	return s.mutate(ctx, "move collection", func() (bool, error) {
		srcGroup, srcPos, ok := find(s.groups, id)
		if !ok {
			return false, ErrNotFound
		}
		if destGroup < 0 || destGroup >= len(s.groups) {
			return false, ErrGroupNotFound
		}
		if beforeID == id {
			return false, nil
		}

		src := s.groups[srcGroup].Collections
		moving := src[srcPos]
		s.groups[srcGroup].Collections = append(src[:srcPos:srcPos], src[srcPos+1:]...)

		dest := s.groups[destGroup].Collections
		at := len(dest)
		if beforeID >= 0 {
			for i, c := range dest {
				if c.CollectionID == beforeID {
					at = i
					break
				}
			}
		}
		if destGroup == srcGroup && at == srcPos {
			s.groups[srcGroup].Collections = insertCollection(s.groups[srcGroup].Collections, srcPos, moving)
			return false, nil
		}
		s.groups[destGroup].Collections = insertCollection(dest, at, moving)
		return true, nil
	})
}

// AppendTabs appends tabs to collection id.
func (s *Store) AppendTabs(ctx context.Context, id int, tabs ...StoredTab) error {
	_, err := s.mutate(ctx, "append tabs", func() (bool, error) {
		c, err := s.collectionLocked(id)
		if err != nil {
			return false, err
		}
		if len(tabs) == 0 {
			return false, nil
		}
		c.Tabs = append(c.Tabs, tabs...)
		return true, nil
	})
	return err
}

// RemoveTab removes the stored tab at index from collection id.
func (s *Store) RemoveTab(ctx context.Context, id, index int) error {
	_, err := s.mutate(ctx, "remove tab", func() (bool, error) {
		c, err := s.collectionLocked(id)
		if err != nil {
			return false, err
		}
		if index < 0 || index >= len(c.Tabs) {
			return false, ErrTabIndex
		}
		c.Tabs = append(c.Tabs[:index], c.Tabs[index+1:]...)
		return true, nil
	})
	return err
}

// RemoveAllTabs empties collection id.
func (s *Store) RemoveAllTabs(ctx context.Context, id int) error {
	_, err := s.mutate(ctx, "remove all tabs", func() (bool, error) {
		c, err := s.collectionLocked(id)
		if err != nil {
			return false, err
		}
		if len(c.Tabs) == 0 {
			return false, nil
		}
		c.Tabs = []StoredTab{}
		return true, nil
	})
	return err
}

// MoveTab moves the stored tab at index in collection srcID to the end of
// collection dstID. Moving within one collection is a no-op.
func (s *Store) MoveTab(ctx context.Context, srcID, index, dstID int) (bool, error) {
	return s.mutate(ctx, "move tab", func() (bool, error) {
		src, err := s.collectionLocked(srcID)
		if err != nil {
			return false, err
		}
		dst, err := s.collectionLocked(dstID)
		if err != nil {
			return false, err
		}
		if srcID == dstID {
			return false, nil
		}
		if index < 0 || index >= len(src.Tabs) {
			return false, ErrTabIndex
		}
		tab := src.Tabs[index]
		src.Tabs = append(src.Tabs[:index], src.Tabs[index+1:]...)
		dst.Tabs = append(dst.Tabs, tab)
		return true, nil
	})
}

// ReorderTab moves the stored tab at from to position to within collection
// id: the tab is spliced out first, then spliced back in at to.
func (s *Store) ReorderTab(ctx context.Context, id, from, to int) (bool, error) {
	return s.mutate(ctx, "reorder tab", func() (bool, error) {
		c, err := s.collectionLocked(id)
		if err != nil {
			return false, err
		}
		if from < 0 || from >= len(c.Tabs) || to < 0 || to >= len(c.Tabs) {
			return false, ErrTabIndex
		}
		if from == to {
			return false, nil
		}
		tab := c.Tabs[from]
		rest := append(c.Tabs[:from:from], c.Tabs[from+1:]...)
		out := make([]StoredTab, 0, len(c.Tabs))
		out = append(out, rest[:to]...)
		out = append(out, tab)
		out = append(out, rest[to:]...)
		c.Tabs = out
		return true, nil
	})
}

// Import merges groups into the tree. Replace discards the current tree and
// the selection; append concatenates, re-allocating colliding ids.
func (s *Store) Import(ctx context.Context, groups []Group, mode ImportMode) error {
	incoming := Clone(groups)
	_, err := s.mutate(ctx, "import "+mode.String(), func() (bool, error) {
		switch mode {
		case ImportAppend:
			seen := make(map[int]bool)
			for _, g := range s.groups {
				for _, c := range g.Collections {
					seen[c.CollectionID] = true
				}
			}
			dedupeIDs(incoming, seen)
			s.groups = append(s.groups, incoming...)
		default:
			dedupeIDs(incoming, make(map[int]bool))
			s.groups = incoming
			s.hasSelected = false
		}
		return true, nil
	})
	return err
}

// mutate runs fn under the lock. When fn reports a change the caches are
// renumbered and the tree is persisted.
func (s *Store) mutate(ctx context.Context, op string, fn func() (bool, error)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := fn()
	if err != nil {
		s.log.Debug("collection change rejected", "op", op, "err", err)
		return false, err
	}
	if !changed {
		return false, nil
	}
	renumber(s.groups)
	s.version++
	s.log.Debug("collection change applied", "op", op)
	if err := s.persistLocked(ctx); err != nil {
		return true, err
	}
	return true, nil
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := marshalCompact(s.groups)
	if err != nil {
		s.log.Error("encode collections failed", "err", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := s.blob.Put(ctx, s.key, data); err != nil {
		s.log.Error("persist collections failed", "err", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (s *Store) collectionLocked(id int) (*Collection, error) {
	gi, pos, ok := find(s.groups, id)
	if !ok {
		return nil, ErrNotFound
	}
	return &s.groups[gi].Collections[pos], nil
}

func find(groups []Group, id int) (int, int, bool) {
	for gi, g := range groups {
		for pos, c := range g.Collections {
			if c.CollectionID == id {
				return gi, pos, true
			}
		}
	}
	return -1, -1, false
}

func insertCollection(list []Collection, at int, c Collection) []Collection {
	if at < 0 || at > len(list) {
		at = len(list)
	}
	out := make([]Collection, 0, len(list)+1)
	out = append(out, list[:at]...)
	out = append(out, c)
	out = append(out, list[at:]...)
	return out
}

func cloneCollection(c Collection) Collection {
	c.Tabs = append(make([]StoredTab, 0, len(c.Tabs)), c.Tabs...)
	return c
}
