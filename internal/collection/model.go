package collection

// Default names used when the store creates containers on its own.
const (
	DefaultGroupName   = "Default Group"
	HibernateGroupName = "Wake me UP!"
)

// StoredTab is a durable snapshot of a browser tab. It never carries a live
// tab id, window id or index.
type StoredTab struct {
	Title      string `json:"title" yaml:"title"`
	URL        string `json:"url" yaml:"url"`
	FavIconURL string `json:"favIconUrl" yaml:"favIconUrl"`
}

// Collection is a named, ordered list of stored tabs.
type Collection struct {
	Name         string      `json:"name" yaml:"name"`
	Tabs         []StoredTab `json:"tabs" yaml:"tabs"`
	CollectionID int         `json:"collectionId" yaml:"collectionId"`
	GroupID      int         `json:"groupId" yaml:"groupId"`
	Pos          int         `json:"pos" yaml:"pos"`
}

// Group is a named, ordered list of collections.
type Group struct {
	Name        string       `json:"name" yaml:"name"`
	Collections []Collection `json:"collections" yaml:"collections"`
}

// CountCollections returns the number of collections across groups.
func CountCollections(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += len(g.Collections)
	}
	return n
}

// CountTabs returns the number of stored tabs across groups.
func CountTabs(groups []Group) int {
	n := 0
	for _, g := range groups {
		for _, c := range g.Collections {
			n += len(c.Tabs)
		}
	}
	return n
}

// NextID returns max(all collection ids, -1) + 1.
func NextID(groups []Group) int {
	highest := -1
	for _, g := range groups {
		for _, c := range g.Collections {
			if c.CollectionID > highest {
				highest = c.CollectionID
			}
		}
	}
	return highest + 1
}

// Clone deep-copies groups. Nil slices come back empty so the encoded form is
// always [] rather than null.
func Clone(groups []Group) []Group {
	out := make([]Group, len(groups))
	for gi, g := range groups {
		cols := make([]Collection, len(g.Collections))
		for ci, c := range g.Collections {
			c.Tabs = append(make([]StoredTab, 0, len(c.Tabs)), c.Tabs...)
			cols[ci] = c
		}
		out[gi] = Group{Name: g.Name, Collections: cols}
	}
	return out
}

// renumber rewrites the GroupID/Pos caches from actual positions.
func renumber(groups []Group) {
	for gi := range groups {
		for ci := range groups[gi].Collections {
			groups[gi].Collections[ci].GroupID = gi
			groups[gi].Collections[ci].Pos = ci
		}
	}
}

// dedupeIDs gives a fresh id to every collection whose id was already seen,
// scanning in display order. seen may be pre-populated with ids that must not
// be reused.
func dedupeIDs(groups []Group, seen map[int]bool) {
	next := NextID(groups)
	for id := range seen {
		if id >= next {
			next = id + 1
		}
	}
	for gi := range groups {
		for ci := range groups[gi].Collections {
			c := &groups[gi].Collections[ci]
			if seen[c.CollectionID] {
				c.CollectionID = next
				next++
			}
			seen[c.CollectionID] = true
		}
	}
}
