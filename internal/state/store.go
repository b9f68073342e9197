package state

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/five82/tabshelf/internal/host"
)

// Snapshot is the latest live tab data available to the UI.
type Snapshot struct {
	Tabs                []host.LiveTab
	HasTabs             bool
	Version             uint64
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the host has failed several polls in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// HasTransient reports whether any tab has neither a title nor a URL yet.
func (s Snapshot) HasTransient() bool {
	for _, t := range s.Tabs {
		if t.Title == "" && t.URL == "" {
			return true
		}
	}
	return false
}

// Windows returns the window ids in ascending order.
func (s Snapshot) Windows() []int {
	order, _ := host.GroupByWindow(s.Tabs)
	return order
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update records a poll result and reports whether the visible tab list
// changed. When err is non-nil the previous tabs are kept.
func (s *Store) Update(tabs []host.LiveTab, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return false
	}

	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
	changed := !s.snapshot.HasTabs || !slices.Equal(s.snapshot.Tabs, tabs)
	if changed {
		s.snapshot.Tabs = cloneTabs(tabs)
		s.snapshot.Version++
	}
	s.snapshot.HasTabs = true
	return changed
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Tabs = cloneTabs(s.snapshot.Tabs)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneTabs(tabs []host.LiveTab) []host.LiveTab {
	if len(tabs) == 0 {
		return nil
	}
	return slices.Clone(tabs)
}
