package host

import (
	"context"
	"fmt"

	"github.com/gobwas/glob"
)

// URLFilter matches URLs against a set of glob patterns.
type URLFilter struct {
	patterns []string
	globs    []glob.Glob
}

// NewURLFilter compiles patterns. An empty list matches nothing.
func NewURLFilter(patterns []string) (*URLFilter, error) {
	f := &URLFilter{}
	for _, p := range patterns {
		if p == "" {
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile ignore pattern %q: %w", p, err)
		}
		f.patterns = append(f.patterns, p)
		f.globs = append(f.globs, g)
	}
	return f, nil
}

// Match reports whether url matches any pattern.
func (f *URLFilter) Match(url string) bool {
	if f == nil {
		return false
	}
	for _, g := range f.globs {
		if g.Match(url) {
			return true
		}
	}
	return false
}

// Patterns returns the compiled patterns.
func (f *URLFilter) Patterns() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.patterns...)
}

// Filtered hides tabs whose URL matches the filter from QueryTabs. Index
// values are left as the host reported them since they stay authoritative
// for MoveTab.
type Filtered struct {
	Provider
	filter *URLFilter
}

// NewFiltered wraps p. A nil or empty filter returns p unchanged.
func NewFiltered(p Provider, f *URLFilter) Provider {
	if f == nil || len(f.globs) == 0 {
		return p
	}
	return &Filtered{Provider: p, filter: f}
}

func (f *Filtered) QueryTabs(ctx context.Context, q Query) ([]LiveTab, error) {
	tabs, err := f.Provider.QueryTabs(ctx, q)
	if err != nil {
		return nil, err
	}
	out := tabs[:0:0]
	for _, t := range tabs {
		if f.filter.Match(t.URL) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
