package host

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLFilterMatch(t *testing.T) {
	f, err := NewURLFilter([]string{"chrome://*", "", "devtools://*", "*://*.internal.test/*"})
	require.NoError(t, err)
	assert.Equal(t, []string{"chrome://*", "devtools://*", "*://*.internal.test/*"}, f.Patterns())

	cases := map[string]bool{
		"chrome://newtab/":              true,
		"devtools://devtools/inspector": true,
		"https://wiki.internal.test/a":  true,
		"https://go.dev/":               false,
		"":                              false,
	}
	for url, want := range cases {
		assert.Equal(t, want, f.Match(url), url)
	}

	var none *URLFilter
	assert.False(t, none.Match("chrome://newtab/"))
}

func TestURLFilterRejectsBadPattern(t *testing.T) {
	_, err := NewURLFilter([]string{"[unterminated"})
	assert.Error(t, err)
}

func TestFilteredKeepsHostIndexes(t *testing.T) {
	m := NewMemory()
	w := m.AddWindow(
		LiveTab{Title: "New Tab", URL: "chrome://newtab/"},
		LiveTab{Title: "Go", URL: "https://go.dev/"},
	)
	f, err := NewURLFilter([]string{"chrome://*"})
	require.NoError(t, err)
	p := NewFiltered(m, f)

	tabs, err := p.QueryTabs(context.Background(), Query{WindowID: w.ID})
	require.NoError(t, err)
	require.Len(t, tabs, 1)
	assert.Equal(t, "Go", tabs[0].Title)
	assert.Equal(t, 1, tabs[0].Index)

	empty, err := NewURLFilter(nil)
	require.NoError(t, err)
	assert.Same(t, m, NewFiltered(m, empty))
}
