package bulk

import (
	"net/url"
	"strings"
)

// Domain returns the last two labels of rawURL's host ("news.example.com"
// becomes "example.com"). Unparseable input is returned unchanged.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	labels := strings.Split(u.Hostname(), ".")
	if len(labels) > 2 {
		labels = labels[len(labels)-2:]
	}
	return strings.Join(labels, ".")
}
