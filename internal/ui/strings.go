package ui

import (
	"strings"
	"unicode/utf8"
)

const ellipsis = "..."

// truncate trims s and cuts it to limit runes. A limit of zero or less
// leaves it alone.
func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return s
	}
	return clip(s, limit)
}

func clip(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	if limit <= len(ellipsis) {
		return string(runes[:limit])
	}
	return string(runes[:limit-len(ellipsis)]) + ellipsis
}

// fit clips or pads a card or row label to exactly width cells. Leading
// spaces survive so callers can indent.
func fit(text string, width int) string {
	if width <= 0 {
		return ""
	}
	text = clip(strings.TrimRight(text, " "), width)
	return text + strings.Repeat(" ", width-utf8.RuneCountInString(text))
}

// shortenPath keeps the end of a path, which names the file, and cuts at a
// directory boundary when one fits: /home/me/.local/state/tabshelf.log
// becomes …/tabshelf.log.
func shortenPath(path string, limit int) string {
	path = strings.TrimSpace(path)
	runes := []rune(path)
	if limit <= 0 || len(runes) <= limit {
		return path
	}
	if limit == 1 {
		return "…"
	}
	tail := string(runes[len(runes)-(limit-1):])
	if i := strings.IndexByte(tail, '/'); i >= 0 && i < len(tail)-1 {
		tail = tail[i:]
	}
	return "…" + tail
}
