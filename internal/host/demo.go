package host

// SeedDemo fills m with two windows of sample tabs for --demo runs.
func SeedDemo(m *Memory) {
	m.AddWindow(
		LiveTab{Title: "The Go Programming Language", URL: "https://go.dev/"},
		LiveTab{Title: "Go Packages", URL: "https://pkg.go.dev/"},
		LiveTab{Title: "Bubble Tea", URL: "https://github.com/charmbracelet/bubbletea"},
		LiveTab{Title: "Lip Gloss", URL: "https://github.com/charmbracelet/lipgloss"},
	)
	m.AddWindow(
		LiveTab{Title: "Hacker News", URL: "https://news.ycombinator.com/"},
		LiveTab{Title: "Chrome DevTools Protocol", URL: "https://chromedevtools.github.io/devtools-protocol/"},
		LiveTab{Title: "SQLite Documentation", URL: "https://www.sqlite.org/docs.html"},
	)
}
