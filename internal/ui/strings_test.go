package ui

import "testing"

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"  hello  ", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 2, "he"},
		{"hello", 0, "hello"},
		{"héllo wörld", 8, "héllo..."},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.limit); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
		}
	}
}

func TestFit(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"abc", 5, "abc  "},
		{"abcdefgh", 6, "abc..."},
		{" indented", 6, " in..."},
		{" go", 5, " go  "},
		{"anything", 0, ""},
	}
	for _, tc := range cases {
		if got := fit(tc.in, tc.width); got != tc.want {
			t.Fatalf("fit(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}

func TestShortenPath(t *testing.T) {
	if got := shortenPath("/tmp/x.log", 20); got != "/tmp/x.log" {
		t.Fatalf("shortenPath short = %q, want unchanged", got)
	}
	got := shortenPath("/home/me/.local/state/tabshelf/tabshelf.log", 20)
	if got != "…/tabshelf.log" {
		t.Fatalf("shortenPath = %q, want …/tabshelf.log", got)
	}
	if n := len([]rune(shortenPath("/averyveryverylongdirectoryname", 8))); n != 8 {
		t.Fatalf("shortenPath without boundary = %d runes, want 8", n)
	}
}
