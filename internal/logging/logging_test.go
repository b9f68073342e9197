package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenFile_WritesStructuredEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tabshelf.log")

	logger, closer, err := OpenFile(path, "debug")
	if err != nil {
		t.Fatalf("OpenFile returned error: %v", err)
	}
	logger.Info("hello", "component", "test")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		t.Fatalf("log file is empty")
	}
	var entry map[string]any
	if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
		t.Fatalf("decode log entry: %v", err)
	}
	if entry["component"] != "test" {
		t.Fatalf("component = %v, want test", entry["component"])
	}
}

func TestOpenFile_EmptyPathErrors(t *testing.T) {
	if _, _, err := OpenFile("  ", "info"); err == nil {
		t.Fatalf("OpenFile returned nil error, want error")
	}
}

func TestOptions_LevelMapping(t *testing.T) {
	if got := Options("DEBUG").MinLevel; got != Options("debug").MinLevel {
		t.Fatalf("level parsing should be case-insensitive")
	}
	if got := Options("bogus").MinLevel; got != Options("info").MinLevel {
		t.Fatalf("unknown level should fall back to info")
	}
}

func TestOrDiscard_NilReturnsLogger(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Fatalf("OrDiscard(nil) returned nil")
	}
}
