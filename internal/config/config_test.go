package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Storage.Backend != "file" {
		t.Fatalf("Storage.Backend = %q, want %q", cfg.Storage.Backend, "file")
	}
	wantPath, err := expandPath(defaultStoragePath)
	if err != nil {
		t.Fatalf("expandPath(defaultStoragePath) returned error: %v", err)
	}
	if cfg.Storage.Path != wantPath {
		t.Fatalf("Storage.Path = %q, want %q", cfg.Storage.Path, wantPath)
	}
	if cfg.Storage.Key != defaultStorageKey {
		t.Fatalf("Storage.Key = %q, want %q", cfg.Storage.Key, defaultStorageKey)
	}
	if cfg.Browser.DevToolsURL != defaultDevToolsURL {
		t.Fatalf("Browser.DevToolsURL = %q, want %q", cfg.Browser.DevToolsURL, defaultDevToolsURL)
	}
	if !reflect.DeepEqual(cfg.Browser.Ignore, defaultIgnore) {
		t.Fatalf("Browser.Ignore = %v, want %v", cfg.Browser.Ignore, defaultIgnore)
	}
	if cfg.Monitor != (Monitor{PollSeconds: 2, StartDelaySeconds: 5, TransientReloadSeconds: 3}) {
		t.Fatalf("Monitor = %+v, want defaults", cfg.Monitor)
	}
	if !strings.HasPrefix(cfg.Log.Path, home) {
		t.Fatalf("Log.Path = %q, want it under HOME %q", cfg.Log.Path, home)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
[storage]
backend = "  SQLite "
sqlite_path = "~/data/shelf.db"

[browser]
devtools_url = "http://10.0.0.5:9333"
ignore = ["about:*", "  ", "file://*"]

[monitor]
poll_seconds = 0
start_delay_seconds = 1

[log]
level = "DEBUG"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Fatalf("Storage.Backend = %q, want %q", cfg.Storage.Backend, "sqlite")
	}
	if cfg.Storage.SQLitePath != filepath.Join(home, "data", "shelf.db") {
		t.Fatalf("Storage.SQLitePath = %q, want it under HOME", cfg.Storage.SQLitePath)
	}
	if cfg.Browser.DevToolsURL != "http://10.0.0.5:9333" {
		t.Fatalf("Browser.DevToolsURL = %q", cfg.Browser.DevToolsURL)
	}
	if want := []string{"about:*", "file://*"}; !reflect.DeepEqual(cfg.Browser.Ignore, want) {
		t.Fatalf("Browser.Ignore = %v, want %v", cfg.Browser.Ignore, want)
	}
	if cfg.Monitor.PollSeconds != 2 {
		t.Fatalf("Monitor.PollSeconds = %d, want default 2", cfg.Monitor.PollSeconds)
	}
	if cfg.Monitor.StartDelaySeconds != 1 {
		t.Fatalf("Monitor.StartDelaySeconds = %d, want 1", cfg.Monitor.StartDelaySeconds)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TABSHELF_STORAGE_KEY", "otherKey")
	t.Setenv("TABSHELF_MONITOR_POLL_SECONDS", "7")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[storage]\nkey = \"fileKey\"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Storage.Key != "otherKey" {
		t.Fatalf("Storage.Key = %q, want %q", cfg.Storage.Key, "otherKey")
	}
	if cfg.Monitor.PollSeconds != 7 {
		t.Fatalf("Monitor.PollSeconds = %d, want 7", cfg.Monitor.PollSeconds)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`[storage`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

func TestDefault_ReturnsFreshIgnoreSlice(t *testing.T) {
	a := Default()
	a.Browser.Ignore[0] = "changed"
	if Default().Browser.Ignore[0] != defaultIgnore[0] {
		t.Fatalf("Default shares its ignore slice")
	}
}
