package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the resolved tabshelf configuration.
type Config struct {
	Storage Storage
	Browser Browser
	Monitor Monitor
	Log     Log
}

// Storage selects where collections are persisted.
type Storage struct {
	Backend    string `mapstructure:"backend"`
	Path       string `mapstructure:"path"`
	SQLitePath string `mapstructure:"sqlite_path"`
	Key        string `mapstructure:"key"`
}

// Browser locates the DevTools endpoint and the live URLs to hide.
type Browser struct {
	DevToolsURL string   `mapstructure:"devtools_url"`
	Ignore      []string `mapstructure:"ignore"`
}

// Monitor holds the live tab poll cadence, in seconds.
type Monitor struct {
	PollSeconds            int `mapstructure:"poll_seconds"`
	StartDelaySeconds      int `mapstructure:"start_delay_seconds"`
	TransientReloadSeconds int `mapstructure:"transient_reload_seconds"`
}

// Log configures the application log file.
type Log struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

const (
	defaultConfigPath  = "~/.config/tabshelf/config.toml"
	defaultStoragePath = "~/.local/share/tabshelf/collections.json"
	defaultSQLitePath  = "~/.local/share/tabshelf/tabshelf.db"
	defaultStorageKey  = "collectionsData"
	defaultDevToolsURL = "http://127.0.0.1:9222"
	defaultLogPath     = "~/.local/state/tabshelf/tabshelf.log"
	defaultLogLevel    = "info"

	envPrefix = "TABSHELF"
)

var defaultIgnore = []string{"chrome://*", "devtools://*", "chrome-extension://*"}

// Default returns the configuration used when no file or environment
// overrides are present. Paths are not yet expanded.
func Default() Config {
	return Config{
		Storage: Storage{
			Backend:    "file",
			Path:       defaultStoragePath,
			SQLitePath: defaultSQLitePath,
			Key:        defaultStorageKey,
		},
		Browser: Browser{
			DevToolsURL: defaultDevToolsURL,
			Ignore:      append([]string(nil), defaultIgnore...),
		},
		Monitor: Monitor{
			PollSeconds:            2,
			StartDelaySeconds:      5,
			TransientReloadSeconds: 3,
		},
		Log: Log{Path: defaultLogPath, Level: defaultLogLevel},
	}
}

// Load reads the config file at path (the default location when empty),
// then applies TABSHELF_* environment overrides. A .env file in the working
// directory is loaded first when present. A missing config file is not an
// error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	def := Default()
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("storage.backend", def.Storage.Backend)
	v.SetDefault("storage.path", def.Storage.Path)
	v.SetDefault("storage.sqlite_path", def.Storage.SQLitePath)
	v.SetDefault("storage.key", def.Storage.Key)
	v.SetDefault("browser.devtools_url", def.Browser.DevToolsURL)
	v.SetDefault("browser.ignore", def.Browser.Ignore)
	v.SetDefault("monitor.poll_seconds", def.Monitor.PollSeconds)
	v.SetDefault("monitor.start_delay_seconds", def.Monitor.StartDelaySeconds)
	v.SetDefault("monitor.transient_reload_seconds", def.Monitor.TransientReloadSeconds)
	v.SetDefault("log.path", def.Log.Path)
	v.SetDefault("log.level", def.Log.Level)

	if _, err := os.Stat(resolved); err == nil {
		v.SetConfigFile(resolved)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize(def)
	return cfg, nil
}

// normalize trims values, restores defaults for blanks and expands paths.
func (c *Config) normalize(def Config) {
	c.Storage.Backend = strings.ToLower(orDefault(c.Storage.Backend, def.Storage.Backend))
	c.Storage.Path = mustExpand(orDefault(c.Storage.Path, def.Storage.Path))
	c.Storage.SQLitePath = mustExpand(orDefault(c.Storage.SQLitePath, def.Storage.SQLitePath))
	c.Storage.Key = orDefault(c.Storage.Key, def.Storage.Key)
	c.Browser.DevToolsURL = orDefault(c.Browser.DevToolsURL, def.Browser.DevToolsURL)
	c.Log.Path = mustExpand(orDefault(c.Log.Path, def.Log.Path))
	c.Log.Level = strings.ToLower(orDefault(c.Log.Level, def.Log.Level))

	ignore := c.Browser.Ignore[:0]
	for _, pattern := range c.Browser.Ignore {
		if p := strings.TrimSpace(pattern); p != "" {
			ignore = append(ignore, p)
		}
	}
	c.Browser.Ignore = ignore

	if c.Monitor.PollSeconds <= 0 {
		c.Monitor.PollSeconds = def.Monitor.PollSeconds
	}
	if c.Monitor.StartDelaySeconds < 0 {
		c.Monitor.StartDelaySeconds = 0
	}
	if c.Monitor.TransientReloadSeconds <= 0 {
		c.Monitor.TransientReloadSeconds = def.Monitor.TransientReloadSeconds
	}
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
