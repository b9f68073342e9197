// Package config loads tabshelf's configuration.
//
// # Sources
//
// Values are resolved in this order, later sources winning:
//
//  1. Built-in defaults (see Default)
//  2. The TOML file at ~/.config/tabshelf/config.toml, or the path given to Load
//  3. TABSHELF_* environment variables, with "." in a key replaced by "_"
//     (TABSHELF_STORAGE_BACKEND overrides storage.backend)
//
// A .env file in the working directory is loaded into the environment before
// step 3. A missing config file is not an error.
//
// # TOML Format
//
//	[storage]
//	backend = "file"          # or "sqlite"
//	path = "~/.local/share/tabshelf/collections.json"
//	sqlite_path = "~/.local/share/tabshelf/tabshelf.db"
//	key = "collectionsData"
//
//	[browser]
//	devtools_url = "http://127.0.0.1:9222"
//	ignore = ["chrome://*", "devtools://*", "chrome-extension://*"]
//
//	[monitor]
//	poll_seconds = 2
//	start_delay_seconds = 5
//	transient_reload_seconds = 3
//
//	[log]
//	path = "~/.local/state/tabshelf/tabshelf.log"
//	level = "info"            # trace, debug, info or error
//
// Paths accept a leading "~" and are returned absolute. Blank values fall
// back to their defaults.
package config
