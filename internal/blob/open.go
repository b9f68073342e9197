package blob

import (
	"fmt"
	"strings"

	"pkt.systems/pslog"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Options select and configure a backend.
type Options struct {
	Backend    string
	Path       string // file backend document path
	SQLitePath string
	PrimaryKey string
}

// Open returns the backend named in opts.
func Open(opts Options, logger pslog.Logger) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		return NewFile(opts.Path, opts.PrimaryKey, logger)
	case BackendSQLite:
		return OpenSQLite(opts.SQLitePath, logger)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
