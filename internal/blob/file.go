package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"pkt.systems/pslog"

	"github.com/five82/tabshelf/internal/logging"
)

// File stores blobs as files. The primary key maps to path itself; any other
// key is stored beside it as <key>.json.
type File struct {
	path       string
	primaryKey string
	log        pslog.Logger
}

// NewFile returns a file-backed store rooted at path.
func NewFile(path, primaryKey string, logger pslog.Logger) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	logger = logging.OrDiscard(logger).With("component", "blob", "backend", "file", "path", path)
	return &File{path: path, primaryKey: primaryKey, log: logger}, nil
}

// Get reads the blob stored under key.
func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.pathForKey(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.log.Debug("blob load miss", "key", key)
			return nil, ErrNotFound
		}
		f.log.Warn("blob load failed", "key", key, "err", err)
		return nil, fmt.Errorf("read blob %q: %w", key, err)
	}
	f.log.Debug("blob load ok", "key", key, "bytes", len(data))
	return data, nil
}

// Put atomically replaces the blob stored under key.
func (f *File) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := f.write(f.pathForKey(key), data); err != nil {
		f.log.Warn("blob save failed", "key", key, "err", err)
		return fmt.Errorf("write blob %q: %w", key, err)
	}
	f.log.Trace("blob save ok", "key", key, "bytes", len(data))
	return nil
}

// Close is a no-op; every Put leaves a complete file behind.
func (f *File) Close() error { return nil }

func (f *File) write(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "blob-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (f *File) pathForKey(key string) string {
	if key == f.primaryKey {
		return f.path
	}
	name := sanitize(key)
	if name == "" {
		name = "unknown"
	}
	return filepath.Join(filepath.Dir(f.path), name+".json")
}

func sanitize(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
