package blob

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"pkt.systems/pslog"

	"github.com/five82/tabshelf/internal/logging"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// SQLite stores blobs in a single sqlite table.
type SQLite struct {
	db  *sql.DB
	log pslog.Logger
}

// OpenSQLite opens (creating if needed) the database at path and applies the
// embedded migrations.
func OpenSQLite(path string, logger pslog.Logger) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	logger = logging.OrDiscard(logger).With("component", "blob", "backend", "sqlite", "path", path)

	if err := runMigrations(path); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	logger.Debug("sqlite blob store ready")
	return &SQLite{db: db, log: logger}, nil
}

func runMigrations(path string) error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, "sqlite3://"+path)
	if err != nil {
		return err
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// Get reads the blob stored under key.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM blobs WHERE key = ?`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.log.Debug("blob load miss", "key", key)
			return nil, ErrNotFound
		}
		s.log.Warn("blob load failed", "key", key, "err", err)
		return nil, fmt.Errorf("read blob %q: %w", key, err)
	}
	s.log.Debug("blob load ok", "key", key, "bytes", len(data))
	return data, nil
}

// Put upserts the blob stored under key.
func (s *SQLite) Put(ctx context.Context, key string, data []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin blob write: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, data)
	if err != nil {
		s.log.Warn("blob save failed", "key", key, "err", err)
		return fmt.Errorf("write blob %q: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		s.log.Warn("blob save failed", "key", key, "err", err)
		return fmt.Errorf("commit blob %q: %w", key, err)
	}
	s.log.Trace("blob save ok", "key", key, "bytes", len(data))
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
