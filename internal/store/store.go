package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// FileName is the database file created under the ops directory.
const FileName = "guardrails.db"

// DefaultBusyTimeout is how long SQLite waits on a locked database before
// reporting SQLITE_BUSY.
const DefaultBusyTimeout = 5 * time.Second

// Store owns the connection to one guardrails database file.
type Store struct {
	db       *sql.DB
	path     string
	registry *Registry
	logger   *slog.Logger
}

// Option configures Open.
type Option func(*options)

type options struct {
	registry    *Registry
	logger      *slog.Logger
	busyTimeout time.Duration
}

// WithRegistry registers the Store in r instead of a private registry.
// Stores sharing a Registry still resolve to themselves, because entries
// are keyed by connection.
func WithRegistry(r *Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithLogger sets the logger used for store diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBusyTimeout sets SQLite's busy timeout. Zero fails immediately on a
// locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) { o.busyTimeout = d }
}

// Open creates or opens <dir>/guardrails.db, ensures the schema exists and
// registers the returned Store as the owner of its connection.
//
// dir must already exist. Opening an existing database with the current
// schema is a no-op apart from the registration. On failure no Store is
// returned and the connection is closed.
func Open(dir string, opts ...Option) (*Store, error) {
	o := options{busyTimeout: DefaultBusyTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = NewRegistry()
	}
	if o.logger == nil {
		o.logger = slog.Default().With("component", "store")
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w: %v", ErrStorageUnavailable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open store: %w: not a directory: %s", ErrStorageUnavailable, dir)
	}

	path := filepath.Join(dir, FileName)
	if err := checkWritable(path); err != nil {
		return nil, fmt.Errorf("open store: %w: %v", ErrStorageUnavailable, err)
	}
	dsn, err := buildDSN(path, o.busyTimeout)
	if err != nil {
		return nil, fmt.Errorf("open store: %w: %v", ErrStorageUnavailable, err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w: %v", ErrStorageUnavailable, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open store: %w: %v", ErrStorageUnavailable, err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("open store: %w: %v", ErrStorageUnavailable, err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("open store: %w: %v", ErrSchemaBootstrap, err)
	}

	s := &Store{
		db:       db,
		path:     path,
		registry: o.registry,
		logger:   o.logger,
	}
	s.registry.Register(db, s)

	s.logger.Info("store opened", "path", path)
	return s, nil
}

// Close unregisters the Store and closes its connection. Records it loaded
// fail navigation with ErrStorageUnavailable afterwards. Close must not run
// concurrently with other operations on the Store.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	db := s.db
	s.db = nil
	s.registry.Unregister(db)
	return db.Close()
}

// DB returns the underlying connection, or nil once the Store is closed. It
// is also the key under which the Store is registered.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Registry returns the registry the Store is registered in.
func (s *Store) Registry() *Registry {
	return s.registry
}

// applyPragmas checks the per-connection settings requested in the DSN.
func applyPragmas(db *sql.DB) error {
	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		return fmt.Errorf("read foreign_keys: %w", err)
	}
	if fk != 1 {
		return fmt.Errorf("foreign_keys = %d, expected 1", fk)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		return fmt.Errorf("set synchronous: %w", err)
	}
	return nil
}

// applySchema creates tables and indexes if they don't exist.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return tx.Commit()
}

// buildDSN returns the file: URI for path with the driver parameters. The
// path is made absolute and percent-escaped, so '?', '#' and '%' in
// directory names stay part of the file name.
func buildDSN(path string, busyTimeout time.Duration) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=%d",
		u.String(), busyTimeout.Milliseconds()), nil
}

// checkWritable opens (creating if needed) the database file for read/write.
// SQLite silently falls back to read-only, which would only surface on the
// first insert.
func checkWritable(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
