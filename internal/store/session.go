package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Session is a short-lived, transaction-backed handle on a Store's
// connection. Records scanned through a Session are bound to the owner its
// registry resolves for the connection.
type Session struct {
	id       string
	db       *sql.DB
	tx       *sql.Tx
	registry *Registry
	logger   *slog.Logger
	closed   bool
}

// ID returns the session's UUIDv7, used to correlate debug logs.
func (sess *Session) ID() string {
	return sess.id
}

// openSession begins a transaction on the Store's connection.
func (s *Store) openSession(ctx context.Context) (*Session, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("open session: %w: store is closed", ErrStorageUnavailable)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify("open session", err)
	}
	sess := &Session{
		id:       uuid.Must(uuid.NewV7()).String(),
		db:       s.db,
		tx:       tx,
		registry: s.registry,
		logger:   s.logger,
	}
	sess.logger.Debug("session opened", "session", sess.id, "path", s.path)
	return sess, nil
}

// close commits when commit is true and rolls back otherwise. Calling close
// on an already closed session is a no-op.
func (sess *Session) close(commit bool) error {
	if sess.closed {
		return nil
	}
	sess.closed = true

	var err error
	if commit {
		err = sess.tx.Commit()
	} else {
		err = sess.tx.Rollback()
	}
	sess.logger.Debug("session closed", "session", sess.id, "committed", commit && err == nil)
	if err != nil {
		return classify("close session", err)
	}
	return nil
}

// view runs fn inside a session that is always rolled back, so nothing fn
// writes is kept.
func (s *Store) view(ctx context.Context, fn func(*Session) error) error {
	return s.withSession(ctx, false, fn)
}

// update runs fn inside a session, committing if fn succeeds.
func (s *Store) update(ctx context.Context, fn func(*Session) error) error {
	return s.withSession(ctx, true, fn)
}

// withSession guarantees the session is released on every exit path. The
// rollback is deferred so a panicking fn still returns the connection to the
// pool before the panic propagates.
func (s *Store) withSession(ctx context.Context, commit bool, fn func(*Session) error) (err error) {
	sess, err := s.openSession(ctx)
	if err != nil {
		return err
	}
	defer func() {
		// No-op when the close below already ran
		_ = sess.close(false)
	}()

	if err := fn(sess); err != nil {
		return err
	}
	return sess.close(commit)
}

func (sess *Session) queryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return sess.tx.QueryContext(ctx, query, args...)
}

func (sess *Session) queryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return sess.tx.QueryRowContext(ctx, query, args...)
}

func (sess *Session) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return sess.tx.ExecContext(ctx, query, args...)
}
