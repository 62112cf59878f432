package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrStorageUnavailable is returned when the database file or directory
	// cannot be opened, or a storage-level operation fails (lock conflict,
	// disk error, closed store).
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrSchemaBootstrap is returned by Open when the schema cannot be created.
	ErrSchemaBootstrap = errors.New("schema bootstrap failed")

	// ErrDetachedRecord is returned by navigation methods on a record that
	// is not bound to a Store.
	ErrDetachedRecord = errors.New("record is not attached to a store")

	// ErrNotFound is returned when a requested story or task does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName is returned when a story or task name is already taken.
	ErrDuplicateName = errors.New("name already exists")

	// ErrInvalidName is returned for empty names.
	ErrInvalidName = errors.New("invalid name")
)

// classify wraps a database error in the sentinel matching its cause.
// Errors that already carry a sentinel are returned unchanged.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		ErrStorageUnavailable, ErrSchemaBootstrap, ErrDetachedRecord,
		ErrNotFound, ErrDuplicateName, ErrInvalidName,
	} {
		if errors.Is(err, known) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrConstraint:
			switch sqliteErr.ExtendedCode {
			case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
				return fmt.Errorf("%s: %w: %v", op, ErrDuplicateName, err)
			case sqlite3.ErrConstraintForeignKey:
				return fmt.Errorf("%s: %w: %v", op, ErrNotFound, err)
			}
		case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrCantOpen,
			sqlite3.ErrIoErr, sqlite3.ErrReadonly, sqlite3.ErrFull,
			sqlite3.ErrPerm, sqlite3.ErrNotADB, sqlite3.ErrCorrupt:
			return fmt.Errorf("%s: %w: %v", op, ErrStorageUnavailable, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("%s: %w: %v", op, ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
