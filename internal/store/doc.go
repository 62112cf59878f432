// Package store provides SQLite-backed storage for guardrails stories and tasks.
//
// A Store owns one database file, <dir>/guardrails.db, holding two tables:
//   - stories: named stories with a free-text description
//   - tasks: named tasks, each belonging to one story (ON DELETE CASCADE)
//
// # Ownership
//
// Every Story and Task materialized from a query is bound to the Store that
// produced the session which loaded it. Navigation methods (Story.Tasks,
// Task.Story) use that owner to open their own short-lived session, so
// callers never pass the Store around alongside its records.
//
// Binding happens in a single load hook that runs once per scanned row. The
// hook resolves the owner through a Registry keyed by connection. The
// Registry holds weak pointers: it never keeps a Store alive, and a
// connection whose Store has been collected resolves to nil. A Registry is
// an explicit value passed to Open, never a process global, so several
// Stores in one process stay isolated.
//
// A record with no owner (built in memory, or loaded after its Store was
// collected) keeps its plain fields but fails navigation with
// ErrDetachedRecord.
//
// # Sessions
//
// Every query path opens its own transaction-backed Session and releases it
// on every exit path, including errors and panics. Sessions are never
// shared between callers.
//
// # Database Configuration
//
//   - WAL mode: concurrent readers from other processes
//   - busy_timeout: SQLite's own lock wait (default 5 seconds)
//   - foreign_keys=ON: enforces the task -> story cascade
package store
