package store

import (
	"database/sql"
	"runtime"
	"sync"
	"weak"
)

// Registry maps a database connection to the Store that opened it.
//
// Entries hold weak pointers, so registering a Store never extends its
// lifetime. Once a Store becomes unreachable and is collected, Resolve on
// its connection returns nil and the entry is dropped.
//
// Thread-safety: all methods are safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	entries map[*sql.DB]weak.Pointer[Store]
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[*sql.DB]weak.Pointer[Store])}
}

// Register associates db with s. Registering the same connection again
// overwrites the previous owner.
func (r *Registry) Register(db *sql.DB, s *Store) {
	if r == nil || db == nil || s == nil {
		return
	}
	wp := weak.Make(s)

	r.mu.Lock()
	r.entries[db] = wp
	r.mu.Unlock()

	// The cleanup must not reference s, or s would never be collected.
	runtime.AddCleanup(s, r.forget, db)
}

// Resolve returns the live Store registered for db, or nil when db was never
// registered or its Store has been collected. It never panics.
func (r *Registry) Resolve(db *sql.DB) *Store {
	if r == nil || db == nil {
		return nil
	}
	r.mu.Lock()
	wp, ok := r.entries[db]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return wp.Value()
}

// Unregister removes the entry for db.
func (r *Registry) Unregister(db *sql.DB) {
	if r == nil || db == nil {
		return
	}
	r.mu.Lock()
	delete(r.entries, db)
	r.mu.Unlock()
}

// Len returns the number of entries, including ones whose Store has been
// collected but whose cleanup has not run yet.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// forget drops the entry for db once its Store has been collected. An entry
// re-registered to a different, still-live Store is kept.
func (r *Registry) forget(db *sql.DB) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if wp, ok := r.entries[db]; ok && wp.Value() == nil {
		delete(r.entries, db)
	}
}
