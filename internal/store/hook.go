package store

// owned is implemented by every record type the load hook can bind.
type owned interface {
	bind(*Store)
}

// hydrate is the load hook. It runs once for every record scanned from a
// row, before the record reaches a caller, and binds the record to the
// Store its session's registry resolves for the session's connection.
//
// A nil session (record built in memory) or an unresolvable connection
// leaves the record detached.
func hydrate[R owned](sess *Session, rec R) R {
	if sess == nil {
		return rec
	}
	if owner := sess.registry.Resolve(sess.db); owner != nil {
		rec.bind(owner)
	}
	return rec
}
