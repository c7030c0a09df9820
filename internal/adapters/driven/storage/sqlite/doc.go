// Package sqlite provides the embedded SQLite storage backend.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. One database file holds the records,
// relations, change queue and holdings tables; the stores themselves live in
// the shared sqldb package.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.rawrepo/data/rawrepo.db
//
// # Thread Safety
//
// All operations are thread-safe. Writers are serialised by SQLite in WAL mode
// with a busy timeout, which makes each record save last-writer-wins per key.
package sqlite
