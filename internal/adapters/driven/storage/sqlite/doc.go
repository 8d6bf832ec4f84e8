// Package sqlite provides a SQLite-backed implementation of driven.SessionStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Sessions, their documents and their
// embedding records live in a single database file.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration records its own version in
// schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.lecturelens/data/lecturelens.db
//
// # Thread Safety
//
// All operations are thread-safe. Record collections are replaced inside a single
// transaction, so readers never observe a partially written collection.
package sqlite
