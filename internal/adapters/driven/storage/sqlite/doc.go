// Package sqlite provides the durable offline store on SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements every offline store
// interface through a single database connection:
//
//   - SaleStore: sales recorded while offline
//   - ProductStore: read-through product cache
//   - QueueStore: operations awaiting replay
//   - DeadLetterStore: operations dropped after exhausting their attempts
//   - ReplayLog: history of scheduled replay passes
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Applied versions are tracked in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.tillsync/data/tillsync.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode with a busy timeout.
package sqlite
