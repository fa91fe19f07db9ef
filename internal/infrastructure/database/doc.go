// Package database provides SQLite connection management for Relay Hub Core.
//
// This package manages:
//   - Opening and configuring the SQLite database (WAL mode, busy timeout)
//   - Schema migrations from embedded SQL files
//   - Health checks and connection pool statistics
//
// SQLite is configured for a single writer with multiple readers, which
// matches the hub's write pattern: one process appending events and
// mirroring snapshots.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: "./data/relayhub.db", WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
