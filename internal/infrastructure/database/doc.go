// Package database provides the SQLite persistence layer for Spectra Core.
//
// The database stores device properties (the persistence collaborator
// consumed during controller creation) and any provisioning data. Schema
// changes are applied through embedded migrations registered by the
// top-level migrations package.
//
// # Usage
//
//	db, err := database.Open(database.Config{
//	    Path:        cfg.Database.Path,
//	    WALMode:     cfg.Database.WALMode,
//	    BusyTimeout: cfg.Database.BusyTimeout,
//	})
//	if err != nil { ... }
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil { ... }
//
// # Concurrency
//
// The connection pool is limited to a single connection: SQLite supports
// one writer, and the property store is read-mostly. WAL mode keeps reads
// from blocking during the occasional write.
package database
