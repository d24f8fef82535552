// Package database provides SQLite connectivity for the evaluation service.
//
// It manages:
//   - A single-writer connection with WAL mode and busy timeout
//   - Schema migrations read from MigrationsFS (embedded by package migrations)
//   - In-memory databases for tests (Path = MemoryPath)
//
// Usage:
//
//	db, err := database.Open(ctx, database.ConfigFrom(cfg.Database))
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if _, err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with an
// optional matching .down.sql. Migrations are additive: new columns must be
// nullable or carry a default.
package database
