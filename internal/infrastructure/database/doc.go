// Package database provides SQLite connectivity and schema migrations.
//
// It holds device instances and the per-instance state history. The
// connection is configured with WAL mode and a busy timeout, and the file
// is restricted to its owner (0600).
//
// Usage:
//
//	db, err := database.Open(ctx, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// # Migrations
//
// Migrations are read from the filesystem registered with
// RegisterMigrations (the migrations package embeds them). They are
// additive only: new columns are NULLABLE or carry a DEFAULT, and every
// .up.sql has a matching .down.sql.
package database
