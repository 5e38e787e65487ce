package instance

import (
	"context"
	"database/sql"
	"testing"

	"github.com/nerrad567/gray-logic-onoff/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-onoff/internal/infrastructure/database"
	_ "github.com/nerrad567/gray-logic-onoff/migrations" // registers the schema
)

// setupTestDB opens an in-memory database with the production schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(context.Background(), config.DatabaseConfig{Path: database.MemoryPath, BusyTimeout: 5})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // test cleanup

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db.DB
}
