// Package migrations embeds the SQL schema so the binary can migrate a
// fresh database without any files on disk.
package migrations

import (
	"embed"

	"github.com/nerrad567/gray-logic-onoff/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.RegisterMigrations(migrationsFS, ".")
}
