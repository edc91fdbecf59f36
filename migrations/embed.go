// Package migrations embeds SQL migration files into the binary.
//
// This allows Gray Dispatch to run migrations without needing the SQL
// files present on the filesystem - they're compiled into the executable.
package migrations

import (
	"embed"

	"github.com/nerrad567/gray-dispatch/internal/journal"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	// Register embedded migrations with the journal package.
	// The embed directive above captures all .sql files in this directory.
	journal.MigrationsFS = migrationsFS
	journal.MigrationsDir = "." // Files are at root of embedded FS
}
