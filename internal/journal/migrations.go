package journal

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// Migration filename parsing constants.
const (
	// migrationFilenameParts is the expected number of parts in a migration filename.
	// Format: YYYYMMDD_HHMMSS_description.up.sql (3 parts when split by "_")
	migrationFilenameParts = 3

	// minVersionParts is the minimum parts needed to extract a version.
	minVersionParts = 2
)

// MigrationsFS should be set by the migrations package to embed migration
// files. This allows them to be compiled into the binary.
//
// Usage:
//
//	//go:embed *.sql
//	var migrationsFS embed.FS
//
//	func init() {
//	    journal.MigrationsFS = migrationsFS
//	    journal.MigrationsDir = "."
//	}
var MigrationsFS embed.FS

// MigrationsDir is the directory within MigrationsFS containing migration files.
// Can be set to "." if files are at the root of the embedded filesystem.
var MigrationsDir = "migrations"

// migration represents a single schema migration.
type migration struct {
	// version is the migration version, extracted from the filename.
	// Format: YYYYMMDD_HHMMSS (e.g., 20260815_090000)
	version string

	// name is the human-readable migration name.
	name string

	// upSQL contains the SQL to apply this migration.
	upSQL string
}

// Migrate applies all pending migrations to the journal database.
// Migrations are applied in version order (oldest first), each in its own
// transaction: if migration N fails, 1..N-1 stay committed, N rolls back,
// and re-running Migrate continues from N.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: If any migration fails (that migration is rolled back)
func (j *Journal) Migrate(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		)`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	migrations, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	if len(migrations) == 0 {
		return nil
	}

	applied := make(map[string]bool)
	rows, err := j.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("getting applied migrations: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return fmt.Errorf("scanning applied migration: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading applied migrations: %w", err)
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		if err := j.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("applying migration %s (%s): %w", m.version, m.name, err)
		}
	}

	return nil
}

// applyMigration runs one migration in its own transaction and records it.
func (j *Journal) applyMigration(ctx context.Context, m migration) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, m.upSQL); err != nil {
		return fmt.Errorf("executing migration SQL: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, applied_at) VALUES (?, datetime('now'))",
		m.version,
	); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}

	return tx.Commit()
}

// loadMigrations reads all *.up.sql files from the embedded filesystem,
// sorted by version.
func loadMigrations() ([]migration, error) {
	var migrations []migration

	err := fs.WalkDir(MigrationsFS, MigrationsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".up.sql") {
			return nil
		}

		version, name, parseErr := parseMigrationFilename(d.Name())
		if parseErr != nil {
			return parseErr
		}

		data, readErr := fs.ReadFile(MigrationsFS, path)
		if readErr != nil {
			return fmt.Errorf("reading %s: %w", path, readErr)
		}

		migrations = append(migrations, migration{
			version: version,
			name:    name,
			upSQL:   string(data),
		})
		return nil
	})
	if err != nil {
		// A zero-value MigrationsFS (no migrations package imported) is
		// treated as no migrations, not a failure.
		if strings.Contains(err.Error(), "file does not exist") {
			return nil, nil
		}
		return nil, err
	}

	sort.Slice(migrations, func(i, k int) bool {
		return migrations[i].version < migrations[k].version
	})

	return migrations, nil
}

// parseMigrationFilename extracts version and name from a migration filename.
// Expected format: YYYYMMDD_HHMMSS_description.up.sql
func parseMigrationFilename(filename string) (version, name string, err error) {
	base := strings.TrimSuffix(filename, ".up.sql")
	parts := strings.SplitN(base, "_", migrationFilenameParts)
	if len(parts) < minVersionParts {
		return "", "", fmt.Errorf("malformed migration filename: %s", filename)
	}

	version = parts[0] + "_" + parts[1]
	if len(parts) == migrationFilenameParts {
		name = parts[2]
	}
	return version, name, nil
}
