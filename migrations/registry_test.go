package migrations

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	raccoon "github.com/VitorBSK/Unit9-Raccoon"
	_ "github.com/mattn/go-sqlite3"
)

func TestFilesystems_ReturnsPostgresAndSQLite(t *testing.T) {
	filesystems, err := Filesystems()
	if err != nil {
		t.Fatalf("filesystems: %v", err)
	}
	if len(filesystems) != 2 {
		t.Fatalf("expected 2 filesystems, got %d", len(filesystems))
	}

	var postgresFound bool
	var sqliteFound bool
	for _, entry := range filesystems {
		matches, globErr := fs.Glob(entry.FS, "*.up.sql")
		if globErr != nil {
			t.Fatalf("glob %s: %v", entry.Dialect, globErr)
		}
		if len(matches) == 0 {
			t.Fatalf("expected %s migration files, got none", entry.Dialect)
		}
		switch entry.Dialect {
		case DialectPostgres:
			postgresFound = true
		case DialectSQLite:
			sqliteFound = true
		}
	}

	if !postgresFound {
		t.Fatalf("expected postgres filesystem")
	}
	if !sqliteFound {
		t.Fatalf("expected sqlite filesystem")
	}
}

func TestRegister_UsesValidationTargets(t *testing.T) {
	var calls []string
	_, err := Register(context.Background(), func(_ context.Context, dialect string, _ string, _ fs.FS) error {
		calls = append(calls, dialect)
		return nil
	}, WithValidationTargets(DialectSQLite))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if len(calls) != 1 {
		t.Fatalf("expected 1 registration call, got %d", len(calls))
	}
	if calls[0] != DialectSQLite {
		t.Fatalf("expected sqlite registration, got %q", calls[0])
	}
}

func TestRegister_DefaultsSourceLabel(t *testing.T) {
	var labels []string
	_, err := Register(context.Background(), func(_ context.Context, _ string, sourceLabel string, _ fs.FS) error {
		labels = append(labels, sourceLabel)
		return nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	for _, label := range labels {
		if label != "raccoon" {
			t.Fatalf("expected default source label raccoon, got %q", label)
		}
	}
}

func TestCoreSchemaMigrationPair_ExistsForBothDialects(t *testing.T) {
	root := raccoon.GetCoreMigrationsFS()
	paths := []string{
		"data/sql/migrations/20250301000000_raccoon_core.up.sql",
		"data/sql/migrations/20250301000000_raccoon_core.down.sql",
		"data/sql/migrations/sqlite/20250301000000_raccoon_core.up.sql",
		"data/sql/migrations/sqlite/20250301000000_raccoon_core.down.sql",
	}
	for _, migrationPath := range paths {
		content, err := fs.ReadFile(root, migrationPath)
		if err != nil {
			t.Fatalf("read migration %s: %v", migrationPath, err)
		}
		if strings.TrimSpace(string(content)) == "" {
			t.Fatalf("expected migration %s to have SQL content", migrationPath)
		}
	}
}

func TestSQLiteCoreSchemaMigration_ApplyAndRollback(t *testing.T) {
	db, err := sql.Open("sqlite3", "file:migrations-raccoon-core?mode=memory&cache=shared&_foreign_keys=on")
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	defer func() { _ = db.Close() }()

	root := raccoon.GetCoreMigrationsFS()
	sqliteMigrations, err := fs.Sub(root, "data/sql/migrations/sqlite")
	if err != nil {
		t.Fatalf("resolve sqlite migrations: %v", err)
	}

	if err := execSQLMigration(
		context.Background(),
		db,
		sqliteMigrations,
		"20250301000000_raccoon_core.up.sql",
	); err != nil {
		t.Fatalf("apply core schema migration up: %v", err)
	}

	requiredTables := []string{
		"raccoon_lifecycle",
		"raccoon_global_config",
		"raccoon_global_metadata",
		"raccoon_global_metrics",
		"raccoon_access_entries",
		"raccoon_repos",
		"raccoon_forks",
	}
	for _, tableName := range requiredTables {
		var count int
		if err := db.QueryRowContext(
			context.Background(),
			`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`,
			tableName,
		).Scan(&count); err != nil {
			t.Fatalf("query sqlite_master for %s: %v", tableName, err)
		}
		if count != 1 {
			t.Fatalf("expected table %s to exist after up migration", tableName)
		}
	}

	insertAccessEntry := `
		INSERT INTO raccoon_access_entries
			(id, identity, roles, scope_global, scope_resource, created_at, updated_at, schema_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := db.ExecContext(
		context.Background(),
		insertAccessEntry,
		"entry-1", "alice", 3, 1, "", "2026-01-01T00:00:00Z", "2026-01-01T00:00:00Z", 1,
	); err != nil {
		t.Fatalf("insert access entry: %v", err)
	}
	if _, err := db.ExecContext(
		context.Background(),
		insertAccessEntry,
		"entry-2", "alice", 1, 1, "", "2026-01-02T00:00:00Z", "2026-01-02T00:00:00Z", 1,
	); err == nil {
		t.Fatalf("expected unique (identity, scope) violation")
	}

	insertRepo := `
		INSERT INTO raccoon_repos
			(id, key, owner, name, url, tags, active, allow_observation,
			 module_count, observation_count, total_lines_of_code, total_files_processed,
			 created_at, updated_at, schema_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := db.ExecContext(
		context.Background(),
		insertRepo,
		"repo-1", "alice/widgets", "alice", "widgets", "https://example.com/widgets", "",
		1, 1, 0, 0, 0, 0, "2026-01-01T00:00:00Z", "2026-01-01T00:00:00Z", 1,
	); err != nil {
		t.Fatalf("insert repo: %v", err)
	}
	if _, err := db.ExecContext(
		context.Background(),
		insertRepo,
		"repo-2", "alice/widgets", "alice", "widgets-copy", "https://example.com/widgets2", "",
		1, 1, 0, 0, 0, 0, "2026-01-01T00:00:00Z", "2026-01-01T00:00:00Z", 1,
	); err == nil {
		t.Fatalf("expected unique repo key violation")
	}

	if err := execSQLMigration(
		context.Background(),
		db,
		sqliteMigrations,
		"20250301000000_raccoon_core.down.sql",
	); err != nil {
		t.Fatalf("apply core schema migration down: %v", err)
	}

	var count int
	if err := db.QueryRowContext(
		context.Background(),
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name LIKE 'raccoon_%'`,
	).Scan(&count); err != nil {
		t.Fatalf("query sqlite_master after down migration: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected all raccoon tables to be dropped after down migration, found %d", count)
	}
}

func execSQLMigration(ctx context.Context, db *sql.DB, fsys fs.FS, filename string) error {
	content, err := fs.ReadFile(fsys, filepath.Clean(filename))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, string(content))
	return err
}
