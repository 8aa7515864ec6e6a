package db

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

// Migrate applies the SQL migrations found in dir of migrationFS.
// It creates a `schema_migrations` table to track applied migrations and applies
// any .sql file that has not yet been recorded, in lexical order.
func Migrate(ctx context.Context, d *DB, migrationFS fs.FS, dir string) error {
	// ensure migrations table exists
	if _, err := d.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied BIGINT NOT NULL)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	entries, err := fs.ReadDir(migrationFS, dir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	// collect .sql files and sort
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(strings.ToLower(name), ".sql") {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	checkQuery := fmt.Sprintf(`SELECT COUNT(1) FROM schema_migrations WHERE version = %s`, d.Placeholder(1))
	recordQuery := fmt.Sprintf(`INSERT INTO schema_migrations (version, applied) VALUES (%s, %s)`, d.Placeholder(1), d.Placeholder(2))

	for _, fname := range files {
		// use filename (without extension) as migration version key
		version := strings.TrimSuffix(fname, path.Ext(fname))

		var count int
		if err := d.QueryRow(ctx, checkQuery, version).Scan(&count); err != nil {
			return fmt.Errorf("scan migration applied count: %w", err)
		}
		if count > 0 {
			continue
		}

		b, err := fs.ReadFile(migrationFS, path.Join(dir, fname))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", fname, err)
		}
		for _, stmt := range splitStatements(string(b)) {
			if _, err := d.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("exec migration %s: %w", fname, err)
			}
		}

		if _, err := d.Exec(ctx, recordQuery, version, time.Now().UTC().Unix()); err != nil {
			return fmt.Errorf("record migration %s: %w", fname, err)
		}
	}

	return nil
}

// splitStatements splits a migration file on semicolons. Migrations must not
// contain semicolons inside string literals or trigger bodies.
func splitStatements(src string) []string {
	var out []string
	for _, s := range strings.Split(src, ";") {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
