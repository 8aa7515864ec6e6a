package db

import "embed"

// Migrations holds one directory of ordered .sql files per SQL dialect:
// migrations/sqlite and migrations/postgres.
//
//go:embed migrations
var Migrations embed.FS

const (
	SQLiteDir   = "migrations/sqlite"
	PostgresDir = "migrations/postgres"
)
