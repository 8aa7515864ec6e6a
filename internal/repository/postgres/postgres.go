// Package postgres backs the repository interfaces with PostgreSQL through
// pgx's database/sql driver.
package postgres

import (
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/garnizeh/staffdir/internal/db"
	"github.com/garnizeh/staffdir/internal/repository/sqlfilter"
	"github.com/garnizeh/staffdir/internal/repository/sqlrepo"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// New returns the repository backed by a PostgreSQL connection opened with
// db.Open(ctx, db.DriverPostgres, dsn).
func New(conn *db.DB, logger *slog.Logger) *sqlrepo.Repo {
	return sqlrepo.New(conn, sqlfilter.Postgres, isUniqueViolation, logger)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
