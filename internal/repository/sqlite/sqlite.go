package sqlite

import (
	"errors"
	"log/slog"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/garnizeh/staffdir/internal/db"
	"github.com/garnizeh/staffdir/internal/repository/sqlfilter"
	"github.com/garnizeh/staffdir/internal/repository/sqlrepo"
)

// New returns the repository backed by a SQLite connection.
func New(conn *db.DB, logger *slog.Logger) *sqlrepo.Repo {
	return sqlrepo.New(conn, sqlfilter.SQLite, isUniqueViolation, logger)
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
