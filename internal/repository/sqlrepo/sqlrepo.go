// Package sqlrepo implements the repository interfaces over database/sql.
// Dialect specifics (placeholders, string functions, constraint error codes)
// are injected by the sqlite and postgres packages.
package sqlrepo

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/garnizeh/staffdir/internal/db"
	"github.com/garnizeh/staffdir/internal/repository/sqlfilter"
	"github.com/garnizeh/staffdir/pkg/repository"
)

// Repo implements repository interfaces using the internal DB wrapper.
type Repo struct {
	conn     *db.DB
	dialect  sqlfilter.Dialect
	isUnique func(error) bool
	logger   *slog.Logger
	now      func() time.Time
	newID    func() (string, error)
}

// Ensure Repo implements the public interfaces.
var _ repository.EmployeeStore = (*Repo)(nil)
var _ repository.UserRepo = (*Repo)(nil)

// New builds a Repo. isUnique reports whether a driver error is a unique
// constraint violation.
func New(conn *db.DB, dialect sqlfilter.Dialect, isUnique func(error) bool, logger *slog.Logger) *Repo {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Repo{
		conn:     conn,
		dialect:  dialect,
		isUnique: isUnique,
		logger:   logger,
		now:      now,
		newID:    newID,
	}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
