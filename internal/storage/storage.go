// Package storage opens the configured employee and user repositories,
// running schema migrations for the SQL backends.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	dbfs "github.com/garnizeh/staffdir/db"
	"github.com/garnizeh/staffdir/internal/config"
	"github.com/garnizeh/staffdir/internal/db"
	"github.com/garnizeh/staffdir/internal/repository/memory"
	"github.com/garnizeh/staffdir/internal/repository/postgres"
	"github.com/garnizeh/staffdir/internal/repository/sqlite"
	"github.com/garnizeh/staffdir/pkg/repository"
)

type Backend struct {
	Employees repository.EmployeeStore
	Users     repository.UserRepo
	// DB is nil for the memory driver.
	DB *db.DB
}

func (b *Backend) Close() error {
	if b.DB == nil {
		return nil
	}
	return b.DB.Close()
}

// Open connects to the database named by cfg and applies pending migrations.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Backend, error) {
	switch cfg.Driver {
	case "memory":
		m := memory.New()
		return &Backend{Employees: m, Users: m}, nil
	case "", "sqlite":
		conn, err := db.New(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx, conn, dbfs.Migrations, dbfs.SQLiteDir); err != nil {
			conn.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		repo := sqlite.New(conn, logger)
		return &Backend{Employees: repo, Users: repo, DB: conn}, nil
	case "postgres":
		conn, err := db.Open(ctx, db.DriverPostgres, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx, conn, dbfs.Migrations, dbfs.PostgresDir); err != nil {
			conn.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		repo := postgres.New(conn, logger)
		return &Backend{Employees: repo, Users: repo, DB: conn}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
