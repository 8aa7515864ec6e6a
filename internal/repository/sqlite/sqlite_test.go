package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	dbfs "github.com/garnizeh/staffdir/db"
	dbpkg "github.com/garnizeh/staffdir/internal/db"
	"github.com/garnizeh/staffdir/internal/repository/sqlite"
	"github.com/garnizeh/staffdir/internal/repository/sqlrepo"
	"github.com/garnizeh/staffdir/internal/repository/storetest"
	"github.com/garnizeh/staffdir/pkg/models"
	"github.com/garnizeh/staffdir/pkg/repository"
)

func setupRepo(t *testing.T) *sqlrepo.Repo {
	t.Helper()
	ctx := context.Background()
	// a distinct shared in-memory database per test
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	d, err := dbpkg.New(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations, dbfs.SQLiteDir); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return sqlite.New(d, nil)
}

func TestEmployeeStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repository.EmployeeStore {
		return setupRepo(t)
	})
}

func TestUserCRUD(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	// nil user should error
	if _, err := repo.CreateUser(ctx, nil); err == nil {
		t.Fatalf("expected error when creating nil user")
	}

	if _, err := repo.GetByUsername(ctx, "alice"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing user, got %v", err)
	}

	u := &models.User{Username: "alice", PasswordHash: "hash"}
	id, err := repo.CreateUser(ctx, u)
	if err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected non-zero id")
	}

	got, err := repo.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername error: %v", err)
	}
	if got.ID != id || got.PasswordHash != "hash" || got.Created == 0 {
		t.Fatalf("GetByUsername wrong result: %#v", got)
	}

	_, err = repo.CreateUser(ctx, &models.User{Username: "alice", PasswordHash: "other"})
	var ce *repository.ConstraintError
	if !errors.As(err, &ce) || ce.Field != "username" {
		t.Fatalf("expected username ConstraintError, got %v", err)
	}
}

func TestActiveStoredAsInteger(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	e, err := repo.Insert(ctx, storetest.Input("Alice", 1))
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	off := false
	if _, err := repo.Update(ctx, e.ID, models.EmployeePatch{Active: &off}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	n, err := repo.Count(ctx, repository.ActiveIs(false))
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 inactive employee, got %d", n)
	}
}
