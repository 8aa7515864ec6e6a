// Package storetest holds the behavioural tests every EmployeeStore backend
// must pass. Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/garnizeh/staffdir/pkg/models"
	"github.com/garnizeh/staffdir/pkg/repository"
)

// Factory returns an empty store; cleanup is registered on t.
type Factory func(t *testing.T) repository.EmployeeStore

func Run(t *testing.T, newStore Factory) {
	t.Helper()
	tests := []struct {
		name string
		fn   func(t *testing.T, s repository.EmployeeStore)
	}{
		{"InsertAndFind", testInsertAndFind},
		{"DuplicateEmail", testDuplicateEmail},
		{"FindManyPaginates", testFindManyPaginates},
		{"FilterAndCount", testFilterAndCount},
		{"SortTieBreak", testSortTieBreak},
		{"UpdatePartial", testUpdatePartial},
		{"UpdateDuplicateEmail", testUpdateDuplicateEmail},
		{"UpdateMissing", testUpdateMissing},
		{"Delete", testDelete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

// Input returns a valid employee input with a unique email derived from n.
func Input(name string, n int) models.EmployeeInput {
	return models.EmployeeInput{
		Name:        name,
		Email:       fmt.Sprintf("user%d@example.com", n),
		Mobile:      "5550001234",
		Designation: "Engineer",
		Course:      "BSc",
		Gender:      models.GenderFemale,
	}
}

// Same reports whether two employees hold equal values, comparing
// timestamps by instant.
func Same(a, b *models.Employee) bool {
	x, y := *a, *b
	if !x.CreatedAt.Equal(y.CreatedAt) {
		return false
	}
	x.CreatedAt = y.CreatedAt
	return x == y
}

func mustInsert(t *testing.T, s repository.EmployeeStore, in models.EmployeeInput) *models.Employee {
	t.Helper()
	e, err := s.Insert(context.Background(), in)
	if err != nil {
		t.Fatalf("Insert(%s) error: %v", in.Email, err)
	}
	return e
}

func testInsertAndFind(t *testing.T, s repository.EmployeeStore) {
	ctx := context.Background()
	in := Input("Alice", 1)
	in.ImageRef = "uploads/alice.png"
	e := mustInsert(t, s, in)

	if e.ID == "" {
		t.Fatalf("expected generated id")
	}
	if e.CreatedAt.IsZero() {
		t.Fatalf("expected createdAt to be set")
	}
	if !e.Active {
		t.Fatalf("expected new employee to be active")
	}

	got, err := s.FindByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if !Same(got, e) {
		t.Fatalf("FindByID mismatch:\n got %#v\nwant %#v", got, e)
	}

	if _, err := s.FindByID(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testDuplicateEmail(t *testing.T, s repository.EmployeeStore) {
	ctx := context.Background()
	mustInsert(t, s, Input("Alice", 1))

	_, err := s.Insert(ctx, Input("Other Alice", 1))
	if !errors.Is(err, repository.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
	var ce *repository.ConstraintError
	if !errors.As(err, &ce) || ce.Field != "email" {
		t.Fatalf("expected email ConstraintError, got %#v", err)
	}

	n, err := s.Count(ctx, repository.MatchAll{})
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected count 1 after failed insert, got %d", n)
	}
}

func testFindManyPaginates(t *testing.T, s repository.EmployeeStore) {
	ctx := context.Background()
	for i := range 25 {
		mustInsert(t, s, Input(fmt.Sprintf("Employee %02d", i), i))
	}
	sort := repository.Sort{Field: repository.SortByName, Direction: repository.Asc}

	seen := map[string]bool{}
	for page, want := range []int{10, 10, 5, 0} {
		got, err := s.FindMany(ctx, repository.MatchAll{}, sort, page*10, 10)
		if err != nil {
			t.Fatalf("FindMany page %d error: %v", page, err)
		}
		if len(got) != want {
			t.Fatalf("page %d: expected %d records, got %d", page, want, len(got))
		}
		if got == nil {
			t.Fatalf("page %d: expected empty slice, got nil", page)
		}
		for _, e := range got {
			if seen[e.ID] {
				t.Fatalf("record %s returned on two pages", e.ID)
			}
			seen[e.ID] = true
		}
	}

	first, _ := s.FindMany(ctx, repository.MatchAll{}, sort, 0, 1)
	if first[0].Name != "Employee 00" {
		t.Fatalf("expected Employee 00 first, got %q", first[0].Name)
	}
	last, _ := s.FindMany(ctx, repository.MatchAll{}, repository.Sort{Field: repository.SortByName, Direction: repository.Desc}, 0, 1)
	if last[0].Name != "Employee 24" {
		t.Fatalf("expected Employee 24 first in desc, got %q", last[0].Name)
	}
}

func testFilterAndCount(t *testing.T, s repository.EmployeeStore) {
	ctx := context.Background()
	ana := mustInsert(t, s, Input("Ana Silva", 1))
	mustInsert(t, s, Input("Juliana Reis", 2))
	mustInsert(t, s, Input("Bob", 3))

	f := repository.SearchFilter("ana")
	n, err := s.Count(ctx, f)
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 matches for 'ana', got %d", n)
	}

	got, err := s.FindMany(ctx, f, repository.Sort{Field: repository.SortByName, Direction: repository.Asc}, 0, 10)
	if err != nil {
		t.Fatalf("FindMany error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Ana Silva" || got[1].Name != "Juliana Reis" {
		t.Fatalf("unexpected search result: %#v", got)
	}

	inactive := false
	if _, err := s.Update(ctx, ana.ID, models.EmployeePatch{Active: &inactive}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	active, err := s.Count(ctx, repository.And{f, repository.ActiveIs(true)})
	if err != nil {
		t.Fatalf("Count active error: %v", err)
	}
	if active != 1 {
		t.Fatalf("expected 1 active match, got %d", active)
	}

	none, err := s.Count(ctx, repository.NameContainsAny{})
	if err != nil {
		t.Fatalf("Count empty terms error: %v", err)
	}
	if none != 0 {
		t.Fatalf("expected empty term list to match nothing, got %d", none)
	}
}

func testSortTieBreak(t *testing.T, s repository.EmployeeStore) {
	ctx := context.Background()
	for i := range 6 {
		mustInsert(t, s, Input("Same Name", i))
	}

	for _, dir := range []repository.SortDirection{repository.Asc, repository.Desc} {
		sort := repository.Sort{Field: repository.SortByName, Direction: dir}
		first, err := s.FindMany(ctx, repository.MatchAll{}, sort, 0, 10)
		if err != nil {
			t.Fatalf("FindMany error: %v", err)
		}
		for i := 1; i < len(first); i++ {
			if first[i-1].ID >= first[i].ID {
				t.Fatalf("%s: expected ids ascending on ties, got %s before %s", dir, first[i-1].ID, first[i].ID)
			}
		}
		again, _ := s.FindMany(ctx, repository.MatchAll{}, sort, 0, 10)
		for i := range first {
			if first[i].ID != again[i].ID {
				t.Fatalf("%s: order changed between identical calls", dir)
			}
		}
	}
}

func testUpdatePartial(t *testing.T, s repository.EmployeeStore) {
	ctx := context.Background()
	e := mustInsert(t, s, Input("Alice", 1))

	name := "Alice Cooper"
	gender := models.GenderOther
	got, err := s.Update(ctx, e.ID, models.EmployeePatch{Name: &name, Gender: &gender})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	want := *e
	want.Name = name
	want.Gender = gender
	if !Same(got, &want) {
		t.Fatalf("Update result mismatch:\n got %#v\nwant %#v", got, want)
	}

	same, err := s.Update(ctx, e.ID, models.EmployeePatch{})
	if err != nil {
		t.Fatalf("empty Update error: %v", err)
	}
	if !Same(same, &want) {
		t.Fatalf("empty Update changed record: %#v", same)
	}

	// keeping the same email is not a conflict with itself
	email := e.Email
	if _, err := s.Update(ctx, e.ID, models.EmployeePatch{Email: &email}); err != nil {
		t.Fatalf("Update with unchanged email error: %v", err)
	}
}

func testUpdateDuplicateEmail(t *testing.T, s repository.EmployeeStore) {
	ctx := context.Background()
	a := mustInsert(t, s, Input("Alice", 1))
	b := mustInsert(t, s, Input("Bob", 2))

	name := "Bobby"
	_, err := s.Update(ctx, b.ID, models.EmployeePatch{Email: &a.Email, Name: &name})
	if !errors.Is(err, repository.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}

	got, err := s.FindByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if got.Email != b.Email || got.Name != "Bob" {
		t.Fatalf("failed update had partial effect: %#v", got)
	}
}

func testUpdateMissing(t *testing.T, s repository.EmployeeStore) {
	name := "x"
	if _, err := s.Update(context.Background(), "missing", models.EmployeePatch{Name: &name}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Update(context.Background(), "missing", models.EmployeePatch{}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty patch, got %v", err)
	}
}

func testDelete(t *testing.T, s repository.EmployeeStore) {
	ctx := context.Background()
	e := mustInsert(t, s, Input("Alice", 1))

	if err := s.Delete(ctx, e.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := s.FindByID(ctx, e.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, e.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	// the email is free again
	mustInsert(t, s, Input("Alice Again", 1))
}
