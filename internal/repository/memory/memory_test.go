package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/garnizeh/staffdir/internal/repository/storetest"
	"github.com/garnizeh/staffdir/pkg/models"
	"github.com/garnizeh/staffdir/pkg/repository"
)

func TestEmployeeStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repository.EmployeeStore {
		return New()
	})
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	e, err := s.Insert(ctx, storetest.Input("Alice", 1))
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	e.Name = "mutated"

	got, err := s.FindByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if got.Name != "Alice" {
		t.Fatalf("store shares memory with caller: name=%q", got.Name)
	}
}

func TestConcurrentInsertsKeepEmailUnique(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// half the goroutines race for the same address
			_, err := s.Insert(ctx, storetest.Input(fmt.Sprintf("E%d", i), i%10))
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			} else if !errors.Is(err, repository.ErrConstraintViolation) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 10 {
		t.Fatalf("expected 10 successful inserts, got %d", ok)
	}
	n, _ := s.Count(ctx, repository.MatchAll{})
	if n != 10 {
		t.Fatalf("expected 10 stored records, got %d", n)
	}
}

func TestUsers(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.CreateUser(ctx, &models.User{Username: "bob", PasswordHash: "h"})
	if err != nil || id != 1 {
		t.Fatalf("CreateUser = %d, %v", id, err)
	}
	if _, err := s.CreateUser(ctx, &models.User{Username: "bob"}); !errors.Is(err, repository.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
	u, err := s.GetByUsername(ctx, "bob")
	if err != nil || u.PasswordHash != "h" {
		t.Fatalf("GetByUsername = %#v, %v", u, err)
	}
	if _, err := s.GetByUsername(ctx, "nobody"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
