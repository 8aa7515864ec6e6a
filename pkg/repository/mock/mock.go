package mock

import (
	"context"
	"sync"

	"github.com/garnizeh/staffdir/pkg/models"
	"github.com/garnizeh/staffdir/pkg/repository"
)

// Test helpers and mocks
type Mocks struct {
	Users     *UserRepo
	Employees *EmployeeStore
}

// NewMocks returns mocks whose employee store delegates to base once no
// failure is injected. base may be nil when a test only exercises failures.
func NewMocks(base repository.EmployeeStore) *Mocks {
	return &Mocks{
		Users:     &UserRepo{},
		Employees: &EmployeeStore{Base: base},
	}
}

type UserRepo struct {
	mu        sync.Mutex
	Stored    []models.User
	CreateErr error
	GetErr    error
}

func (m *UserRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	for _, s := range m.Stored {
		if s.Username == u.Username {
			return 0, &repository.ConstraintError{Field: "username"}
		}
	}
	id := int64(len(m.Stored) + 1)
	m.Stored = append(m.Stored, models.User{ID: id, Username: u.Username, PasswordHash: u.PasswordHash})
	return id, nil
}

func (m *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	for _, s := range m.Stored {
		if s.Username == username {
			u := s
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

// EmployeeStore records every call and returns the injected error for the
// operation when one is set; otherwise it forwards to Base.
type EmployeeStore struct {
	Base repository.EmployeeStore

	InsertErr   error
	FindErr     error
	FindManyErr error
	CountErr    error
	UpdateErr   error
	DeleteErr   error

	mu    sync.Mutex
	calls []string
}

var _ repository.EmployeeStore = (*EmployeeStore)(nil)

// Calls returns the names of the operations invoked so far.
func (m *EmployeeStore) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *EmployeeStore) record(op string) {
	m.mu.Lock()
	m.calls = append(m.calls, op)
	m.mu.Unlock()
}

func (m *EmployeeStore) Insert(ctx context.Context, in models.EmployeeInput) (*models.Employee, error) {
	m.record("Insert")
	if m.InsertErr != nil {
		return nil, m.InsertErr
	}
	return m.Base.Insert(ctx, in)
}

func (m *EmployeeStore) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	m.record("FindByID")
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	return m.Base.FindByID(ctx, id)
}

func (m *EmployeeStore) FindMany(ctx context.Context, f repository.Filter, s repository.Sort, offset, limit int) ([]models.Employee, error) {
	m.record("FindMany")
	if m.FindManyErr != nil {
		return nil, m.FindManyErr
	}
	return m.Base.FindMany(ctx, f, s, offset, limit)
}

func (m *EmployeeStore) Count(ctx context.Context, f repository.Filter) (int64, error) {
	m.record("Count")
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	return m.Base.Count(ctx, f)
}

func (m *EmployeeStore) Update(ctx context.Context, id string, p models.EmployeePatch) (*models.Employee, error) {
	m.record("Update")
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	return m.Base.Update(ctx, id, p)
}

func (m *EmployeeStore) Delete(ctx context.Context, id string) error {
	m.record("Delete")
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	return m.Base.Delete(ctx, id)
}
