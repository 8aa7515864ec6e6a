// Package memory is an in-process implementation of the repository
// interfaces. It evaluates filters with Filter.Match and is used by tests and
// by the "memory" database driver.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/garnizeh/staffdir/pkg/models"
	"github.com/garnizeh/staffdir/pkg/repository"
)

type Store struct {
	mu      sync.RWMutex
	byID    map[string]*models.Employee
	byEmail map[string]string

	users      map[string]models.User
	nextUserID int64

	now   func() time.Time
	newID func() (string, error)
}

var _ repository.EmployeeStore = (*Store)(nil)
var _ repository.UserRepo = (*Store)(nil)

func New() *Store {
	return &Store{
		byID:    make(map[string]*models.Employee),
		byEmail: make(map[string]string),
		users:   make(map[string]models.User),
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		newID: func() (string, error) {
			id, err := uuid.NewV7()
			if err != nil {
				return "", err
			}
			return id.String(), nil
		},
	}
}

func (s *Store) Insert(_ context.Context, in models.EmployeeInput) (*models.Employee, error) {
	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("generate employee id: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[in.Email]; taken {
		return nil, &repository.ConstraintError{Field: "email"}
	}
	e := &models.Employee{
		ID:          id,
		Name:        in.Name,
		Email:       in.Email,
		Mobile:      in.Mobile,
		Designation: in.Designation,
		Course:      in.Course,
		Gender:      in.Gender,
		ImageRef:    in.ImageRef,
		CreatedAt:   s.now(),
		Active:      true,
	}
	s.byID[id] = e
	s.byEmail[e.Email] = id

	out := *e
	return &out, nil
}

func (s *Store) FindByID(_ context.Context, id string) (*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *e
	return &out, nil
}

func (s *Store) FindMany(_ context.Context, f repository.Filter, srt repository.Sort, offset, limit int) ([]models.Employee, error) {
	out := make([]models.Employee, 0)
	if limit <= 0 {
		return out, nil
	}
	if offset < 0 {
		offset = 0
	}

	matched := s.match(f)
	sort.SliceStable(matched, func(i, j int) bool {
		return srt.Less(&matched[i], &matched[j])
	})
	if offset >= len(matched) {
		return out, nil
	}
	end := min(offset+limit, len(matched))
	return append(out, matched[offset:end]...), nil
}

func (s *Store) Count(_ context.Context, f repository.Filter) (int64, error) {
	return int64(len(s.match(f))), nil
}

// match returns copies of the records accepted by f.
func (s *Store) match(f repository.Filter) []models.Employee {
	if f == nil {
		f = repository.MatchAll{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Employee
	for _, e := range s.byID {
		if f.Match(e) {
			out = append(out, *e)
		}
	}
	return out
}

func (s *Store) Update(_ context.Context, id string, p models.EmployeePatch) (*models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.Email != nil && *p.Email != e.Email {
		if _, taken := s.byEmail[*p.Email]; taken {
			return nil, &repository.ConstraintError{Field: "email"}
		}
	}

	oldEmail := e.Email
	p.Apply(e)
	if e.Email != oldEmail {
		delete(s.byEmail, oldEmail)
		s.byEmail[e.Email] = id
	}

	out := *e
	return &out, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(s.byEmail, e.Email)
	delete(s.byID, id)
	return nil
}

func (s *Store) CreateUser(_ context.Context, u *models.User) (int64, error) {
	if u == nil {
		return 0, fmt.Errorf("user is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.users[u.Username]; taken {
		return 0, &repository.ConstraintError{Field: "username"}
	}
	s.nextUserID++
	stored := *u
	stored.ID = s.nextUserID
	stored.Created = s.now().UnixMilli()
	s.users[u.Username] = stored
	return stored.ID, nil
}

func (s *Store) GetByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}
