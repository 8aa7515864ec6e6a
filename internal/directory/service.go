// Package directory implements the employee query and mutation operations on
// top of a repository.EmployeeStore: search, sorting, pagination with counts,
// and the validated create/update/toggle/delete mutations.
package directory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/garnizeh/staffdir/pkg/models"
	"github.com/garnizeh/staffdir/pkg/repository"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Service struct {
	store           repository.EmployeeStore
	logger          *slog.Logger
	defaultPageSize int
	maxPageSize     int
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPageSizes overrides the page size used when a query leaves it unset and
// the largest page a query may request. Non-positive values are ignored.
func WithPageSizes(def, maxSize int) Option {
	return func(s *Service) {
		if def > 0 {
			s.defaultPageSize = def
		}
		if maxSize > 0 {
			s.maxPageSize = maxSize
		}
		if s.defaultPageSize > s.maxPageSize {
			s.defaultPageSize = s.maxPageSize
		}
	}
}

func NewService(store repository.EmployeeStore, opts ...Option) *Service {
	s := &Service{
		store:           store,
		logger:          slog.New(slog.NewJSONHandler(io.Discard, nil)),
		defaultPageSize: DefaultPageSize,
		maxPageSize:     MaxPageSize,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ListQuery holds the raw client parameters of a list request. Zero values
// select the defaults: page 1, the default page size, no search, createdAt
// ascending.
type ListQuery struct {
	Page      int
	PageSize  int
	Search    string
	SortField string
	SortOrder string
}

type ListResult struct {
	Records          []models.Employee `json:"records"`
	TotalCount       int64             `json:"totalCount"`
	TotalActiveCount int64             `json:"totalActiveCount"`
	Page             int               `json:"page"`
	PageSize         int               `json:"pageSize"`
}

type resolvedQuery struct {
	page, pageSize int
	filter         repository.Filter
	sort           repository.Sort
}

func (s *Service) resolve(q ListQuery) (resolvedQuery, error) {
	var rq resolvedQuery

	switch {
	case q.Page < 0:
		return rq, invalid("page", "Page must be a positive number")
	case q.Page == 0:
		rq.page = 1
	default:
		rq.page = q.Page
	}

	switch {
	case q.PageSize < 0:
		return rq, invalid("pageSize", "Page size must be a positive number")
	case q.PageSize == 0:
		rq.pageSize = s.defaultPageSize
	case q.PageSize > s.maxPageSize:
		return rq, invalid("pageSize", fmt.Sprintf("Page size must not exceed %d", s.maxPageSize))
	default:
		rq.pageSize = q.PageSize
	}

	rq.sort = repository.Sort{Field: repository.SortByCreatedAt, Direction: repository.Asc}
	if f := strings.TrimSpace(q.SortField); f != "" {
		field, err := repository.ParseSortField(f)
		if err != nil {
			return rq, invalid("sortField", "Unknown sort field "+f)
		}
		rq.sort.Field = field
	}
	if o := strings.TrimSpace(q.SortOrder); o != "" {
		dir, err := repository.ParseSortDirection(o)
		if err != nil {
			return rq, invalid("sortOrder", "Sort order must be asc or desc")
		}
		rq.sort.Direction = dir
	}

	rq.filter = repository.SearchFilter(q.Search)
	return rq, nil
}

// List returns one page of employees matching the search, together with the
// number of matching records and how many of those are active. A page past
// the end yields no records.
func (s *Service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	rq, err := s.resolve(q)
	if err != nil {
		return nil, err
	}

	total, err := s.store.Count(ctx, rq.filter)
	if err != nil {
		return nil, fmt.Errorf("count employees: %w", err)
	}
	active, err := s.store.Count(ctx, repository.And{rq.filter, repository.ActiveIs(true)})
	if err != nil {
		return nil, fmt.Errorf("count active employees: %w", err)
	}

	records := []models.Employee{}
	// an offset that does not fit in an int is past any result set
	if rq.page-1 <= math.MaxInt/rq.pageSize {
		offset := (rq.page - 1) * rq.pageSize
		records, err = s.store.FindMany(ctx, rq.filter, rq.sort, offset, rq.pageSize)
		if err != nil {
			return nil, fmt.Errorf("list employees: %w", err)
		}
		if records == nil {
			records = []models.Employee{}
		}
	}

	s.logger.Debug("listed employees",
		slog.String("search", q.Search),
		slog.Int("page", rq.page),
		slog.Int("page_size", rq.pageSize),
		slog.Int("returned", len(records)),
		slog.Int64("total", total),
	)

	return &ListResult{
		Records:          records,
		TotalCount:       total,
		TotalActiveCount: active,
		Page:             rq.page,
		PageSize:         rq.pageSize,
	}, nil
}

// Export returns every employee matching the query's search in the query's
// order. Page and PageSize are ignored.
func (s *Service) Export(ctx context.Context, q ListQuery) ([]models.Employee, error) {
	q.Page, q.PageSize = 0, 0
	rq, err := s.resolve(q)
	if err != nil {
		return nil, err
	}

	out := make([]models.Employee, 0)
	for offset := 0; ; offset += s.maxPageSize {
		batch, err := s.store.FindMany(ctx, rq.filter, rq.sort, offset, s.maxPageSize)
		if err != nil {
			return nil, fmt.Errorf("export employees: %w", err)
		}
		out = append(out, batch...)
		if len(batch) < s.maxPageSize {
			break
		}
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, in models.EmployeeInput) (*models.Employee, error) {
	in = normalizeInput(in)
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	e, err := s.store.Insert(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}
	s.logger.Info("employee created", slog.String("id", e.ID))
	return e, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Employee, error) {
	e, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return e, nil
}

// Update applies the provided fields of p. Validation runs before the store
// is touched, so a rejected patch leaves the record unchanged.
func (s *Service) Update(ctx context.Context, id string, p models.EmployeePatch) (*models.Employee, error) {
	normalizePatch(&p)
	if err := validatePatch(p); err != nil {
		return nil, err
	}

	e, err := s.store.Update(ctx, id, p)
	if err != nil {
		return nil, fmt.Errorf("update employee: %w", err)
	}
	s.logger.Info("employee updated", slog.String("id", id))
	return e, nil
}

// ToggleActive flips the active flag and returns the new value. The read and
// the write are separate store calls: two concurrent toggles of the same
// record may both read the same value, and the last write wins.
func (s *Service) ToggleActive(ctx context.Context, id string) (bool, error) {
	e, err := s.store.FindByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("toggle employee: %w", err)
	}

	next := !e.Active
	updated, err := s.store.Update(ctx, id, models.EmployeePatch{Active: &next})
	if err != nil {
		return false, fmt.Errorf("toggle employee: %w", err)
	}
	s.logger.Info("employee status updated", slog.String("id", id), slog.Bool("active", updated.Active))
	return updated.Active, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	s.logger.Info("employee deleted", slog.String("id", id))
	return nil
}
