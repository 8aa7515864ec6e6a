// Package sqlfilter compiles repository filters and sorts into SQL fragments
// shared by the SQL-backed employee stores.
package sqlfilter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/garnizeh/staffdir/pkg/repository"
)

// Dialect captures the SQL differences between backends.
type Dialect struct {
	// Placeholder returns the marker for the n-th (1-based) bind argument.
	Placeholder func(n int) string
	// Contains returns a boolean expression testing whether needle (a bound
	// placeholder) occurs inside haystack.
	Contains func(haystack, needle string) string
	// Collate is appended to text sort keys so ordering is byte-wise on
	// every backend.
	Collate string
}

var SQLite = Dialect{
	Placeholder: func(int) string { return "?" },
	Contains: func(haystack, needle string) string {
		return fmt.Sprintf("instr(%s, %s) > 0", haystack, needle)
	},
}

var Postgres = Dialect{
	Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	Contains: func(haystack, needle string) string {
		return fmt.Sprintf("strpos(%s, %s) > 0", haystack, needle)
	},
	Collate: ` COLLATE "C"`,
}

// Query accumulates bind arguments while fragments are compiled.
type Query struct {
	d    Dialect
	Args []any
}

func New(d Dialect) *Query {
	return &Query{d: d}
}

// Bind appends v to the argument list and returns its placeholder.
func (q *Query) Bind(v any) string {
	q.Args = append(q.Args, v)
	return q.d.Placeholder(len(q.Args))
}

// Where compiles f into a boolean SQL expression.
func (q *Query) Where(f repository.Filter) (string, error) {
	switch f := f.(type) {
	case nil, repository.MatchAll:
		return "1=1", nil
	case repository.NameContainsAny:
		if len(f.Terms) == 0 {
			return "1=0", nil
		}
		parts := make([]string, 0, len(f.Terms))
		for _, t := range f.Terms {
			parts = append(parts, q.d.Contains("lower(name)", q.Bind(strings.ToLower(t))))
		}
		return "(" + strings.Join(parts, " OR ") + ")", nil
	case repository.ActiveIs:
		return "active = " + q.Bind(bool(f)), nil
	case repository.And:
		if len(f) == 0 {
			return "1=1", nil
		}
		parts := make([]string, 0, len(f))
		for _, sub := range f {
			s, err := q.Where(sub)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return "(" + strings.Join(parts, " AND ") + ")", nil
	default:
		return "", fmt.Errorf("sqlfilter: unsupported filter %T", f)
	}
}

var columns = map[repository.SortField]string{
	repository.SortByID:          "id",
	repository.SortByName:        "name",
	repository.SortByEmail:       "email",
	repository.SortByMobile:      "mobile",
	repository.SortByDesignation: "designation",
	repository.SortByCourse:      "course",
	repository.SortByGender:      "gender",
	repository.SortByImageRef:    "image_ref",
	repository.SortByCreatedAt:   "created_at",
	repository.SortByActive:      "active",
}

// OrderBy returns the ORDER BY expression (without the keyword) for s,
// always ending with the id tie-break.
func (d Dialect) OrderBy(s repository.Sort) (string, error) {
	field := s.Field
	if field == "" {
		field = repository.SortByCreatedAt
	}
	col, ok := columns[field]
	if !ok {
		return "", fmt.Errorf("sqlfilter: unsupported sort field %q", s.Field)
	}
	dir := " ASC"
	if s.Direction == repository.Desc {
		dir = " DESC"
	}
	idKey := "id" + d.Collate
	if col == "id" {
		return idKey + dir, nil
	}
	if col != "created_at" && col != "active" {
		col += d.Collate
	}
	return col + dir + ", " + idKey + " ASC", nil
}
