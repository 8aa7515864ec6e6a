package sqlfilter_test

import (
	"reflect"
	"testing"

	"github.com/garnizeh/staffdir/internal/repository/sqlfilter"
	"github.com/garnizeh/staffdir/pkg/models"
	"github.com/garnizeh/staffdir/pkg/repository"
)

func TestWhere(t *testing.T) {
	tests := []struct {
		name     string
		dialect  sqlfilter.Dialect
		filter   repository.Filter
		wantSQL  string
		wantArgs []any
	}{
		{"MatchAll", sqlfilter.SQLite, repository.MatchAll{}, "1=1", nil},
		{"Nil", sqlfilter.SQLite, nil, "1=1", nil},
		{"EmptyTerms", sqlfilter.SQLite, repository.NameContainsAny{}, "1=0", nil},
		{
			"SQLiteTerms", sqlfilter.SQLite, repository.SearchFilter("Ana  reis"),
			"(instr(lower(name), ?) > 0 OR instr(lower(name), ?) > 0)", []any{"ana", "reis"},
		},
		{
			"PostgresAndActive", sqlfilter.Postgres,
			repository.And{repository.SearchFilter("ana"), repository.ActiveIs(true)},
			"((strpos(lower(name), $1) > 0) AND active = $2)", []any{"ana", true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := sqlfilter.New(tt.dialect)
			got, err := q.Where(tt.filter)
			if err != nil {
				t.Fatalf("Where error: %v", err)
			}
			if got != tt.wantSQL {
				t.Fatalf("sql: got %q want %q", got, tt.wantSQL)
			}
			if !reflect.DeepEqual(q.Args, tt.wantArgs) {
				t.Fatalf("args: got %#v want %#v", q.Args, tt.wantArgs)
			}
		})
	}
}

type oddFilter struct{}

func (oddFilter) Match(*models.Employee) bool { return true }

func TestWhere_UnknownFilter(t *testing.T) {
	q := sqlfilter.New(sqlfilter.SQLite)
	if _, err := q.Where(repository.And{oddFilter{}}); err == nil {
		t.Fatalf("expected error for unsupported filter")
	}
}

func TestOrderBy(t *testing.T) {
	tests := []struct {
		dialect sqlfilter.Dialect
		sort    repository.Sort
		want    string
	}{
		{sqlfilter.SQLite, repository.Sort{}, "created_at ASC, id ASC"},
		{sqlfilter.SQLite, repository.Sort{Field: repository.SortByName, Direction: repository.Desc}, "name DESC, id ASC"},
		{sqlfilter.SQLite, repository.Sort{Field: repository.SortByImageRef, Direction: repository.Asc}, "image_ref ASC, id ASC"},
		{sqlfilter.SQLite, repository.Sort{Field: repository.SortByID, Direction: repository.Desc}, "id DESC"},
		{sqlfilter.Postgres, repository.Sort{Field: repository.SortByName, Direction: repository.Asc}, `name COLLATE "C" ASC, id COLLATE "C" ASC`},
		{sqlfilter.Postgres, repository.Sort{Field: repository.SortByActive, Direction: repository.Desc}, `active DESC, id COLLATE "C" ASC`},
	}
	for _, tt := range tests {
		got, err := tt.dialect.OrderBy(tt.sort)
		if err != nil {
			t.Fatalf("OrderBy(%v) error: %v", tt.sort, err)
		}
		if got != tt.want {
			t.Fatalf("OrderBy(%v) = %q want %q", tt.sort, got, tt.want)
		}
	}

	if _, err := sqlfilter.SQLite.OrderBy(repository.Sort{Field: "password"}); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}
