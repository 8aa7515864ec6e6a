package repository

import (
	"strings"

	"github.com/garnizeh/staffdir/pkg/models"
)

// Filter is a storage-independent predicate over employees. Memory stores
// evaluate Match directly; SQL stores compile the concrete filter types below
// into a WHERE clause, so new filter types must be taught to every backend.
type Filter interface {
	Match(e *models.Employee) bool
}

// MatchAll matches every record.
type MatchAll struct{}

func (MatchAll) Match(*models.Employee) bool { return true }

// NameContainsAny matches when the name contains at least one of the terms,
// ignoring case. An empty term list matches nothing.
type NameContainsAny struct {
	Terms []string
}

func (f NameContainsAny) Match(e *models.Employee) bool {
	name := strings.ToLower(e.Name)
	for _, t := range f.Terms {
		if strings.Contains(name, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// ActiveIs matches records whose active flag equals the value.
type ActiveIs bool

func (f ActiveIs) Match(e *models.Employee) bool { return e.Active == bool(f) }

// And matches when every member matches. An empty And matches everything.
type And []Filter

func (f And) Match(e *models.Employee) bool {
	for _, sub := range f {
		if !sub.Match(e) {
			return false
		}
	}
	return true
}

// SearchFilter builds the free-text name filter: whitespace-separated terms
// combined with OR. Blank text yields MatchAll.
func SearchFilter(text string) Filter {
	terms := strings.Fields(text)
	if len(terms) == 0 {
		return MatchAll{}
	}
	return NameContainsAny{Terms: terms}
}
