package repository

import (
	"fmt"
	"strings"

	"github.com/garnizeh/staffdir/pkg/models"
)

type SortField string

const (
	SortByID          SortField = "id"
	SortByName        SortField = "name"
	SortByEmail       SortField = "email"
	SortByMobile      SortField = "mobile"
	SortByDesignation SortField = "designation"
	SortByCourse      SortField = "course"
	SortByGender      SortField = "gender"
	SortByImageRef    SortField = "imageRef"
	SortByCreatedAt   SortField = "createdAt"
	SortByActive      SortField = "active"
)

var sortFields = map[SortField]bool{
	SortByID: true, SortByName: true, SortByEmail: true, SortByMobile: true,
	SortByDesignation: true, SortByCourse: true, SortByGender: true,
	SortByImageRef: true, SortByCreatedAt: true, SortByActive: true,
}

// ParseSortField resolves a client-supplied field name. The legacy
// "createDate" name is accepted for createdAt.
func ParseSortField(s string) (SortField, error) {
	if s == "createDate" {
		return SortByCreatedAt, nil
	}
	f := SortField(s)
	if !sortFields[f] {
		return "", fmt.Errorf("unknown sort field %q", s)
	}
	return f, nil
}

type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

func ParseSortDirection(s string) (SortDirection, error) {
	switch SortDirection(strings.ToLower(s)) {
	case Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	}
	return "", fmt.Errorf("unknown sort direction %q", s)
}

// Sort orders results by Field then by id ascending, so equal field values
// keep the same relative order between calls.
type Sort struct {
	Field     SortField
	Direction SortDirection
}

// Less reports whether a sorts before b under s, including the id tie-break.
func (s Sort) Less(a, b *models.Employee) bool {
	c := compareField(s.Field, a, b)
	if s.Direction == Desc {
		c = -c
	}
	if c != 0 {
		return c < 0
	}
	return a.ID < b.ID
}

func compareField(f SortField, a, b *models.Employee) int {
	switch f {
	case SortByID:
		return strings.Compare(a.ID, b.ID)
	case SortByName:
		return strings.Compare(a.Name, b.Name)
	case SortByEmail:
		return strings.Compare(a.Email, b.Email)
	case SortByMobile:
		return strings.Compare(a.Mobile, b.Mobile)
	case SortByDesignation:
		return strings.Compare(a.Designation, b.Designation)
	case SortByCourse:
		return strings.Compare(a.Course, b.Course)
	case SortByGender:
		return strings.Compare(string(a.Gender), string(b.Gender))
	case SortByImageRef:
		return strings.Compare(a.ImageRef, b.ImageRef)
	case SortByActive:
		switch {
		case a.Active == b.Active:
			return 0
		case !a.Active:
			return -1
		default:
			return 1
		}
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}
