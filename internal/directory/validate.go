package directory

import (
	"regexp"
	"strings"

	"github.com/garnizeh/staffdir/pkg/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	maxCreateMobile = 15
	minUpdateMobile = 10
)

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func normalizeInput(in models.EmployeeInput) models.EmployeeInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Mobile = strings.TrimSpace(in.Mobile)
	in.Designation = strings.TrimSpace(in.Designation)
	in.Course = strings.TrimSpace(in.Course)
	in.Gender = models.Gender(strings.TrimSpace(string(in.Gender)))
	in.ImageRef = strings.TrimSpace(in.ImageRef)
	return in
}

func validateCreate(in models.EmployeeInput) error {
	required := []struct {
		field, value string
	}{
		{"name", in.Name},
		{"email", in.Email},
		{"mobile", in.Mobile},
		{"designation", in.Designation},
		{"course", in.Course},
		{"gender", string(in.Gender)},
	}
	for _, r := range required {
		if r.value == "" {
			return invalid(r.field, "All fields are required")
		}
	}

	if !emailPattern.MatchString(in.Email) {
		return invalid("email", "Invalid email format")
	}
	if !digitsOnly(in.Mobile) {
		return invalid("mobile", "Mobile number must contain only digits")
	}
	if len(in.Mobile) > maxCreateMobile {
		return invalid("mobile", "Mobile number must be at most 15 digits")
	}
	if !in.Gender.Valid() {
		return invalid("gender", "Gender must be Male, Female or Other")
	}
	return nil
}

// normalizePatch trims provided text fields in place.
func normalizePatch(p *models.EmployeePatch) {
	for _, f := range []*string{p.Name, p.Email, p.Mobile, p.Designation, p.Course, p.ImageRef} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	if p.Gender != nil {
		g := models.Gender(strings.TrimSpace(string(*p.Gender)))
		p.Gender = &g
	}
}

func validatePatch(p models.EmployeePatch) error {
	nonEmpty := []struct {
		field string
		value *string
	}{
		{"name", p.Name},
		{"designation", p.Designation},
		{"course", p.Course},
	}
	for _, f := range nonEmpty {
		if f.value != nil && *f.value == "" {
			return invalid(f.field, strings.ToUpper(f.field[:1])+f.field[1:]+" cannot be empty")
		}
	}

	if p.Email != nil && !emailPattern.MatchString(*p.Email) {
		return invalid("email", "Invalid email format")
	}
	if p.Mobile != nil {
		if !digitsOnly(*p.Mobile) {
			return invalid("mobile", "Mobile number must contain only digits")
		}
		if len(*p.Mobile) < minUpdateMobile {
			return invalid("mobile", "Mobile number must be at least 10 digits")
		}
	}
	if p.Gender != nil && !p.Gender.Valid() {
		return invalid("gender", "Gender must be Male, Female or Other")
	}
	return nil
}
