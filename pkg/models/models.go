package models

import "time"

// Domain models matching the database schema in db/migrations/*/0001_init.sql

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Valid reports whether g is one of the supported values.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

type Employee struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Email       string    `json:"email" db:"email"`
	Mobile      string    `json:"mobile" db:"mobile"`
	Designation string    `json:"designation" db:"designation"`
	Course      string    `json:"course" db:"course"`
	Gender      Gender    `json:"gender" db:"gender"`
	ImageRef    string    `json:"imageRef,omitempty" db:"image_ref"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	Active      bool      `json:"active" db:"active"`
}

// EmployeeInput carries the caller-supplied fields of a new employee.
type EmployeeInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Mobile      string `json:"mobile"`
	Designation string `json:"designation"`
	Course      string `json:"course"`
	Gender      Gender `json:"gender"`
	ImageRef    string `json:"imageRef,omitempty"`
}

// EmployeePatch is a partial update; nil fields are left untouched.
type EmployeePatch struct {
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Mobile      *string `json:"mobile,omitempty"`
	Designation *string `json:"designation,omitempty"`
	Course      *string `json:"course,omitempty"`
	Gender      *Gender `json:"gender,omitempty"`
	ImageRef    *string `json:"imageRef,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

// Empty reports whether the patch sets no field.
func (p EmployeePatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Mobile == nil && p.Designation == nil &&
		p.Course == nil && p.Gender == nil && p.ImageRef == nil && p.Active == nil
}

// Apply overwrites the fields of e that are set in p.
func (p EmployeePatch) Apply(e *Employee) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Email != nil {
		e.Email = *p.Email
	}
	if p.Mobile != nil {
		e.Mobile = *p.Mobile
	}
	if p.Designation != nil {
		e.Designation = *p.Designation
	}
	if p.Course != nil {
		e.Course = *p.Course
	}
	if p.Gender != nil {
		e.Gender = *p.Gender
	}
	if p.ImageRef != nil {
		e.ImageRef = *p.ImageRef
	}
	if p.Active != nil {
		e.Active = *p.Active
	}
}

type User struct {
	ID           int64  `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password_hash"`
	Created      int64  `json:"created" db:"created"`
}
