package repository

import (
	"context"

	"github.com/garnizeh/staffdir/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

// EmployeeStore is the durable employee collection. Single-record operations
// are atomic; email is unique across all records.
type EmployeeStore interface {
	Insert(ctx context.Context, in models.EmployeeInput) (*models.Employee, error)
	FindByID(ctx context.Context, id string) (*models.Employee, error)
	FindMany(ctx context.Context, f Filter, s Sort, offset, limit int) ([]models.Employee, error)
	Count(ctx context.Context, f Filter) (int64, error)
	Update(ctx context.Context, id string, p models.EmployeePatch) (*models.Employee, error)
	Delete(ctx context.Context, id string) error
}

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
