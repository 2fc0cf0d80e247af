package repositories

import (
	"context"

	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
)

// DepartmentReader defines read operations for department data.
// Departments are owned by another part of the system and are read-only here.
type DepartmentReader interface {
	// FindDepartmentByID returns apperrors.ErrNotFound when the department does not exist.
	FindDepartmentByID(ctx context.Context, departmentID string) (*domain.Department, error)

	// ListDepartments returns every department ordered by code.
	ListDepartments(ctx context.Context) ([]domain.Department, error)
}

// DepartmentRepositoryFacade combines all department-related repository interfaces.
type DepartmentRepositoryFacade interface {
	DepartmentReader
}
