package memory

import (
	"fmt"
	"strings"

	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
	"github.com/shukrishariff-oms/pms-istmo/internal/core/ports/repositories"
)

// NewRepositoryProvider exposes one store through every repository port.
func NewRepositoryProvider(store *Store) repositories.RepositoryProvider {
	return repositories.RepositoryProvider{
		DepartmentRepo: store,
		BudgetRepo:     store,
		CustodyRepo:    store,
	}
}

// ParseDepartments parses a seed list of the form "id:CODE:Name,id:CODE:Name".
func ParseDepartments(raw string) ([]domain.Department, error) {
	var out []domain.Department
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.SplitN(item, ":", 3)
		if len(parts) != 3 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("invalid department seed %q, want id:CODE:Name", item)
		}
		out = append(out, domain.Department{
			DepartmentID: strings.TrimSpace(parts[0]),
			Code:         strings.TrimSpace(parts[1]),
			Name:         strings.TrimSpace(parts[2]),
		})
	}
	return out, nil
}
