package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/shukrishariff-oms/pms-istmo/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	departmentRepo := newPgxDepartmentRepository(dbPool)
	budgetRepo := newPgxBudgetRepository(dbPool)
	custodyRepo := newPgxCustodyRepository(dbPool)

	return portsrepo.RepositoryProvider{
		DepartmentRepo: departmentRepo,
		BudgetRepo:     budgetRepo,
		CustodyRepo:    custodyRepo,
	}
}
