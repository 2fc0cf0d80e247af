package services

import (
	portsrepo "github.com/shukrishariff-oms/pms-istmo/internal/core/ports/repositories"
	portssvc "github.com/shukrishariff-oms/pms-istmo/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider, options ...ServiceOption) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Budget:  NewBudgetService(repos.BudgetRepo, repos.DepartmentRepo, options...),
		Custody: NewCustodyService(repos.CustodyRepo, options...),
	}
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.BudgetSvcFacade  = (*budgetService)(nil)
	_ portssvc.CustodySvcFacade = (*custodyService)(nil)
)
