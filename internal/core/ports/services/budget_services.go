package services

import (
	"context"

	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BudgetRequestReaderSvc defines read operations on budget requests.
type BudgetRequestReaderSvc interface {
	// GetRequest retrieves a budget request by its ID.
	GetRequest(ctx context.Context, requestID string) (*domain.BudgetRequest, error)

	// ListRequests lists a department's requests newest first, optionally filtered by status.
	ListRequests(ctx context.Context, departmentID string, status *domain.RequestStatus) ([]domain.BudgetRequest, error)
}

// BudgetRequestWriterSvc defines the journal operations. Each runs in a single transaction.
type BudgetRequestWriterSvc interface {
	// Submit creates a PENDING request. It never touches the ledger.
	Submit(ctx context.Context, req domain.SubmitBudgetRequest) (*domain.BudgetRequest, error)

	// Approve moves a PENDING request to APPROVED and credits its category.
	Approve(ctx context.Context, requestID, approverID string) error

	// Reject moves a PENDING request to REJECTED.
	Reject(ctx context.Context, requestID, actorID string) error

	// Edit replaces the request fields, reversing and reapplying the ledger effect of an approved request.
	Edit(ctx context.Context, requestID string, req domain.EditBudgetRequest) (*domain.BudgetRequest, error)

	// Delete removes a request, reversing its ledger effect first when it is approved.
	Delete(ctx context.Context, requestID string) error
}

// BalanceReaderSvc defines read operations on category balances.
type BalanceReaderSvc interface {
	// ListBalances returns a department's category balances and their total.
	ListBalances(ctx context.Context, departmentID string) (*domain.DepartmentBudget, error)

	// GetBalance returns one category balance.
	GetBalance(ctx context.Context, departmentID, category string) (*domain.CategoryBalance, error)
}

// LedgerReconcilerSvc defines the repair operations of the balance view.
type LedgerReconcilerSvc interface {
	// Reconcile rebuilds a department's balances from its approved requests.
	Reconcile(ctx context.Context, departmentID string) (map[string]decimal.Decimal, error)

	// ReconcileAll reconciles every department, keyed by department ID.
	ReconcileAll(ctx context.Context) (map[string]map[string]decimal.Decimal, error)

	// CheckDrift reports categories whose stored balance differs from the recomputed one.
	CheckDrift(ctx context.Context, departmentID string) ([]domain.BalanceDrift, error)
}

// BudgetSvcFacade combines all budget-related service interfaces
// This is a facade for clients that need access to all operations
type BudgetSvcFacade interface {
	BudgetRequestReaderSvc
	BudgetRequestWriterSvc
	BalanceReaderSvc
	LedgerReconcilerSvc
}
