package repositories

import (
	"context"

	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BudgetRequestReader defines read operations on budget requests outside a transaction.
type BudgetRequestReader interface {
	// FindRequestByID returns apperrors.ErrNotFound when the request does not exist.
	FindRequestByID(ctx context.Context, requestID string) (*domain.BudgetRequest, error)

	// ListRequestsByDepartment lists requests newest first, optionally filtered by status.
	ListRequestsByDepartment(ctx context.Context, departmentID string, status *domain.RequestStatus) ([]domain.BudgetRequest, error)
}

// BalanceReader defines read operations on the materialized category balances.
type BalanceReader interface {
	// ListBalancesByDepartment returns the department's balances ordered by category.
	ListBalancesByDepartment(ctx context.Context, departmentID string) ([]domain.CategoryBalance, error)

	// GetBalance returns apperrors.ErrNotFound when no row exists for the category.
	GetBalance(ctx context.Context, departmentID, category string) (*domain.CategoryBalance, error)
}

// BudgetTxRepository is the view of the budget store available inside one transaction.
// Every write becomes visible only when the surrounding WithinBudgetTx callback returns nil.
type BudgetTxRepository interface {
	// LockDepartment locks the department row. Returns apperrors.ErrNotFound when missing.
	LockDepartment(ctx context.Context, departmentID string, mode LockMode) error

	// FindRequestByIDForUpdate loads and locks a request row.
	FindRequestByIDForUpdate(ctx context.Context, requestID string) (*domain.BudgetRequest, error)

	InsertRequest(ctx context.Context, request domain.BudgetRequest) error
	UpdateRequest(ctx context.Context, request domain.BudgetRequest) error
	DeleteRequest(ctx context.Context, requestID string) error

	// ListApprovedRequestsByDepartment returns the journal rows that feed the reconciler.
	ListApprovedRequestsByDepartment(ctx context.Context, departmentID string) ([]domain.BudgetRequest, error)

	// EnsureBalanceForUpdate creates a zero balance row when absent and locks it.
	EnsureBalanceForUpdate(ctx context.Context, key domain.BalanceKey) (*domain.CategoryBalance, error)

	// FindBalanceForUpdate locks an existing balance row. Returns apperrors.ErrNotFound when absent.
	FindBalanceForUpdate(ctx context.Context, key domain.BalanceKey) (*domain.CategoryBalance, error)

	// SaveBalance writes the amount of a previously locked row.
	SaveBalance(ctx context.Context, balance domain.CategoryBalance) error

	// ReplaceBalances sets every balance row of the department to its sum, or to zero
	// when the category is absent from sums. Zeroed rows are kept.
	ReplaceBalances(ctx context.Context, departmentID string, sums map[string]decimal.Decimal) error
}

// BudgetTxFunc is the unit of work run by WithinBudgetTx.
type BudgetTxFunc func(ctx context.Context, tx BudgetTxRepository) error

// BudgetRepositoryFacade combines all budget-related repository interfaces.
type BudgetRepositoryFacade interface {
	BudgetRequestReader
	BalanceReader

	// WithinBudgetTx runs fn in one transaction. It commits when fn returns nil and rolls
	// back otherwise, returning fn's error unchanged.
	WithinBudgetTx(ctx context.Context, fn BudgetTxFunc) error
}
