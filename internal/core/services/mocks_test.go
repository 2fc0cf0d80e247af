package services_test

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
	portsrepo "github.com/shukrishariff-oms/pms-istmo/internal/core/ports/repositories"
	"github.com/stretchr/testify/mock"
)

// --- Mock BudgetRepository ---
type MockBudgetRepository struct {
	mock.Mock
	Tx *MockBudgetTx
}

var _ portsrepo.BudgetRepositoryFacade = (*MockBudgetRepository)(nil)

func (m *MockBudgetRepository) WithinBudgetTx(ctx context.Context, fn portsrepo.BudgetTxFunc) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, m.Tx)
}

func (m *MockBudgetRepository) FindRequestByID(ctx context.Context, requestID string) (*domain.BudgetRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetRequest), args.Error(1)
}

func (m *MockBudgetRepository) ListRequestsByDepartment(ctx context.Context, departmentID string, status *domain.RequestStatus) ([]domain.BudgetRequest, error) {
	args := m.Called(ctx, departmentID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BudgetRequest), args.Error(1)
}

func (m *MockBudgetRepository) ListBalancesByDepartment(ctx context.Context, departmentID string) ([]domain.CategoryBalance, error) {
	args := m.Called(ctx, departmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CategoryBalance), args.Error(1)
}

func (m *MockBudgetRepository) GetBalance(ctx context.Context, departmentID, category string) (*domain.CategoryBalance, error) {
	args := m.Called(ctx, departmentID, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CategoryBalance), args.Error(1)
}

// --- Mock BudgetTxRepository ---
type MockBudgetTx struct {
	mock.Mock
}

var _ portsrepo.BudgetTxRepository = (*MockBudgetTx)(nil)

func (m *MockBudgetTx) LockDepartment(ctx context.Context, departmentID string, mode portsrepo.LockMode) error {
	args := m.Called(ctx, departmentID, mode)
	return args.Error(0)
}

func (m *MockBudgetTx) FindRequestByIDForUpdate(ctx context.Context, requestID string) (*domain.BudgetRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// Hand out a copy so the service cannot mutate the fixture.
	r := *args.Get(0).(*domain.BudgetRequest)
	return &r, args.Error(1)
}

func (m *MockBudgetTx) InsertRequest(ctx context.Context, request domain.BudgetRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockBudgetTx) UpdateRequest(ctx context.Context, request domain.BudgetRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockBudgetTx) DeleteRequest(ctx context.Context, requestID string) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

func (m *MockBudgetTx) ListApprovedRequestsByDepartment(ctx context.Context, departmentID string) ([]domain.BudgetRequest, error) {
	args := m.Called(ctx, departmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BudgetRequest), args.Error(1)
}

func (m *MockBudgetTx) EnsureBalanceForUpdate(ctx context.Context, key domain.BalanceKey) (*domain.CategoryBalance, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	b := *args.Get(0).(*domain.CategoryBalance)
	return &b, args.Error(1)
}

func (m *MockBudgetTx) FindBalanceForUpdate(ctx context.Context, key domain.BalanceKey) (*domain.CategoryBalance, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	b := *args.Get(0).(*domain.CategoryBalance)
	return &b, args.Error(1)
}

func (m *MockBudgetTx) SaveBalance(ctx context.Context, balance domain.CategoryBalance) error {
	args := m.Called(ctx, balance)
	return args.Error(0)
}

func (m *MockBudgetTx) ReplaceBalances(ctx context.Context, departmentID string, sums map[string]decimal.Decimal) error {
	args := m.Called(ctx, departmentID, sums)
	return args.Error(0)
}

// --- Mock DepartmentRepository ---
type MockDepartmentRepository struct {
	mock.Mock
}

var _ portsrepo.DepartmentRepositoryFacade = (*MockDepartmentRepository)(nil)

func (m *MockDepartmentRepository) FindDepartmentByID(ctx context.Context, departmentID string) (*domain.Department, error) {
	args := m.Called(ctx, departmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Department), args.Error(1)
}

func (m *MockDepartmentRepository) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Department), args.Error(1)
}
