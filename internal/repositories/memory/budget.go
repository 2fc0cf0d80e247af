package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shukrishariff-oms/pms-istmo/internal/apperrors"
	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
	"github.com/shukrishariff-oms/pms-istmo/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type budgetTx struct {
	state *memoryState
	now   time.Time
}

var _ repositories.BudgetTxRepository = (*budgetTx)(nil)

// WithinBudgetTx implements repositories.BudgetRepositoryFacade. Transactions are fully
// serialized by the store mutex, so the row lock methods only check existence.
func (s *Store) WithinBudgetTx(ctx context.Context, fn repositories.BudgetTxFunc) error {
	return s.run(func(state *memoryState, now time.Time) error {
		return fn(ctx, &budgetTx{state: state, now: now})
	})
}

// FindRequestByID implements repositories.BudgetRequestReader.
func (s *Store) FindRequestByID(_ context.Context, requestID string) (*domain.BudgetRequest, error) {
	var (
		r  domain.BudgetRequest
		ok bool
	)
	s.view(func(st *memoryState) {
		r, ok = st.requests[requestID]
		r = cloneRequest(r)
	})
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &r, nil
}

// ListRequestsByDepartment implements repositories.BudgetRequestReader.
func (s *Store) ListRequestsByDepartment(_ context.Context, departmentID string, status *domain.RequestStatus) ([]domain.BudgetRequest, error) {
	var out []domain.BudgetRequest
	s.view(func(st *memoryState) {
		out = filterRequests(st, departmentID, status)
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].RequestID > out[j].RequestID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ListBalancesByDepartment implements repositories.BalanceReader.
func (s *Store) ListBalancesByDepartment(_ context.Context, departmentID string) ([]domain.CategoryBalance, error) {
	var out []domain.CategoryBalance
	s.view(func(st *memoryState) {
		for k, b := range st.balances {
			if k.DepartmentID == departmentID {
				out = append(out, b)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

// GetBalance implements repositories.BalanceReader.
func (s *Store) GetBalance(_ context.Context, departmentID, category string) (*domain.CategoryBalance, error) {
	var (
		b  domain.CategoryBalance
		ok bool
	)
	s.view(func(st *memoryState) {
		b, ok = st.balances[domain.BalanceKey{DepartmentID: departmentID, Category: category}]
	})
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &b, nil
}

func filterRequests(st *memoryState, departmentID string, status *domain.RequestStatus) []domain.BudgetRequest {
	out := make([]domain.BudgetRequest, 0)
	for _, r := range st.requests {
		if r.DepartmentID != departmentID {
			continue
		}
		if status != nil && r.Status != *status {
			continue
		}
		out = append(out, cloneRequest(r))
	}
	return out
}

func (tx *budgetTx) LockDepartment(_ context.Context, departmentID string, _ repositories.LockMode) error {
	if _, ok := tx.state.departments[departmentID]; !ok {
		return apperrors.ErrNotFound
	}
	return nil
}

func (tx *budgetTx) FindRequestByIDForUpdate(_ context.Context, requestID string) (*domain.BudgetRequest, error) {
	r, ok := tx.state.requests[requestID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	r = cloneRequest(r)
	return &r, nil
}

func (tx *budgetTx) InsertRequest(_ context.Context, request domain.BudgetRequest) error {
	if _, ok := tx.state.requests[request.RequestID]; ok {
		return apperrors.ErrDuplicate
	}
	tx.state.requests[request.RequestID] = cloneRequest(request)
	return nil
}

func (tx *budgetTx) UpdateRequest(_ context.Context, request domain.BudgetRequest) error {
	if _, ok := tx.state.requests[request.RequestID]; !ok {
		return apperrors.ErrNotFound
	}
	tx.state.requests[request.RequestID] = cloneRequest(request)
	return nil
}

func (tx *budgetTx) DeleteRequest(_ context.Context, requestID string) error {
	if _, ok := tx.state.requests[requestID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(tx.state.requests, requestID)
	return nil
}

func (tx *budgetTx) ListApprovedRequestsByDepartment(_ context.Context, departmentID string) ([]domain.BudgetRequest, error) {
	status := domain.RequestApproved
	return filterRequests(tx.state, departmentID, &status), nil
}

func (tx *budgetTx) EnsureBalanceForUpdate(_ context.Context, key domain.BalanceKey) (*domain.CategoryBalance, error) {
	b, ok := tx.state.balances[key]
	if !ok {
		b = domain.CategoryBalance{
			DepartmentID:  key.DepartmentID,
			Category:      key.Category,
			Amount:        decimal.Zero,
			LastUpdatedAt: tx.now,
		}
		tx.state.balances[key] = b
	}
	return &b, nil
}

func (tx *budgetTx) FindBalanceForUpdate(_ context.Context, key domain.BalanceKey) (*domain.CategoryBalance, error) {
	b, ok := tx.state.balances[key]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &b, nil
}

func (tx *budgetTx) SaveBalance(_ context.Context, balance domain.CategoryBalance) error {
	if _, ok := tx.state.balances[balance.Key()]; !ok {
		return apperrors.ErrNotFound
	}
	tx.state.balances[balance.Key()] = balance
	return nil
}

func (tx *budgetTx) ReplaceBalances(_ context.Context, departmentID string, sums map[string]decimal.Decimal) error {
	for k, b := range tx.state.balances {
		if k.DepartmentID == departmentID {
			b.Amount = decimal.Zero
			b.LastUpdatedAt = tx.now
			tx.state.balances[k] = b
		}
	}
	for category, amount := range sums {
		key := domain.BalanceKey{DepartmentID: departmentID, Category: category}
		tx.state.balances[key] = domain.CategoryBalance{
			DepartmentID:  departmentID,
			Category:      category,
			Amount:        amount,
			LastUpdatedAt: tx.now,
		}
	}
	return nil
}
