package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shukrishariff-oms/pms-istmo/internal/apperrors"
	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
	portsrepo "github.com/shukrishariff-oms/pms-istmo/internal/core/ports/repositories"
	portssvc "github.com/shukrishariff-oms/pms-istmo/internal/core/ports/services"
	"github.com/shukrishariff-oms/pms-istmo/internal/utils/ledger"
)

const entityBudgetRequest = "budget request"

// budgetService runs the budget request journal and keeps the category balances in step with it.
type budgetService struct {
	BaseService
	budgetRepo     portsrepo.BudgetRepositoryFacade
	departmentRepo portsrepo.DepartmentReader
}

// NewBudgetService creates a new BudgetService.
func NewBudgetService(budgetRepo portsrepo.BudgetRepositoryFacade, departmentRepo portsrepo.DepartmentReader, options ...ServiceOption) portssvc.BudgetSvcFacade {
	return &budgetService{
		BaseService:    newBaseService(options...),
		budgetRepo:     budgetRepo,
		departmentRepo: departmentRepo,
	}
}

var _ portssvc.BudgetSvcFacade = (*budgetService)(nil)

// ledgerEffect is one balance movement of a journal operation.
type ledgerEffect struct {
	key    domain.BalanceKey
	amount decimal.Decimal
	credit bool
}

func debitOf(r domain.BudgetRequest) ledgerEffect {
	return ledgerEffect{key: r.Key(), amount: r.Amount}
}

func creditOf(r domain.BudgetRequest) ledgerEffect {
	return ledgerEffect{key: r.Key(), amount: r.Amount, credit: true}
}

// applyEffects locks every affected balance row in sorted order, then applies the effects
// in the order given. Credited rows are created when absent; a debit of a missing row is a no-op.
func (s *budgetService) applyEffects(ctx context.Context, tx portsrepo.BudgetTxRepository, now time.Time, effects ...ledgerEffect) error {
	keys := make([]domain.BalanceKey, 0, len(effects))
	credited := make(map[domain.BalanceKey]bool, len(effects))
	for _, e := range effects {
		keys = append(keys, e.key)
		if e.credit {
			credited[e.key] = true
		}
	}

	ordered := ledger.LockOrder(keys...)
	rows := make(map[domain.BalanceKey]*domain.CategoryBalance, len(ordered))
	for _, k := range ordered {
		var (
			b   *domain.CategoryBalance
			err error
		)
		if credited[k] {
			b, err = tx.EnsureBalanceForUpdate(ctx, k)
		} else {
			b, err = tx.FindBalanceForUpdate(ctx, k)
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
		}
		if err != nil {
			return fmt.Errorf("failed to lock balance %s/%s: %w", k.DepartmentID, k.Category, err)
		}
		rows[k] = b
	}

	touched := make(map[domain.BalanceKey]bool, len(rows))
	for _, e := range effects {
		b, ok := rows[e.key]
		if !ok {
			continue
		}
		if e.credit {
			b.Amount = ledger.Credit(b.Amount, e.amount)
		} else {
			b.Amount = ledger.Debit(b.Amount, e.amount)
		}
		b.LastUpdatedAt = now
		touched[e.key] = true
	}

	for _, k := range ordered {
		if !touched[k] {
			continue
		}
		if err := tx.SaveBalance(ctx, *rows[k]); err != nil {
			return fmt.Errorf("failed to save balance %s/%s: %w", k.DepartmentID, k.Category, err)
		}
	}
	return nil
}

// loadForUpdate locks a request row, translating a missing row into a NotFoundError.
func loadForUpdate(ctx context.Context, tx portsrepo.BudgetTxRepository, requestID string) (*domain.BudgetRequest, error) {
	req, err := tx.FindRequestByIDForUpdate(ctx, requestID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(entityBudgetRequest, requestID)
		}
		return nil, fmt.Errorf("failed to load budget request %s: %w", requestID, err)
	}
	return req, nil
}

func requirePending(req *domain.BudgetRequest) error {
	if req.Status != domain.RequestPending {
		return apperrors.NewInvalidStateError(entityBudgetRequest, req.RequestID,
			fmt.Sprintf("status is %s, expected %s", req.Status, domain.RequestPending))
	}
	return nil
}

func validateAmountAndCategory(amount decimal.Decimal, category string) error {
	if !amount.IsPositive() {
		return apperrors.NewValidationError(entityBudgetRequest, fmt.Sprintf("amount must be positive, got %s", amount.String()))
	}
	if strings.TrimSpace(category) == "" {
		return apperrors.NewValidationError(entityBudgetRequest, "category is required")
	}
	return nil
}

func lockDepartment(ctx context.Context, tx portsrepo.BudgetTxRepository, departmentID string, mode portsrepo.LockMode) error {
	if err := tx.LockDepartment(ctx, departmentID, mode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError("department", departmentID)
		}
		return fmt.Errorf("failed to lock department %s: %w", departmentID, err)
	}
	return nil
}

// Submit creates a PENDING budget request.
func (s *budgetService) Submit(ctx context.Context, req domain.SubmitBudgetRequest) (*domain.BudgetRequest, error) {
	category := strings.TrimSpace(req.Category)
	if err := validateAmountAndCategory(req.Amount, category); err != nil {
		s.LogFailure(ctx, err, "Rejected budget request submission", slog.String("department_id", req.DepartmentID))
		return nil, err
	}
	if strings.TrimSpace(req.DepartmentID) == "" {
		return nil, apperrors.NewValidationError(entityBudgetRequest, "department is required")
	}

	now := s.now()
	request := domain.BudgetRequest{
		RequestID:     s.newID(),
		DepartmentID:  req.DepartmentID,
		RequesterID:   req.RequesterID,
		Title:         strings.TrimSpace(req.Title),
		Category:      category,
		Amount:        req.Amount,
		Justification: req.Justification,
		Status:        domain.RequestPending,
		Version:       1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     req.RequesterID,
			LastUpdatedAt: now,
			LastUpdatedBy: req.RequesterID,
		},
	}

	err := s.budgetRepo.WithinBudgetTx(ctx, func(ctx context.Context, tx portsrepo.BudgetTxRepository) error {
		if err := tx.LockDepartment(ctx, req.DepartmentID, portsrepo.LockShared); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NewValidationError(entityBudgetRequest, fmt.Sprintf("department %s does not exist", req.DepartmentID))
			}
			return fmt.Errorf("failed to lock department %s: %w", req.DepartmentID, err)
		}
		return tx.InsertRequest(ctx, request)
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to submit budget request", slog.String("department_id", req.DepartmentID))
		return nil, err
	}

	s.LogInfo(ctx, "Budget request submitted",
		slog.String("request_id", request.RequestID),
		slog.String("department_id", request.DepartmentID),
		slog.String("category", request.Category),
		slog.String("amount", request.Amount.String()))
	return &request, nil
}

// Approve moves a PENDING request to APPROVED and credits its category in the same transaction.
func (s *budgetService) Approve(ctx context.Context, requestID, approverID string) error {
	err := s.budgetRepo.WithinBudgetTx(ctx, func(ctx context.Context, tx portsrepo.BudgetTxRepository) error {
		req, err := loadForUpdate(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if err := requirePending(req); err != nil {
			return err
		}
		if err := lockDepartment(ctx, tx, req.DepartmentID, portsrepo.LockShared); err != nil {
			return err
		}

		now := s.now()
		if err := s.applyEffects(ctx, tx, now, creditOf(*req)); err != nil {
			return err
		}

		approver := approverID
		req.Status = domain.RequestApproved
		req.ApprovedBy = &approver
		req.ApprovedAt = &now
		req.LastUpdatedAt = now
		req.LastUpdatedBy = approverID
		req.Version++
		return tx.UpdateRequest(ctx, *req)
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to approve budget request", slog.String("request_id", requestID))
		return err
	}

	s.LogInfo(ctx, "Budget request approved", slog.String("request_id", requestID), slog.String("approver_id", approverID))
	return nil
}

// Reject moves a PENDING request to REJECTED. The ledger is never touched.
func (s *budgetService) Reject(ctx context.Context, requestID, actorID string) error {
	err := s.budgetRepo.WithinBudgetTx(ctx, func(ctx context.Context, tx portsrepo.BudgetTxRepository) error {
		req, err := loadForUpdate(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if err := requirePending(req); err != nil {
			return err
		}

		req.Status = domain.RequestRejected
		req.LastUpdatedAt = s.now()
		req.LastUpdatedBy = actorID
		req.Version++
		return tx.UpdateRequest(ctx, *req)
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to reject budget request", slog.String("request_id", requestID))
		return err
	}

	s.LogInfo(ctx, "Budget request rejected", slog.String("request_id", requestID), slog.String("actor_id", actorID))
	return nil
}

// Edit replaces the request fields. For an APPROVED request the old effect is debited
// (clamped) from the old category and the new amount credited to the new category.
func (s *budgetService) Edit(ctx context.Context, requestID string, edit domain.EditBudgetRequest) (*domain.BudgetRequest, error) {
	category := strings.TrimSpace(edit.Category)
	if err := validateAmountAndCategory(edit.Amount, category); err != nil {
		s.LogFailure(ctx, err, "Rejected budget request edit", slog.String("request_id", requestID))
		return nil, err
	}

	var updated domain.BudgetRequest
	err := s.budgetRepo.WithinBudgetTx(ctx, func(ctx context.Context, tx portsrepo.BudgetTxRepository) error {
		req, err := loadForUpdate(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if edit.ExpectedVersion != nil && *edit.ExpectedVersion != req.Version {
			return apperrors.NewConflictError(entityBudgetRequest, requestID,
				fmt.Sprintf("version is %d, expected %d", req.Version, *edit.ExpectedVersion))
		}
		if req.Status != domain.RequestPending && !edit.AllowProcessed {
			return apperrors.NewInvalidStateError(entityBudgetRequest, requestID,
				fmt.Sprintf("status is %s, only pending requests may be edited", req.Status))
		}

		now := s.now()
		before := *req
		req.Title = strings.TrimSpace(edit.Title)
		req.Amount = edit.Amount
		req.Category = category
		req.Justification = edit.Justification
		req.LastUpdatedAt = now
		req.LastUpdatedBy = edit.EditorID
		req.Version++

		if before.Status == domain.RequestApproved {
			if err := lockDepartment(ctx, tx, req.DepartmentID, portsrepo.LockShared); err != nil {
				return err
			}
			if err := s.applyEffects(ctx, tx, now, debitOf(before), creditOf(*req)); err != nil {
				return err
			}
		}

		if err := tx.UpdateRequest(ctx, *req); err != nil {
			return err
		}
		updated = *req
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to edit budget request", slog.String("request_id", requestID))
		return nil, err
	}

	s.LogInfo(ctx, "Budget request edited",
		slog.String("request_id", requestID),
		slog.String("status", string(updated.Status)),
		slog.Int64("version", updated.Version))
	return &updated, nil
}

// Delete removes a request, debiting (clamped) its category first when it is APPROVED.
func (s *budgetService) Delete(ctx context.Context, requestID string) error {
	err := s.budgetRepo.WithinBudgetTx(ctx, func(ctx context.Context, tx portsrepo.BudgetTxRepository) error {
		req, err := loadForUpdate(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if req.Status == domain.RequestApproved {
			if err := lockDepartment(ctx, tx, req.DepartmentID, portsrepo.LockShared); err != nil {
				return err
			}
			if err := s.applyEffects(ctx, tx, s.now(), debitOf(*req)); err != nil {
				return err
			}
		}
		return tx.DeleteRequest(ctx, requestID)
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to delete budget request", slog.String("request_id", requestID))
		return err
	}

	s.LogInfo(ctx, "Budget request deleted", slog.String("request_id", requestID))
	return nil
}

// GetRequest retrieves a budget request by its ID.
func (s *budgetService) GetRequest(ctx context.Context, requestID string) (*domain.BudgetRequest, error) {
	req, err := s.budgetRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(entityBudgetRequest, requestID)
		}
		s.LogFailure(ctx, err, "Failed to find budget request", slog.String("request_id", requestID))
		return nil, fmt.Errorf("failed to find budget request %s: %w", requestID, err)
	}
	return req, nil
}

// ListRequests lists a department's requests newest first.
func (s *budgetService) ListRequests(ctx context.Context, departmentID string, status *domain.RequestStatus) ([]domain.BudgetRequest, error) {
	if status != nil && !status.Valid() {
		return nil, apperrors.NewValidationError(entityBudgetRequest, fmt.Sprintf("unknown status %q", *status))
	}
	requests, err := s.budgetRepo.ListRequestsByDepartment(ctx, departmentID, status)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to list budget requests", slog.String("department_id", departmentID))
		return nil, fmt.Errorf("failed to list budget requests: %w", err)
	}
	return requests, nil
}

// ListBalances returns a department's category balances and their total.
func (s *budgetService) ListBalances(ctx context.Context, departmentID string) (*domain.DepartmentBudget, error) {
	if _, err := s.findDepartment(ctx, departmentID); err != nil {
		return nil, err
	}
	balances, err := s.budgetRepo.ListBalancesByDepartment(ctx, departmentID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to list balances", slog.String("department_id", departmentID))
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}
	return &domain.DepartmentBudget{
		DepartmentID: departmentID,
		Balances:     balances,
		Total:        ledger.Total(balances),
	}, nil
}

// GetBalance returns one category balance.
func (s *budgetService) GetBalance(ctx context.Context, departmentID, category string) (*domain.CategoryBalance, error) {
	b, err := s.budgetRepo.GetBalance(ctx, departmentID, category)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("category balance", departmentID+"/"+category)
		}
		s.LogFailure(ctx, err, "Failed to get balance", slog.String("department_id", departmentID), slog.String("category", category))
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return b, nil
}

// Reconcile rebuilds a department's balance rows from its approved requests only.
// The department row is locked exclusively so no credit interleaves with the rebuild.
func (s *budgetService) Reconcile(ctx context.Context, departmentID string) (map[string]decimal.Decimal, error) {
	var sums map[string]decimal.Decimal
	err := s.budgetRepo.WithinBudgetTx(ctx, func(ctx context.Context, tx portsrepo.BudgetTxRepository) error {
		if err := lockDepartment(ctx, tx, departmentID, portsrepo.LockExclusive); err != nil {
			return err
		}
		approved, err := tx.ListApprovedRequestsByDepartment(ctx, departmentID)
		if err != nil {
			return fmt.Errorf("failed to list approved requests: %w", err)
		}
		sums = ledger.Recompute(approved)
		return tx.ReplaceBalances(ctx, departmentID, sums)
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to reconcile balances", slog.String("department_id", departmentID))
		return nil, err
	}

	s.LogInfo(ctx, "Balances reconciled", slog.String("department_id", departmentID), slog.Int("categories", len(sums)))
	return sums, nil
}

// ReconcileAll reconciles every department, one transaction each. It stops at the first failure.
func (s *budgetService) ReconcileAll(ctx context.Context) (map[string]map[string]decimal.Decimal, error) {
	departments, err := s.departmentRepo.ListDepartments(ctx)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to list departments")
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}

	out := make(map[string]map[string]decimal.Decimal, len(departments))
	for _, d := range departments {
		sums, err := s.Reconcile(ctx, d.DepartmentID)
		if err != nil {
			return out, fmt.Errorf("failed to reconcile department %s: %w", d.Code, err)
		}
		out[d.DepartmentID] = sums
	}
	return out, nil
}

// CheckDrift compares stored balances against a recomputation without writing anything.
func (s *budgetService) CheckDrift(ctx context.Context, departmentID string) ([]domain.BalanceDrift, error) {
	if _, err := s.findDepartment(ctx, departmentID); err != nil {
		return nil, err
	}
	status := domain.RequestApproved
	approved, err := s.budgetRepo.ListRequestsByDepartment(ctx, departmentID, &status)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved requests: %w", err)
	}
	stored, err := s.budgetRepo.ListBalancesByDepartment(ctx, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}

	drift := ledger.Drift(stored, ledger.Recompute(approved))
	if len(drift) > 0 {
		s.GetLogger(ctx).Warn("Balance drift detected", slog.String("department_id", departmentID), slog.Int("categories", len(drift)))
	}
	return drift, nil
}

func (s *budgetService) findDepartment(ctx context.Context, departmentID string) (*domain.Department, error) {
	d, err := s.departmentRepo.FindDepartmentByID(ctx, departmentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("department", departmentID)
		}
		return nil, fmt.Errorf("failed to find department %s: %w", departmentID, err)
	}
	return d, nil
}
