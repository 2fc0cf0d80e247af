package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/shukrishariff-oms/pms-istmo/internal/apperrors"
	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
	portsrepo "github.com/shukrishariff-oms/pms-istmo/internal/core/ports/repositories"
	"github.com/shukrishariff-oms/pms-istmo/internal/models"
	"github.com/shukrishariff-oms/pms-istmo/internal/utils/mapping"
)

const budgetRequestColumns = `request_id, department_id, requester_id, title, category, amount, justification,
	status, approved_by, approved_at, version, created_at, created_by, last_updated_at, last_updated_by`

const categoryBalanceColumns = `department_id, category, amount, last_updated_at`

// PgxBudgetRepository stores budget requests and the category balances derived from them.
type PgxBudgetRepository struct {
	BaseRepository
}

func newPgxBudgetRepository(pool *pgxpool.Pool) portsrepo.BudgetRepositoryFacade {
	return &PgxBudgetRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BudgetRepositoryFacade = (*PgxBudgetRepository)(nil)

// pgxBudgetTx is the transactional view handed to BudgetTxFunc callbacks.
type pgxBudgetTx struct {
	tx  pgx.Tx
	now time.Time
}

var _ portsrepo.BudgetTxRepository = (*pgxBudgetTx)(nil)

// WithinBudgetTx runs fn in a read-committed transaction. Row locks taken through the
// tx view serialize concurrent writers on the same department and category.
func (r *PgxBudgetRepository) WithinBudgetTx(ctx context.Context, fn portsrepo.BudgetTxFunc) error {
	return r.withinTx(ctx, func(tx pgx.Tx) error {
		return fn(ctx, &pgxBudgetTx{tx: tx, now: time.Now().UTC()})
	})
}

func scanBudgetRequest(row rowScanner) (domain.BudgetRequest, error) {
	var m models.BudgetRequest
	err := row.Scan(
		&m.RequestID,
		&m.DepartmentID,
		&m.RequesterID,
		&m.Title,
		&m.Category,
		&m.Amount,
		&m.Justification,
		&m.Status,
		&m.ApprovedBy,
		&m.ApprovedAt,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.BudgetRequest{}, err
	}
	return mapping.ToDomainBudgetRequest(m), nil
}

func scanCategoryBalance(row rowScanner) (domain.CategoryBalance, error) {
	var m models.CategoryBalance
	if err := row.Scan(&m.DepartmentID, &m.Category, &m.Amount, &m.LastUpdatedAt); err != nil {
		return domain.CategoryBalance{}, err
	}
	return mapping.ToDomainCategoryBalance(m), nil
}

func findRequest(ctx context.Context, q queryer, requestID string, forUpdate bool) (*domain.BudgetRequest, error) {
	query := `SELECT ` + budgetRequestColumns + ` FROM budget_requests WHERE request_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	req, err := scanBudgetRequest(q.QueryRow(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find budget request %s: %w", requestID, err)
	}
	return &req, nil
}

func listRequests(ctx context.Context, q queryer, departmentID string, status *domain.RequestStatus) ([]domain.BudgetRequest, error) {
	query := `SELECT ` + budgetRequestColumns + ` FROM budget_requests WHERE department_id = $1`
	args := []any{departmentID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at DESC, request_id DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list budget requests for department %s: %w", departmentID, err)
	}
	defer rows.Close()

	requests := []domain.BudgetRequest{}
	for rows.Next() {
		req, err := scanBudgetRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget request row: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget request rows: %w", err)
	}
	return requests, nil
}

// FindRequestByID retrieves a budget request by its ID.
func (r *PgxBudgetRepository) FindRequestByID(ctx context.Context, requestID string) (*domain.BudgetRequest, error) {
	return findRequest(ctx, r.Pool, requestID, false)
}

// ListRequestsByDepartment lists a department's requests, newest first.
func (r *PgxBudgetRepository) ListRequestsByDepartment(ctx context.Context, departmentID string, status *domain.RequestStatus) ([]domain.BudgetRequest, error) {
	return listRequests(ctx, r.Pool, departmentID, status)
}

// ListBalancesByDepartment returns the materialized balances of a department.
func (r *PgxBudgetRepository) ListBalancesByDepartment(ctx context.Context, departmentID string) ([]domain.CategoryBalance, error) {
	query := `SELECT ` + categoryBalanceColumns + ` FROM category_balances WHERE department_id = $1 ORDER BY category`
	rows, err := r.Pool.Query(ctx, query, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances for department %s: %w", departmentID, err)
	}
	defer rows.Close()

	balances := []domain.CategoryBalance{}
	for rows.Next() {
		b, err := scanCategoryBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance row: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance rows: %w", err)
	}
	return balances, nil
}

// GetBalance returns one category balance.
func (r *PgxBudgetRepository) GetBalance(ctx context.Context, departmentID, category string) (*domain.CategoryBalance, error) {
	query := `SELECT ` + categoryBalanceColumns + ` FROM category_balances WHERE department_id = $1 AND category = $2`
	b, err := scanCategoryBalance(r.Pool.QueryRow(ctx, query, departmentID, category))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get balance %s/%s: %w", departmentID, category, err)
	}
	return &b, nil
}

func (t *pgxBudgetTx) LockDepartment(ctx context.Context, departmentID string, mode portsrepo.LockMode) error {
	query := `SELECT department_id FROM departments WHERE department_id = $1 FOR SHARE`
	if mode == portsrepo.LockExclusive {
		query = `SELECT department_id FROM departments WHERE department_id = $1 FOR UPDATE`
	}
	var id string
	if err := t.tx.QueryRow(ctx, query, departmentID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to lock department %s (%s): %w", departmentID, mode, mapPgError(err))
	}
	return nil
}

func (t *pgxBudgetTx) FindRequestByIDForUpdate(ctx context.Context, requestID string) (*domain.BudgetRequest, error) {
	return findRequest(ctx, t.tx, requestID, true)
}

func (t *pgxBudgetTx) InsertRequest(ctx context.Context, request domain.BudgetRequest) error {
	m := mapping.ToModelBudgetRequest(request)
	query := `
		INSERT INTO budget_requests (` + budgetRequestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := t.tx.Exec(ctx, query,
		m.RequestID,
		m.DepartmentID,
		m.RequesterID,
		m.Title,
		m.Category,
		m.Amount,
		m.Justification,
		m.Status,
		m.ApprovedBy,
		m.ApprovedAt,
		m.Version,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert budget request %s: %w", m.RequestID, mapPgError(err))
	}
	return nil
}

func (t *pgxBudgetTx) UpdateRequest(ctx context.Context, request domain.BudgetRequest) error {
	m := mapping.ToModelBudgetRequest(request)
	query := `
		UPDATE budget_requests
		SET title = $2, category = $3, amount = $4, justification = $5, status = $6,
			approved_by = $7, approved_at = $8, version = $9, last_updated_at = $10, last_updated_by = $11
		WHERE request_id = $1;
	`
	tag, err := t.tx.Exec(ctx, query,
		m.RequestID,
		m.Title,
		m.Category,
		m.Amount,
		m.Justification,
		m.Status,
		m.ApprovedBy,
		m.ApprovedAt,
		m.Version,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget request %s: %w", m.RequestID, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (t *pgxBudgetTx) DeleteRequest(ctx context.Context, requestID string) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM budget_requests WHERE request_id = $1`, requestID)
	if err != nil {
		return fmt.Errorf("failed to delete budget request %s: %w", requestID, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (t *pgxBudgetTx) ListApprovedRequestsByDepartment(ctx context.Context, departmentID string) ([]domain.BudgetRequest, error) {
	status := domain.RequestApproved
	return listRequests(ctx, t.tx, departmentID, &status)
}

func (t *pgxBudgetTx) EnsureBalanceForUpdate(ctx context.Context, key domain.BalanceKey) (*domain.CategoryBalance, error) {
	insert := `
		INSERT INTO category_balances (department_id, category, amount, last_updated_at)
		VALUES ($1, $2, 0, $3)
		ON CONFLICT (department_id, category) DO NOTHING;
	`
	if _, err := t.tx.Exec(ctx, insert, key.DepartmentID, key.Category, t.now); err != nil {
		return nil, fmt.Errorf("failed to create balance %s/%s: %w", key.DepartmentID, key.Category, mapPgError(err))
	}
	return t.FindBalanceForUpdate(ctx, key)
}

func (t *pgxBudgetTx) FindBalanceForUpdate(ctx context.Context, key domain.BalanceKey) (*domain.CategoryBalance, error) {
	query := `SELECT ` + categoryBalanceColumns + ` FROM category_balances WHERE department_id = $1 AND category = $2 FOR UPDATE`
	b, err := scanCategoryBalance(t.tx.QueryRow(ctx, query, key.DepartmentID, key.Category))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock balance %s/%s: %w", key.DepartmentID, key.Category, mapPgError(err))
	}
	return &b, nil
}

func (t *pgxBudgetTx) SaveBalance(ctx context.Context, balance domain.CategoryBalance) error {
	query := `
		UPDATE category_balances
		SET amount = $3, last_updated_at = $4
		WHERE department_id = $1 AND category = $2;
	`
	tag, err := t.tx.Exec(ctx, query, balance.DepartmentID, balance.Category, balance.Amount, balance.LastUpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save balance %s/%s: %w", balance.DepartmentID, balance.Category, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (t *pgxBudgetTx) ReplaceBalances(ctx context.Context, departmentID string, sums map[string]decimal.Decimal) error {
	zeroOut := `UPDATE category_balances SET amount = 0, last_updated_at = $2 WHERE department_id = $1`
	if _, err := t.tx.Exec(ctx, zeroOut, departmentID, t.now); err != nil {
		return fmt.Errorf("failed to clear balances for department %s: %w", departmentID, mapPgError(err))
	}
	if len(sums) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	insert := `
		INSERT INTO category_balances (department_id, category, amount, last_updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (department_id, category)
		DO UPDATE SET amount = EXCLUDED.amount, last_updated_at = EXCLUDED.last_updated_at;
	`
	for category, amount := range sums {
		batch.Queue(insert, departmentID, category, amount, t.now)
	}

	br := t.tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert reconciled balances for department %s: %w", departmentID, mapPgError(err))
	}
	return nil
}
