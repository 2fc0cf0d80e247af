package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// BudgetRequest is a row of the budget_requests table.
type BudgetRequest struct {
	RequestID     string          `db:"request_id"`
	DepartmentID  string          `db:"department_id"`
	RequesterID   string          `db:"requester_id"`
	Title         string          `db:"title"`
	Category      string          `db:"category"`
	Amount        decimal.Decimal `db:"amount"`
	Justification string          `db:"justification"`
	Status        string          `db:"status"`
	ApprovedBy    sql.NullString  `db:"approved_by"`
	ApprovedAt    sql.NullTime    `db:"approved_at"`
	Version       int64           `db:"version"`
	AuditFields
}

// CategoryBalance is a row of the category_balances table, keyed by (department_id, category).
type CategoryBalance struct {
	DepartmentID  string          `db:"department_id"`
	Category      string          `db:"category"`
	Amount        decimal.Decimal `db:"amount"`
	LastUpdatedAt time.Time       `db:"last_updated_at"`
}
