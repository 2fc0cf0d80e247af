package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus indicates the lifecycle state of a budget request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// Valid reports whether s is one of the known request statuses.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected:
		return true
	}
	return false
}

// BudgetRequest is a proposal to credit a department's spending category.
// It only affects the category balance while APPROVED.
type BudgetRequest struct {
	RequestID     string          `json:"requestID"`    // Primary Key (UUID)
	DepartmentID  string          `json:"departmentID"` // FK -> departments.department_id
	RequesterID   string          `json:"requesterID"`
	Title         string          `json:"title"`
	Category      string          `json:"category"` // Free text, user defined
	Amount        decimal.Decimal `json:"amount"`   // Positive
	Justification string          `json:"justification"`
	Status        RequestStatus   `json:"status"`
	ApprovedBy    *string         `json:"approvedBy"`
	ApprovedAt    *time.Time      `json:"approvedAt"`
	Version       int64           `json:"version"` // Bumped on every write
	AuditFields
}

// Affects reports whether the request currently contributes to its category balance.
func (r BudgetRequest) Affects() bool {
	return r.Status == RequestApproved
}

// BalanceKey identifies one category balance row.
type BalanceKey struct {
	DepartmentID string
	Category     string
}

// Key returns the balance row the request credits when approved.
func (r BudgetRequest) Key() BalanceKey {
	return BalanceKey{DepartmentID: r.DepartmentID, Category: r.Category}
}

// CategoryBalance is the available amount for one (department, category) pair.
// It is a materialized view of the approved requests and is never negative.
type CategoryBalance struct {
	DepartmentID  string          `json:"departmentID"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// Key returns the balance row identity.
func (b CategoryBalance) Key() BalanceKey {
	return BalanceKey{DepartmentID: b.DepartmentID, Category: b.Category}
}

// DepartmentBudget is the set of category balances of a department plus their total.
type DepartmentBudget struct {
	DepartmentID string            `json:"departmentID"`
	Balances     []CategoryBalance `json:"balances"`
	Total        decimal.Decimal   `json:"total"`
}

// BalanceDrift describes a category whose stored balance differs from the recomputed one.
type BalanceDrift struct {
	Category string          `json:"category"`
	Stored   decimal.Decimal `json:"stored"`
	Expected decimal.Decimal `json:"expected"`
}

// Delta is Expected - Stored.
func (d BalanceDrift) Delta() decimal.Decimal {
	return d.Expected.Sub(d.Stored)
}

// SubmitBudgetRequest holds the input of a new budget request.
type SubmitBudgetRequest struct {
	DepartmentID  string
	RequesterID   string
	Title         string
	Category      string
	Amount        decimal.Decimal
	Justification string
}

// EditBudgetRequest holds the full replacement field set of an edit.
// AllowProcessed permits edits of APPROVED and REJECTED requests.
type EditBudgetRequest struct {
	Title           string
	Category        string
	Amount          decimal.Decimal
	Justification   string
	ExpectedVersion *int64
	AllowProcessed  bool
	EditorID        string
}
