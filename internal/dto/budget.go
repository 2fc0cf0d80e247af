package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
)

// SubmitBudgetRequest defines the body of a new budget request.
type SubmitBudgetRequest struct {
	Title         string          `json:"title" binding:"required,max=255"`
	Category      string          `json:"category" binding:"required,max=128"`
	Amount        decimal.Decimal `json:"amount" binding:"dgt0"`
	Justification string          `json:"justification"`
}

// ToDomain converts the body into service input for departmentID, submitted by requesterID.
func (r SubmitBudgetRequest) ToDomain(departmentID, requesterID string) domain.SubmitBudgetRequest {
	return domain.SubmitBudgetRequest{
		DepartmentID:  departmentID,
		RequesterID:   requesterID,
		Title:         r.Title,
		Category:      r.Category,
		Amount:        r.Amount,
		Justification: r.Justification,
	}
}

// EditBudgetRequest is the full replacement field set of a budget request.
// Version, when given, must match the stored version.
type EditBudgetRequest struct {
	Title         string          `json:"title" binding:"required,max=255"`
	Category      string          `json:"category" binding:"required,max=128"`
	Amount        decimal.Decimal `json:"amount" binding:"dgt0"`
	Justification string          `json:"justification"`
	Version       *int64          `json:"version" binding:"omitempty,min=1"`
}

// ToDomain converts the body into service input. allowProcessed is decided by the caller's role.
func (r EditBudgetRequest) ToDomain(editorID string, allowProcessed bool) domain.EditBudgetRequest {
	return domain.EditBudgetRequest{
		Title:           r.Title,
		Category:        r.Category,
		Amount:          r.Amount,
		Justification:   r.Justification,
		ExpectedVersion: r.Version,
		AllowProcessed:  allowProcessed,
		EditorID:        editorID,
	}
}

// ListBudgetRequestsParams defines the query parameters of the request list.
type ListBudgetRequestsParams struct {
	Status string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
}

// BudgetRequestResponse defines the data returned for a budget request.
type BudgetRequestResponse struct {
	RequestID     string          `json:"requestID"`
	DepartmentID  string          `json:"departmentID"`
	RequesterID   string          `json:"requesterID"`
	Title         string          `json:"title"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Justification string          `json:"justification"`
	Status        string          `json:"status"`
	ApprovedBy    *string         `json:"approvedBy,omitempty"`
	ApprovedAt    *time.Time      `json:"approvedAt,omitempty"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy string          `json:"lastUpdatedBy"`
}

// ToBudgetRequestResponse converts a domain.BudgetRequest to its response DTO
func ToBudgetRequestResponse(r *domain.BudgetRequest) BudgetRequestResponse {
	return BudgetRequestResponse{
		RequestID:     r.RequestID,
		DepartmentID:  r.DepartmentID,
		RequesterID:   r.RequesterID,
		Title:         r.Title,
		Category:      r.Category,
		Amount:        r.Amount,
		Justification: r.Justification,
		Status:        string(r.Status),
		ApprovedBy:    r.ApprovedBy,
		ApprovedAt:    r.ApprovedAt,
		Version:       r.Version,
		CreatedAt:     r.CreatedAt,
		LastUpdatedAt: r.LastUpdatedAt,
		LastUpdatedBy: r.LastUpdatedBy,
	}
}

// ToListBudgetRequestResponse converts a slice of domain.BudgetRequest to response DTOs
func ToListBudgetRequestResponse(requests []domain.BudgetRequest) []BudgetRequestResponse {
	res := make([]BudgetRequestResponse, len(requests))
	for i := range requests {
		res[i] = ToBudgetRequestResponse(&requests[i])
	}
	return res
}

// ReconcileResponse reports the recomputed balances of a department.
type ReconcileResponse struct {
	DepartmentID string                     `json:"departmentID"`
	Balances     map[string]decimal.Decimal `json:"balances"`
}

// DriftResponse lists the categories whose stored balance differs from the recomputation.
type DriftResponse struct {
	DepartmentID string       `json:"departmentID"`
	Drift        []DriftEntry `json:"drift"`
}

// DriftEntry is one drifted category.
type DriftEntry struct {
	Category string          `json:"category"`
	Stored   decimal.Decimal `json:"stored"`
	Expected decimal.Decimal `json:"expected"`
	Delta    decimal.Decimal `json:"delta"`
}

// ToDriftResponse converts drift rows to the response DTO
func ToDriftResponse(departmentID string, drift []domain.BalanceDrift) DriftResponse {
	entries := make([]DriftEntry, len(drift))
	for i, d := range drift {
		entries[i] = DriftEntry{Category: d.Category, Stored: d.Stored, Expected: d.Expected, Delta: d.Delta()}
	}
	return DriftResponse{DepartmentID: departmentID, Drift: entries}
}
