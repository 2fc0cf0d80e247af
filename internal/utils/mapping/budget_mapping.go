package mapping

import (
	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
	"github.com/shukrishariff-oms/pms-istmo/internal/models"
)

// ToModelBudgetRequest converts a domain BudgetRequest to a model BudgetRequest
func ToModelBudgetRequest(d domain.BudgetRequest) models.BudgetRequest {
	return models.BudgetRequest{
		RequestID:     d.RequestID,
		DepartmentID:  d.DepartmentID,
		RequesterID:   d.RequesterID,
		Title:         d.Title,
		Category:      d.Category,
		Amount:        d.Amount,
		Justification: d.Justification,
		Status:        string(d.Status),
		ApprovedBy:    toNullString(d.ApprovedBy),
		ApprovedAt:    toNullTime(d.ApprovedAt),
		Version:       d.Version,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBudgetRequest converts a model BudgetRequest to a domain BudgetRequest
func ToDomainBudgetRequest(m models.BudgetRequest) domain.BudgetRequest {
	return domain.BudgetRequest{
		RequestID:     m.RequestID,
		DepartmentID:  m.DepartmentID,
		RequesterID:   m.RequesterID,
		Title:         m.Title,
		Category:      m.Category,
		Amount:        m.Amount,
		Justification: m.Justification,
		Status:        domain.RequestStatus(m.Status),
		ApprovedBy:    fromNullString(m.ApprovedBy),
		ApprovedAt:    fromNullTime(m.ApprovedAt),
		Version:       m.Version,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainBudgetRequestSlice converts a slice of model BudgetRequests to domain BudgetRequests
func ToDomainBudgetRequestSlice(ms []models.BudgetRequest) []domain.BudgetRequest {
	ds := make([]domain.BudgetRequest, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainBudgetRequest(m)
	}
	return ds
}

// ToDomainCategoryBalance converts a model CategoryBalance to a domain CategoryBalance
func ToDomainCategoryBalance(m models.CategoryBalance) domain.CategoryBalance {
	return domain.CategoryBalance{
		DepartmentID:  m.DepartmentID,
		Category:      m.Category,
		Amount:        m.Amount,
		LastUpdatedAt: m.LastUpdatedAt,
	}
}

// ToDomainDepartment converts a model Department to a domain Department
func ToDomainDepartment(m models.Department) domain.Department {
	return domain.Department{
		DepartmentID: m.DepartmentID,
		Name:         m.Name,
		Code:         m.Code,
	}
}
