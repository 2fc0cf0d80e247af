package dto

import (
	"time"

	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
)

// CreateDocumentRequest defines the body for registering a tracked document.
type CreateDocumentRequest struct {
	Title         string  `json:"title" binding:"required,max=255"`
	RefNumber     *string `json:"refNumber" binding:"omitempty,max=128"`
	Description   string  `json:"description"`
	CurrentHolder string  `json:"currentHolder" binding:"required,max=255"`
	Status        string  `json:"status" binding:"omitempty,max=32"`
	ProjectID     *string `json:"projectID"`
}

// ToDomain converts the body into service input.
func (r CreateDocumentRequest) ToDomain() domain.CreateDocumentParams {
	return domain.CreateDocumentParams{
		Title:         r.Title,
		RefNumber:     r.RefNumber,
		Description:   r.Description,
		CurrentHolder: r.CurrentHolder,
		Status:        r.Status,
		ProjectID:     r.ProjectID,
	}
}

// UpdateDocumentRequest defines a partial document update. Omitted fields are left unchanged.
// IsCorrection rewrites the latest custody link instead of recording a handoff.
type UpdateDocumentRequest struct {
	Title          *string    `json:"title" binding:"omitempty,max=255"`
	RefNumber      *string    `json:"refNumber" binding:"omitempty,max=128"`
	ProjectID      *string    `json:"projectID"`
	Description    *string    `json:"description"`
	CurrentHolder  *string    `json:"currentHolder" binding:"omitempty,max=255"`
	Status         *string    `json:"status" binding:"omitempty,max=32"`
	SignerName     *string    `json:"signerName" binding:"omitempty,max=255"`
	SignatureImage *string    `json:"signatureImage"`
	SignedAt       *time.Time `json:"signedAt"`
	IsCorrection   bool       `json:"isCorrection"`
}

// ToDomain converts the body into service input.
func (r UpdateDocumentRequest) ToDomain() domain.DocumentUpdate {
	return domain.DocumentUpdate{
		Title:          r.Title,
		RefNumber:      r.RefNumber,
		ProjectID:      r.ProjectID,
		Description:    r.Description,
		CurrentHolder:  r.CurrentHolder,
		Status:         r.Status,
		SignerName:     r.SignerName,
		SignatureImage: r.SignatureImage,
		SignedAt:       r.SignedAt,
		IsCorrection:   r.IsCorrection,
	}
}

// ListDocumentsParams defines the query parameters of the document list.
type ListDocumentsParams struct {
	ProjectID string `form:"projectID"`
	Holder    string `form:"holder"`
}

// ToFilter converts the query into a document filter. Blank parameters are ignored.
func (p ListDocumentsParams) ToFilter() domain.DocumentFilter {
	var f domain.DocumentFilter
	if p.ProjectID != "" {
		f.ProjectID = &p.ProjectID
	}
	if p.Holder != "" {
		f.Holder = &p.Holder
	}
	return f
}

// ChainVerificationResponse reports whether a custody chain is intact.
type ChainVerificationResponse struct {
	DocumentID string `json:"documentID"`
	Valid      bool   `json:"valid"`
	Reason     string `json:"reason,omitempty"`
}
