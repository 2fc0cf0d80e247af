package mapping

import (
	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
	"github.com/shukrishariff-oms/pms-istmo/internal/models"
)

// ToModelDocumentTracker converts a domain DocumentTracker to a model DocumentTracker.
// The chain is stored separately.
func ToModelDocumentTracker(d domain.DocumentTracker) models.DocumentTracker {
	return models.DocumentTracker{
		DocumentID:    d.DocumentID,
		Title:         d.Title,
		RefNumber:     toNullString(d.RefNumber),
		Description:   d.Description,
		CurrentHolder: d.CurrentHolder,
		Status:        d.Status,
		ProjectID:     toNullString(d.ProjectID),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// ToDomainDocumentTracker converts a model DocumentTracker to a domain DocumentTracker
func ToDomainDocumentTracker(m models.DocumentTracker) domain.DocumentTracker {
	return domain.DocumentTracker{
		DocumentID:    m.DocumentID,
		Title:         m.Title,
		RefNumber:     fromNullString(m.RefNumber),
		Description:   m.Description,
		CurrentHolder: m.CurrentHolder,
		Status:        m.Status,
		ProjectID:     fromNullString(m.ProjectID),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// ToModelCustodyLogEntry converts a domain CustodyLogEntry to a model CustodyLogEntry
func ToModelCustodyLogEntry(d domain.CustodyLogEntry) models.CustodyLogEntry {
	return models.CustodyLogEntry{
		EntryID:        d.EntryID,
		DocumentID:     d.DocumentID,
		FromHolder:     toNullString(d.FromHolder),
		ToHolder:       d.ToHolder,
		Status:         d.Status,
		Note:           toNullString(d.Note),
		Timestamp:      d.Timestamp,
		SignedAt:       toNullTime(d.SignedAt),
		SignerName:     toNullString(d.SignerName),
		SignatureImage: toNullString(d.SignatureImage),
	}
}

// ToDomainCustodyLogEntry converts a model CustodyLogEntry to a domain CustodyLogEntry
func ToDomainCustodyLogEntry(m models.CustodyLogEntry) domain.CustodyLogEntry {
	return domain.CustodyLogEntry{
		EntryID:        m.EntryID,
		DocumentID:     m.DocumentID,
		FromHolder:     fromNullString(m.FromHolder),
		ToHolder:       m.ToHolder,
		Status:         m.Status,
		Note:           fromNullString(m.Note),
		Timestamp:      m.Timestamp,
		SignedAt:       fromNullTime(m.SignedAt),
		SignerName:     fromNullString(m.SignerName),
		SignatureImage: fromNullString(m.SignatureImage),
	}
}
