package domain

import (
	"strings"
	"time"
)

// Conventional document statuses. Status is an open string; these are the values the
// custody logic gives meaning to.
const (
	DocumentPending    = "pending"
	DocumentInProgress = "in_progress"
	DocumentSigned     = "signed"
	DocumentCompleted  = "completed"
)

// IsSignOffStatus reports whether status marks the current holder's work as done.
func IsSignOffStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case DocumentSigned, DocumentCompleted:
		return true
	}
	return false
}

// DocumentTracker is a physical document whose custody is being tracked.
type DocumentTracker struct {
	DocumentID    string            `json:"documentID"` // Primary Key (UUID)
	Title         string            `json:"title"`
	RefNumber     *string           `json:"refNumber"` // Unique when set
	Description   string            `json:"description"`
	CurrentHolder string            `json:"currentHolder"` // Person or role, not a foreign key
	Status        string            `json:"status"`
	ProjectID     *string           `json:"projectID"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
	Logs          []CustodyLogEntry `json:"logs,omitempty"` // Populated on reads
}

// CustodyLogEntry is one link in a document's custody chain.
type CustodyLogEntry struct {
	EntryID        int64      `json:"entryID"` // Monotonic; chain order
	DocumentID     string     `json:"documentID"`
	FromHolder     *string    `json:"fromHolder"` // nil only for the first entry
	ToHolder       string     `json:"toHolder"`
	Status         string     `json:"status"`
	Note           *string    `json:"note"`
	Timestamp      time.Time  `json:"timestamp"`
	SignedAt       *time.Time `json:"signedAt"`
	SignerName     *string    `json:"signerName"`
	SignatureImage *string    `json:"signatureImage"`
}

// DocumentUpdate carries the optional fields of a custody update. Nil fields are left as is.
type DocumentUpdate struct {
	Title          *string
	RefNumber      *string
	ProjectID      *string
	Description    *string
	CurrentHolder  *string
	Status         *string
	SignerName     *string
	SignatureImage *string
	SignedAt       *time.Time
	IsCorrection   bool
}

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	ProjectID *string
	Holder    *string
}

// CreateDocumentParams holds the input for registering a tracked document.
type CreateDocumentParams struct {
	Title         string
	RefNumber     *string
	Description   string
	CurrentHolder string
	Status        string
	ProjectID     *string
}
