package models

import (
	"database/sql"
	"time"
)

// DocumentTracker is a row of the document_trackers table.
type DocumentTracker struct {
	DocumentID    string         `db:"document_id"`
	Title         string         `db:"title"`
	RefNumber     sql.NullString `db:"ref_number"` // Unique when set
	Description   string         `db:"description"`
	CurrentHolder string         `db:"current_holder"`
	Status        string         `db:"status"`
	ProjectID     sql.NullString `db:"project_id"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

// CustodyLogEntry is a row of the custody_log_entries table.
type CustodyLogEntry struct {
	EntryID        int64          `db:"entry_id"` // bigserial, monotonic per table
	DocumentID     string         `db:"document_id"`
	FromHolder     sql.NullString `db:"from_holder"`
	ToHolder       string         `db:"to_holder"`
	Status         string         `db:"status"`
	Note           sql.NullString `db:"note"`
	Timestamp      time.Time      `db:"timestamp"`
	SignedAt       sql.NullTime   `db:"signed_at"`
	SignerName     sql.NullString `db:"signer_name"`
	SignatureImage sql.NullString `db:"signature_image"`
}
