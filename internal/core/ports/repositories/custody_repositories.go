package repositories

import (
	"context"

	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
)

// DocumentReader defines read operations on tracked documents.
type DocumentReader interface {
	// FindDocumentByID returns the document with its chain ordered by entry id.
	FindDocumentByID(ctx context.Context, documentID string) (*domain.DocumentTracker, error)

	// ListDocuments returns documents most recently updated first, without chains.
	ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.DocumentTracker, error)
}

// CustodyTxRepository is the view of the custody store available inside one transaction.
type CustodyTxRepository interface {
	// FindDocumentForUpdate loads and locks the document row, without its chain.
	FindDocumentForUpdate(ctx context.Context, documentID string) (*domain.DocumentTracker, error)

	// FindLatestEntry returns the entry with the highest id. Returns apperrors.ErrNotFound
	// for a document without entries.
	FindLatestEntry(ctx context.Context, documentID string) (*domain.CustodyLogEntry, error)

	// InsertDocument returns apperrors.ErrDuplicate on a reference number collision.
	InsertDocument(ctx context.Context, document domain.DocumentTracker) error
	UpdateDocument(ctx context.Context, document domain.DocumentTracker) error
	DeleteDocument(ctx context.Context, documentID string) error

	// AppendEntry stores a new entry and returns it with its assigned id.
	AppendEntry(ctx context.Context, entry domain.CustodyLogEntry) (*domain.CustodyLogEntry, error)
	UpdateEntry(ctx context.Context, entry domain.CustodyLogEntry) error
}

// CustodyTxFunc is the unit of work run by WithinCustodyTx.
type CustodyTxFunc func(ctx context.Context, tx CustodyTxRepository) error

// CustodyRepositoryFacade combines all custody-related repository interfaces.
type CustodyRepositoryFacade interface {
	DocumentReader

	// WithinCustodyTx runs fn in one transaction, committing only when fn returns nil.
	WithinCustodyTx(ctx context.Context, fn CustodyTxFunc) error
}
