package services

import (
	"context"

	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
)

// DocumentReaderSvc defines read operations on tracked documents.
type DocumentReaderSvc interface {
	// GetDocument retrieves a document with its custody chain.
	GetDocument(ctx context.Context, documentID string) (*domain.DocumentTracker, error)

	// ListDocuments lists documents, most recently updated first.
	ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.DocumentTracker, error)

	// VerifyChain checks the custody chain invariant of a document.
	VerifyChain(ctx context.Context, documentID string) error
}

// DocumentWriterSvc defines custody mutations. Each runs in a single transaction.
type DocumentWriterSvc interface {
	// CreateDocument registers a document together with the first link of its chain.
	CreateDocument(ctx context.Context, req domain.CreateDocumentParams) (*domain.DocumentTracker, error)

	// ApplyUpdate applies an update, either continuing, correcting or extending the chain.
	ApplyUpdate(ctx context.Context, documentID string, update domain.DocumentUpdate) (*domain.DocumentTracker, error)

	// DeleteDocument removes a document and its chain.
	DeleteDocument(ctx context.Context, documentID string) error
}

// CustodySvcFacade combines all custody-related service interfaces
type CustodySvcFacade interface {
	DocumentReaderSvc
	DocumentWriterSvc
}
