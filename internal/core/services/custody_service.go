package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shukrishariff-oms/pms-istmo/internal/apperrors"
	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
	portsrepo "github.com/shukrishariff-oms/pms-istmo/internal/core/ports/repositories"
	portssvc "github.com/shukrishariff-oms/pms-istmo/internal/core/ports/services"
	"github.com/shukrishariff-oms/pms-istmo/internal/utils/custody"
)

const (
	entityDocument = "document"

	trackingStartedNote = "Physical tracking started."
)

// custodyService maintains the custody chain of tracked physical documents.
type custodyService struct {
	BaseService
	custodyRepo portsrepo.CustodyRepositoryFacade
}

// NewCustodyService creates a new CustodyService.
func NewCustodyService(custodyRepo portsrepo.CustodyRepositoryFacade, options ...ServiceOption) portssvc.CustodySvcFacade {
	return &custodyService{
		BaseService: newBaseService(options...),
		custodyRepo: custodyRepo,
	}
}

var _ portssvc.CustodySvcFacade = (*custodyService)(nil)

func documentNotFound(documentID string, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NewNotFoundError(entityDocument, documentID)
	}
	return fmt.Errorf("failed to load document %s: %w", documentID, err)
}

func refTaken(err error) error {
	if errors.Is(err, apperrors.ErrDuplicate) {
		return apperrors.NewDuplicateError(entityDocument, "reference number is already in use")
	}
	return err
}

// CreateDocument registers a document and the first link of its chain.
func (s *custodyService) CreateDocument(ctx context.Context, req domain.CreateDocumentParams) (*domain.DocumentTracker, error) {
	holder := strings.TrimSpace(req.CurrentHolder)
	if holder == "" {
		return nil, apperrors.NewValidationError(entityDocument, "current holder is required")
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError(entityDocument, "title is required")
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = domain.DocumentPending
	}

	now := s.now()
	doc := domain.DocumentTracker{
		DocumentID:    s.newID(),
		Title:         title,
		RefNumber:     nonBlank(req.RefNumber),
		Description:   req.Description,
		CurrentHolder: holder,
		Status:        status,
		ProjectID:     nonBlank(req.ProjectID),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.custodyRepo.WithinCustodyTx(ctx, func(ctx context.Context, tx portsrepo.CustodyTxRepository) error {
		if err := tx.InsertDocument(ctx, doc); err != nil {
			return refTaken(err)
		}
		note := trackingStartedNote
		first, err := tx.AppendEntry(ctx, domain.CustodyLogEntry{
			DocumentID: doc.DocumentID,
			ToHolder:   holder,
			Status:     status,
			Note:       &note,
			Timestamp:  now,
		})
		if err != nil {
			return fmt.Errorf("failed to create first custody entry: %w", err)
		}
		doc.Logs = []domain.CustodyLogEntry{*first}
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to create document")
		return nil, err
	}

	s.LogInfo(ctx, "Document tracking started", slog.String("document_id", doc.DocumentID), slog.String("holder", holder))
	return &doc, nil
}

// ApplyUpdate applies simple field changes, then continues, corrects or extends the chain
// depending on whether the holder changes and whether the update is a correction.
func (s *custodyService) ApplyUpdate(ctx context.Context, documentID string, update domain.DocumentUpdate) (*domain.DocumentTracker, error) {
	var kind transitionKind
	err := s.custodyRepo.WithinCustodyTx(ctx, func(ctx context.Context, tx portsrepo.CustodyTxRepository) error {
		doc, err := tx.FindDocumentForUpdate(ctx, documentID)
		if err != nil {
			return documentNotFound(documentID, err)
		}
		latest, err := tx.FindLatestEntry(ctx, documentID)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("failed to load latest custody entry: %w", err)
			}
			latest = nil
		}

		priorHolder := doc.CurrentHolder
		applyDocumentFields(doc, update)

		now := s.now()
		plan := planTransition(*doc, priorHolder, latest, update, now)
		kind = plan.kind

		if plan.latest != nil {
			if err := tx.UpdateEntry(ctx, *plan.latest); err != nil {
				return fmt.Errorf("failed to update custody entry %d: %w", plan.latest.EntryID, err)
			}
		}
		if plan.appended != nil {
			if _, err := tx.AppendEntry(ctx, *plan.appended); err != nil {
				return fmt.Errorf("failed to append custody entry: %w", err)
			}
		}

		doc.UpdatedAt = now
		if err := tx.UpdateDocument(ctx, *doc); err != nil {
			return refTaken(err)
		}
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to apply document update", slog.String("document_id", documentID))
		return nil, err
	}

	s.LogInfo(ctx, "Document updated", slog.String("document_id", documentID), slog.String("transition", kind.String()))
	return s.GetDocument(ctx, documentID)
}

// applyDocumentFields copies the set fields of update onto doc. A blank title, holder
// or status leaves the current value in place.
func applyDocumentFields(doc *domain.DocumentTracker, update domain.DocumentUpdate) {
	if title := nonBlank(update.Title); title != nil {
		doc.Title = *title
	}
	if update.RefNumber != nil {
		doc.RefNumber = nonBlank(update.RefNumber)
	}
	if update.ProjectID != nil {
		doc.ProjectID = nonBlank(update.ProjectID)
	}
	if update.Description != nil {
		doc.Description = *update.Description
	}
	if holder := nonBlank(update.CurrentHolder); holder != nil {
		doc.CurrentHolder = *holder
	}
	if status := nonBlank(update.Status); status != nil {
		doc.Status = *status
	}
}

// DeleteDocument removes a document together with its chain.
func (s *custodyService) DeleteDocument(ctx context.Context, documentID string) error {
	err := s.custodyRepo.WithinCustodyTx(ctx, func(ctx context.Context, tx portsrepo.CustodyTxRepository) error {
		if err := tx.DeleteDocument(ctx, documentID); err != nil {
			return documentNotFound(documentID, err)
		}
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to delete document", slog.String("document_id", documentID))
		return err
	}
	s.LogInfo(ctx, "Document deleted", slog.String("document_id", documentID))
	return nil
}

// GetDocument retrieves a document with its chain.
func (s *custodyService) GetDocument(ctx context.Context, documentID string) (*domain.DocumentTracker, error) {
	doc, err := s.custodyRepo.FindDocumentByID(ctx, documentID)
	if err != nil {
		err = documentNotFound(documentID, err)
		s.LogFailure(ctx, err, "Failed to get document", slog.String("document_id", documentID))
		return nil, err
	}
	return doc, nil
}

// ListDocuments lists documents, most recently updated first.
func (s *custodyService) ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.DocumentTracker, error) {
	docs, err := s.custodyRepo.ListDocuments(ctx, filter)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to list documents")
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// VerifyChain reports the first broken link of a document's chain as an InvalidStateError.
func (s *custodyService) VerifyChain(ctx context.Context, documentID string) error {
	doc, err := s.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if err := custody.Verify(doc.CurrentHolder, doc.Logs); err != nil {
		s.GetLogger(ctx).Warn("Custody chain broken", slog.String("document_id", documentID), slog.String("reason", err.Error()))
		return apperrors.NewInvalidStateError(entityDocument, documentID, err.Error())
	}
	return nil
}
