package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shukrishariff-oms/pms-istmo/internal/apperrors"
	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
	portsrepo "github.com/shukrishariff-oms/pms-istmo/internal/core/ports/repositories"
	"github.com/shukrishariff-oms/pms-istmo/internal/models"
	"github.com/shukrishariff-oms/pms-istmo/internal/utils/mapping"
)

const documentColumns = `document_id, title, ref_number, description, current_holder, status, project_id, created_at, updated_at`

const custodyEntryColumns = `entry_id, document_id, from_holder, to_holder, status, note, "timestamp", signed_at, signer_name, signature_image`

// PgxCustodyRepository stores tracked documents and their custody chains.
type PgxCustodyRepository struct {
	BaseRepository
}

func newPgxCustodyRepository(pool *pgxpool.Pool) portsrepo.CustodyRepositoryFacade {
	return &PgxCustodyRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CustodyRepositoryFacade = (*PgxCustodyRepository)(nil)

type pgxCustodyTx struct {
	tx pgx.Tx
}

var _ portsrepo.CustodyTxRepository = (*pgxCustodyTx)(nil)

// WithinCustodyTx runs fn in one transaction, committing only when fn returns nil.
func (r *PgxCustodyRepository) WithinCustodyTx(ctx context.Context, fn portsrepo.CustodyTxFunc) error {
	return r.withinTx(ctx, func(tx pgx.Tx) error {
		return fn(ctx, &pgxCustodyTx{tx: tx})
	})
}

func scanDocument(row rowScanner) (domain.DocumentTracker, error) {
	var m models.DocumentTracker
	err := row.Scan(
		&m.DocumentID,
		&m.Title,
		&m.RefNumber,
		&m.Description,
		&m.CurrentHolder,
		&m.Status,
		&m.ProjectID,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return domain.DocumentTracker{}, err
	}
	return mapping.ToDomainDocumentTracker(m), nil
}

func scanCustodyEntry(row rowScanner) (domain.CustodyLogEntry, error) {
	var m models.CustodyLogEntry
	err := row.Scan(
		&m.EntryID,
		&m.DocumentID,
		&m.FromHolder,
		&m.ToHolder,
		&m.Status,
		&m.Note,
		&m.Timestamp,
		&m.SignedAt,
		&m.SignerName,
		&m.SignatureImage,
	)
	if err != nil {
		return domain.CustodyLogEntry{}, err
	}
	return mapping.ToDomainCustodyLogEntry(m), nil
}

// FindDocumentByID retrieves a document together with its chain, oldest link first.
func (r *PgxCustodyRepository) FindDocumentByID(ctx context.Context, documentID string) (*domain.DocumentTracker, error) {
	query := `SELECT ` + documentColumns + ` FROM document_trackers WHERE document_id = $1`
	doc, err := scanDocument(r.Pool.QueryRow(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find document %s: %w", documentID, err)
	}

	entryQuery := `SELECT ` + custodyEntryColumns + ` FROM custody_log_entries WHERE document_id = $1 ORDER BY entry_id`
	rows, err := r.Pool.Query(ctx, entryQuery, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load custody chain for document %s: %w", documentID, err)
	}
	defer rows.Close()

	doc.Logs = []domain.CustodyLogEntry{}
	for rows.Next() {
		entry, err := scanCustodyEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan custody entry row: %w", err)
		}
		doc.Logs = append(doc.Logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating custody entry rows: %w", err)
	}
	return &doc, nil
}

// ListDocuments lists documents most recently updated first, without their chains.
func (r *PgxCustodyRepository) ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.DocumentTracker, error) {
	query := `SELECT ` + documentColumns + ` FROM document_trackers WHERE 1 = 1`
	args := []any{}
	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		query += fmt.Sprintf(` AND project_id = $%d`, len(args))
	}
	if filter.Holder != nil {
		args = append(args, *filter.Holder)
		query += fmt.Sprintf(` AND current_holder = $%d`, len(args))
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.DocumentTracker{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}
	return docs, nil
}

func (t *pgxCustodyTx) FindDocumentForUpdate(ctx context.Context, documentID string) (*domain.DocumentTracker, error) {
	query := `SELECT ` + documentColumns + ` FROM document_trackers WHERE document_id = $1 FOR UPDATE`
	doc, err := scanDocument(t.tx.QueryRow(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock document %s: %w", documentID, mapPgError(err))
	}
	return &doc, nil
}

func (t *pgxCustodyTx) FindLatestEntry(ctx context.Context, documentID string) (*domain.CustodyLogEntry, error) {
	query := `SELECT ` + custodyEntryColumns + ` FROM custody_log_entries WHERE document_id = $1 ORDER BY entry_id DESC LIMIT 1`
	entry, err := scanCustodyEntry(t.tx.QueryRow(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find latest custody entry of %s: %w", documentID, err)
	}
	return &entry, nil
}

func (t *pgxCustodyTx) InsertDocument(ctx context.Context, document domain.DocumentTracker) error {
	m := mapping.ToModelDocumentTracker(document)
	query := `
		INSERT INTO document_trackers (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := t.tx.Exec(ctx, query,
		m.DocumentID,
		m.Title,
		m.RefNumber,
		m.Description,
		m.CurrentHolder,
		m.Status,
		m.ProjectID,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document %s: %w", m.DocumentID, mapPgError(err))
	}
	return nil
}

func (t *pgxCustodyTx) UpdateDocument(ctx context.Context, document domain.DocumentTracker) error {
	m := mapping.ToModelDocumentTracker(document)
	query := `
		UPDATE document_trackers
		SET title = $2, ref_number = $3, description = $4, current_holder = $5, status = $6, project_id = $7, updated_at = $8
		WHERE document_id = $1;
	`
	tag, err := t.tx.Exec(ctx, query,
		m.DocumentID,
		m.Title,
		m.RefNumber,
		m.Description,
		m.CurrentHolder,
		m.Status,
		m.ProjectID,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update document %s: %w", m.DocumentID, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteDocument relies on ON DELETE CASCADE to drop the chain.
func (t *pgxCustodyTx) DeleteDocument(ctx context.Context, documentID string) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM document_trackers WHERE document_id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", documentID, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (t *pgxCustodyTx) AppendEntry(ctx context.Context, entry domain.CustodyLogEntry) (*domain.CustodyLogEntry, error) {
	m := mapping.ToModelCustodyLogEntry(entry)
	query := `
		INSERT INTO custody_log_entries (document_id, from_holder, to_holder, status, note, "timestamp", signed_at, signer_name, signature_image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING entry_id;
	`
	err := t.tx.QueryRow(ctx, query,
		m.DocumentID,
		m.FromHolder,
		m.ToHolder,
		m.Status,
		m.Note,
		m.Timestamp,
		m.SignedAt,
		m.SignerName,
		m.SignatureImage,
	).Scan(&m.EntryID)
	if err != nil {
		return nil, fmt.Errorf("failed to append custody entry for %s: %w", m.DocumentID, mapPgError(err))
	}
	stored := mapping.ToDomainCustodyLogEntry(m)
	return &stored, nil
}

func (t *pgxCustodyTx) UpdateEntry(ctx context.Context, entry domain.CustodyLogEntry) error {
	m := mapping.ToModelCustodyLogEntry(entry)
	query := `
		UPDATE custody_log_entries
		SET to_holder = $2, status = $3, note = $4, signed_at = $5, signer_name = $6, signature_image = $7
		WHERE entry_id = $1;
	`
	tag, err := t.tx.Exec(ctx, query,
		m.EntryID,
		m.ToHolder,
		m.Status,
		m.Note,
		m.SignedAt,
		m.SignerName,
		m.SignatureImage,
	)
	if err != nil {
		return fmt.Errorf("failed to update custody entry %d: %w", m.EntryID, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
