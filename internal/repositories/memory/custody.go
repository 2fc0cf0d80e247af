package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shukrishariff-oms/pms-istmo/internal/apperrors"
	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
	"github.com/shukrishariff-oms/pms-istmo/internal/core/ports/repositories"
)

type custodyTx struct {
	state *memoryState
}

var _ repositories.CustodyTxRepository = (*custodyTx)(nil)

// WithinCustodyTx implements repositories.CustodyRepositoryFacade.
func (s *Store) WithinCustodyTx(ctx context.Context, fn repositories.CustodyTxFunc) error {
	return s.run(func(state *memoryState, _ time.Time) error {
		return fn(ctx, &custodyTx{state: state})
	})
}

// FindDocumentByID implements repositories.DocumentReader.
func (s *Store) FindDocumentByID(_ context.Context, documentID string) (*domain.DocumentTracker, error) {
	var (
		d  domain.DocumentTracker
		ok bool
	)
	s.view(func(st *memoryState) {
		d, ok = st.documents[documentID]
		if !ok {
			return
		}
		d = cloneDocument(d)
		for _, e := range st.entries[documentID] {
			d.Logs = append(d.Logs, cloneEntry(e))
		}
	})
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &d, nil
}

// ListDocuments implements repositories.DocumentReader.
func (s *Store) ListDocuments(_ context.Context, filter domain.DocumentFilter) ([]domain.DocumentTracker, error) {
	out := make([]domain.DocumentTracker, 0)
	s.view(func(st *memoryState) {
		for _, d := range st.documents {
			if filter.ProjectID != nil && (d.ProjectID == nil || *d.ProjectID != *filter.ProjectID) {
				continue
			}
			if filter.Holder != nil && d.CurrentHolder != *filter.Holder {
				continue
			}
			out = append(out, cloneDocument(d))
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (tx *custodyTx) FindDocumentForUpdate(_ context.Context, documentID string) (*domain.DocumentTracker, error) {
	d, ok := tx.state.documents[documentID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	d = cloneDocument(d)
	return &d, nil
}

func (tx *custodyTx) FindLatestEntry(_ context.Context, documentID string) (*domain.CustodyLogEntry, error) {
	list := tx.state.entries[documentID]
	if len(list) == 0 {
		return nil, apperrors.ErrNotFound
	}
	e := cloneEntry(list[len(list)-1])
	return &e, nil
}

func (tx *custodyTx) InsertDocument(_ context.Context, document domain.DocumentTracker) error {
	if _, ok := tx.state.documents[document.DocumentID]; ok {
		return apperrors.ErrDuplicate
	}
	if err := tx.checkRef(document); err != nil {
		return err
	}
	tx.state.documents[document.DocumentID] = cloneDocument(document)
	return nil
}

func (tx *custodyTx) UpdateDocument(_ context.Context, document domain.DocumentTracker) error {
	if _, ok := tx.state.documents[document.DocumentID]; !ok {
		return apperrors.ErrNotFound
	}
	if err := tx.checkRef(document); err != nil {
		return err
	}
	tx.state.documents[document.DocumentID] = cloneDocument(document)
	return nil
}

func (tx *custodyTx) checkRef(document domain.DocumentTracker) error {
	for id, other := range tx.state.documents {
		if id != document.DocumentID && sameRef(other.RefNumber, document.RefNumber) {
			return apperrors.ErrDuplicate
		}
	}
	return nil
}

func (tx *custodyTx) DeleteDocument(_ context.Context, documentID string) error {
	if _, ok := tx.state.documents[documentID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(tx.state.documents, documentID)
	delete(tx.state.entries, documentID)
	return nil
}

func (tx *custodyTx) AppendEntry(_ context.Context, entry domain.CustodyLogEntry) (*domain.CustodyLogEntry, error) {
	if _, ok := tx.state.documents[entry.DocumentID]; !ok {
		return nil, apperrors.ErrNotFound
	}
	tx.state.lastEntryID++
	entry.EntryID = tx.state.lastEntryID
	stored := cloneEntry(entry)
	tx.state.entries[entry.DocumentID] = append(tx.state.entries[entry.DocumentID], stored)
	out := cloneEntry(stored)
	return &out, nil
}

func (tx *custodyTx) UpdateEntry(_ context.Context, entry domain.CustodyLogEntry) error {
	list := tx.state.entries[entry.DocumentID]
	for i := range list {
		if list[i].EntryID == entry.EntryID {
			list[i] = cloneEntry(entry)
			return nil
		}
	}
	return apperrors.ErrNotFound
}
