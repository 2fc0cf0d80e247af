package custody

import (
	"fmt"
	"strings"

	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
)

// TransferNotePrefix starts every note generated for a handoff.
const TransferNotePrefix = "Transferred to"

// TransferNote returns the generated note for a handoff to holder.
func TransferNote(holder string) string {
	return fmt.Sprintf("%s %s", TransferNotePrefix, holder)
}

// IsGeneratedNote reports whether a note is empty or was produced by TransferNote.
func IsGeneratedNote(note *string) bool {
	if note == nil {
		return true
	}
	n := strings.TrimSpace(*note)
	return n == "" || strings.HasPrefix(n, TransferNotePrefix)
}

// ChainError describes the first link that breaks the custody chain.
type ChainError struct {
	Index  int
	Reason string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("entry %d: %s", e.Index, e.Reason)
}

// Verify checks that entries, ordered by entry id, form an unbroken chain ending at currentHolder.
func Verify(currentHolder string, entries []domain.CustodyLogEntry) error {
	if len(entries) == 0 {
		return &ChainError{Index: 0, Reason: "chain is empty"}
	}
	if entries[0].FromHolder != nil {
		return &ChainError{Index: 0, Reason: "first entry has a from holder"}
	}
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if cur.EntryID <= prev.EntryID {
			return &ChainError{Index: i, Reason: "entries are out of order"}
		}
		if cur.FromHolder == nil {
			return &ChainError{Index: i, Reason: "from holder is missing"}
		}
		if *cur.FromHolder != prev.ToHolder {
			return &ChainError{Index: i, Reason: fmt.Sprintf("from holder %q does not match previous to holder %q", *cur.FromHolder, prev.ToHolder)}
		}
	}
	last := entries[len(entries)-1]
	if last.ToHolder != currentHolder {
		return &ChainError{Index: len(entries) - 1, Reason: fmt.Sprintf("to holder %q does not match current holder %q", last.ToHolder, currentHolder)}
	}
	return nil
}
