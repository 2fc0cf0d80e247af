package services

import (
	"strings"
	"time"

	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
	"github.com/shukrishariff-oms/pms-istmo/internal/utils/custody"
)

// transitionKind is the decision taken once per custody update.
type transitionKind int

const (
	// continueSameHolder updates the latest link in place: status, note, signature.
	continueSameHolder transitionKind = iota
	// correctLatest rewrites the latest link's receiver instead of recording a handoff.
	correctLatest
	// appendNewLink closes the latest link and extends the chain.
	appendNewLink
)

func (k transitionKind) String() string {
	switch k {
	case continueSameHolder:
		return "continue_same_holder"
	case correctLatest:
		return "correct_latest"
	case appendNewLink:
		return "append_new_link"
	}
	return "unknown"
}

// decideTransition maps (holder changed?, correction?) to a transition. A correction
// needs a link to correct, so without one it degrades to an append.
func decideTransition(holderChanged, isCorrection, hasLatest bool) transitionKind {
	switch {
	case !holderChanged:
		return continueSameHolder
	case isCorrection && hasLatest:
		return correctLatest
	default:
		return appendNewLink
	}
}

// transitionPlan holds the chain writes of one update.
type transitionPlan struct {
	kind     transitionKind
	latest   *domain.CustodyLogEntry // rewritten latest link, nil when untouched
	appended *domain.CustodyLogEntry // new link, nil unless appending
}

// planTransition computes the chain writes for doc, which already carries the new holder
// and status. latest is the link with the highest id, or nil for a document without links.
func planTransition(doc domain.DocumentTracker, priorHolder string, latest *domain.CustodyLogEntry, update domain.DocumentUpdate, now time.Time) transitionPlan {
	kind := decideTransition(doc.CurrentHolder != priorHolder, update.IsCorrection, latest != nil)
	plan := transitionPlan{kind: kind}

	note := nonBlank(update.Description)
	signerName := nonBlank(update.SignerName)
	signatureImage := nonBlank(update.SignatureImage)
	signedAt := now
	if update.SignedAt != nil {
		signedAt = *update.SignedAt
	}

	switch kind {
	case continueSameHolder:
		if latest == nil {
			return plan
		}
		next := *latest
		next.Status = doc.Status
		if next.SignedAt == nil && domain.IsSignOffStatus(doc.Status) {
			next.SignedAt = &signedAt
		}
		if note != nil {
			next.Note = note
		}
		if signerName != nil {
			next.SignerName = signerName
		}
		if signatureImage != nil {
			next.SignatureImage = signatureImage
			if next.SignedAt == nil {
				next.SignedAt = &signedAt
			}
		}
		plan.latest = &next

	case correctLatest:
		next := *latest
		next.ToHolder = doc.CurrentHolder
		next.Status = doc.Status
		if note != nil {
			next.Note = note
		} else if custody.IsGeneratedNote(next.Note) {
			generated := custody.TransferNote(doc.CurrentHolder)
			next.Note = &generated
		}
		plan.latest = &next

	case appendNewLink:
		var from *string
		if latest != nil {
			closed := *latest
			if closed.SignedAt == nil {
				closedAt := now
				closed.SignedAt = &closedAt
			}
			closed.Status = domain.DocumentSigned
			plan.latest = &closed
			prev := latest.ToHolder
			from = &prev
		}

		if note == nil {
			generated := custody.TransferNote(doc.CurrentHolder)
			note = &generated
		}
		entry := domain.CustodyLogEntry{
			DocumentID:     doc.DocumentID,
			FromHolder:     from,
			ToHolder:       doc.CurrentHolder,
			Status:         doc.Status,
			Note:           note,
			Timestamp:      now,
			SignerName:     signerName,
			SignatureImage: signatureImage,
		}
		if signatureImage != nil {
			entry.SignedAt = &signedAt
		}
		plan.appended = &entry
	}
	return plan
}

// nonBlank returns a trimmed copy of s, or nil when s is nil or blank.
func nonBlank(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
