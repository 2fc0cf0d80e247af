package services

import (
	"testing"
	"time"

	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestDecideTransition(t *testing.T) {
	cases := []struct {
		name          string
		holderChanged bool
		isCorrection  bool
		hasLatest     bool
		want          transitionKind
	}{
		{"same holder", false, false, true, continueSameHolder},
		{"same holder flagged correction", false, true, true, continueSameHolder},
		{"handoff", true, false, true, appendNewLink},
		{"correction", true, true, true, correctLatest},
		{"correction without a link", true, true, false, appendNewLink},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, decideTransition(tc.holderChanged, tc.isCorrection, tc.hasLatest))
		})
	}
}

func TestPlanTransition(t *testing.T) {
	now := time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)
	earlier := now.Add(-time.Hour)

	latest := &domain.CustodyLogEntry{
		EntryID:    7,
		DocumentID: "doc-1",
		FromHolder: strPtr("Alice"),
		ToHolder:   "Bob",
		Status:     domain.DocumentInProgress,
		Note:       strPtr("Transferred to Bob"),
	}

	t.Run("sign-off stamps signed_at", func(t *testing.T) {
		doc := domain.DocumentTracker{DocumentID: "doc-1", CurrentHolder: "Bob", Status: "Completed"}
		plan := planTransition(doc, "Bob", latest, domain.DocumentUpdate{}, now)

		require.Equal(t, continueSameHolder, plan.kind)
		require.NotNil(t, plan.latest)
		assert.Nil(t, plan.appended)
		assert.Equal(t, "Completed", plan.latest.Status)
		require.NotNil(t, plan.latest.SignedAt)
		assert.Equal(t, now, *plan.latest.SignedAt)
		assert.Nil(t, latest.SignedAt, "input entry must not be mutated")
	})

	t.Run("existing signed_at is kept", func(t *testing.T) {
		signed := *latest
		signed.SignedAt = &earlier
		doc := domain.DocumentTracker{DocumentID: "doc-1", CurrentHolder: "Bob", Status: domain.DocumentSigned}
		plan := planTransition(doc, "Bob", &signed, domain.DocumentUpdate{SignatureImage: strPtr("data:image/png;base64,AA")}, now)

		assert.Equal(t, earlier, *plan.latest.SignedAt)
		assert.Equal(t, "data:image/png;base64,AA", *plan.latest.SignatureImage)
	})

	t.Run("signature image stamps signed_at", func(t *testing.T) {
		doc := domain.DocumentTracker{DocumentID: "doc-1", CurrentHolder: "Bob", Status: domain.DocumentInProgress}
		plan := planTransition(doc, "Bob", latest, domain.DocumentUpdate{
			SignerName:     strPtr("Bob B."),
			SignatureImage: strPtr("sig"),
			Description:    strPtr("Reviewed"),
		}, now)

		assert.Equal(t, "Bob B.", *plan.latest.SignerName)
		assert.Equal(t, "Reviewed", *plan.latest.Note)
		require.NotNil(t, plan.latest.SignedAt)
	})

	t.Run("payload signed_at alone does not stamp", func(t *testing.T) {
		doc := domain.DocumentTracker{DocumentID: "doc-1", CurrentHolder: "Bob", Status: domain.DocumentInProgress}
		plan := planTransition(doc, "Bob", latest, domain.DocumentUpdate{SignedAt: &earlier}, now)

		require.NotNil(t, plan.latest)
		assert.Nil(t, plan.latest.SignedAt)
	})

	t.Run("sign-off uses payload signed_at", func(t *testing.T) {
		doc := domain.DocumentTracker{DocumentID: "doc-1", CurrentHolder: "Bob", Status: domain.DocumentSigned}
		plan := planTransition(doc, "Bob", latest, domain.DocumentUpdate{SignedAt: &earlier}, now)

		require.NotNil(t, plan.latest.SignedAt)
		assert.Equal(t, earlier, *plan.latest.SignedAt)
	})

	t.Run("blank description keeps note", func(t *testing.T) {
		doc := domain.DocumentTracker{DocumentID: "doc-1", CurrentHolder: "Bob", Status: domain.DocumentInProgress}
		plan := planTransition(doc, "Bob", latest, domain.DocumentUpdate{Description: strPtr("  ")}, now)

		assert.Equal(t, "Transferred to Bob", *plan.latest.Note)
		assert.Nil(t, plan.latest.SignedAt)
	})

	t.Run("correction regenerates generated note", func(t *testing.T) {
		doc := domain.DocumentTracker{DocumentID: "doc-1", CurrentHolder: "Carol", Status: domain.DocumentInProgress}
		plan := planTransition(doc, "Bob", latest, domain.DocumentUpdate{IsCorrection: true}, now)

		require.Equal(t, correctLatest, plan.kind)
		assert.Nil(t, plan.appended)
		assert.Equal(t, int64(7), plan.latest.EntryID)
		assert.Equal(t, "Carol", plan.latest.ToHolder)
		assert.Equal(t, "Alice", *plan.latest.FromHolder)
		assert.Equal(t, "Transferred to Carol", *plan.latest.Note)
	})

	t.Run("correction keeps a manual note", func(t *testing.T) {
		manual := *latest
		manual.Note = strPtr("Physical tracking started.")
		doc := domain.DocumentTracker{DocumentID: "doc-1", CurrentHolder: "Carol", Status: domain.DocumentPending}
		plan := planTransition(doc, "Bob", &manual, domain.DocumentUpdate{IsCorrection: true}, now)

		assert.Equal(t, "Physical tracking started.", *plan.latest.Note)
		assert.Equal(t, domain.DocumentPending, plan.latest.Status)
	})

	t.Run("handoff closes latest and appends", func(t *testing.T) {
		doc := domain.DocumentTracker{DocumentID: "doc-1", CurrentHolder: "Dave", Status: domain.DocumentPending}
		plan := planTransition(doc, "Bob", latest, domain.DocumentUpdate{SignatureImage: strPtr("sig")}, now)

		require.Equal(t, appendNewLink, plan.kind)
		require.NotNil(t, plan.latest)
		assert.Equal(t, domain.DocumentSigned, plan.latest.Status)
		assert.Equal(t, now, *plan.latest.SignedAt)

		require.NotNil(t, plan.appended)
		assert.Equal(t, "Bob", *plan.appended.FromHolder)
		assert.Equal(t, "Dave", plan.appended.ToHolder)
		assert.Equal(t, domain.DocumentPending, plan.appended.Status)
		assert.Equal(t, "Transferred to Dave", *plan.appended.Note)
		assert.Equal(t, "sig", *plan.appended.SignatureImage)
		require.NotNil(t, plan.appended.SignedAt)
		assert.Equal(t, now, plan.appended.Timestamp)
	})

	t.Run("handoff uses explicit signed_at for the signature", func(t *testing.T) {
		doc := domain.DocumentTracker{DocumentID: "doc-1", CurrentHolder: "Dave", Status: domain.DocumentPending}
		plan := planTransition(doc, "Bob", latest, domain.DocumentUpdate{SignatureImage: strPtr("sig"), SignedAt: &earlier}, now)

		assert.Equal(t, earlier, *plan.appended.SignedAt)
		assert.Equal(t, now, *plan.latest.SignedAt)
	})

	t.Run("handoff without a signature leaves new link unsigned", func(t *testing.T) {
		doc := domain.DocumentTracker{DocumentID: "doc-1", CurrentHolder: "Dave", Status: domain.DocumentPending}
		plan := planTransition(doc, "Bob", latest, domain.DocumentUpdate{Description: strPtr("Hand-delivered")}, now)

		assert.Nil(t, plan.appended.SignedAt)
		assert.Equal(t, "Hand-delivered", *plan.appended.Note)
	})

	t.Run("no chain to continue", func(t *testing.T) {
		doc := domain.DocumentTracker{DocumentID: "doc-1", CurrentHolder: "Bob", Status: domain.DocumentSigned}
		plan := planTransition(doc, "Bob", nil, domain.DocumentUpdate{}, now)

		assert.Nil(t, plan.latest)
		assert.Nil(t, plan.appended)
	})

	t.Run("correction without a chain starts one", func(t *testing.T) {
		doc := domain.DocumentTracker{DocumentID: "doc-1", CurrentHolder: "Carol", Status: domain.DocumentPending}
		plan := planTransition(doc, "Bob", nil, domain.DocumentUpdate{IsCorrection: true}, now)

		require.Equal(t, appendNewLink, plan.kind)
		assert.Nil(t, plan.latest)
		assert.Nil(t, plan.appended.FromHolder)
	})
}
