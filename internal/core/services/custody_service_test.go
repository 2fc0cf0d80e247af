package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shukrishariff-oms/pms-istmo/internal/apperrors"
	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
	portssvc "github.com/shukrishariff-oms/pms-istmo/internal/core/ports/services"
	"github.com/shukrishariff-oms/pms-istmo/internal/core/services"
	"github.com/shukrishariff-oms/pms-istmo/internal/repositories/memory"
	"github.com/stretchr/testify/suite"
)

type CustodyServiceTestSuite struct {
	suite.Suite
	store   *memory.Store
	service portssvc.CustodySvcFacade
	ctx     context.Context
	clock   time.Time
	ids     int
}

func (s *CustodyServiceTestSuite) SetupTest() {
	s.store = memory.NewStore()
	s.clock = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	s.ids = 0
	s.service = services.NewCustodyService(s.store,
		services.WithClock(func() time.Time {
			s.clock = s.clock.Add(time.Minute)
			return s.clock
		}),
		services.WithIDGenerator(func() string {
			s.ids++
			return fmt.Sprintf("doc-%d", s.ids)
		}),
	)
	s.ctx = context.Background()
}

func TestCustodyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CustodyServiceTestSuite))
}

func ptr[T any](v T) *T { return &v }

func (s *CustodyServiceTestSuite) createWithAlice() *domain.DocumentTracker {
	doc, err := s.service.CreateDocument(s.ctx, domain.CreateDocumentParams{
		Title:         "Tender approval letter",
		RefNumber:     ptr("ISTMO/2025/001"),
		CurrentHolder: "Alice",
	})
	s.Require().NoError(err)
	return doc
}

func (s *CustodyServiceTestSuite) TestCreateDocument() {
	doc := s.createWithAlice()

	s.Equal(domain.DocumentPending, doc.Status)
	s.Require().Len(doc.Logs, 1)
	s.Nil(doc.Logs[0].FromHolder)
	s.Equal("Alice", doc.Logs[0].ToHolder)
	s.Equal("Physical tracking started.", *doc.Logs[0].Note)
	s.NoError(s.service.VerifyChain(s.ctx, doc.DocumentID))
}

func (s *CustodyServiceTestSuite) TestCreateDocument_Validation() {
	_, err := s.service.CreateDocument(s.ctx, domain.CreateDocumentParams{Title: "x", CurrentHolder: "  "})
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.service.CreateDocument(s.ctx, domain.CreateDocumentParams{Title: "", CurrentHolder: "Alice"})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *CustodyServiceTestSuite) TestCreateDocument_DuplicateRef() {
	s.createWithAlice()

	_, err := s.service.CreateDocument(s.ctx, domain.CreateDocumentParams{
		Title:         "Another",
		RefNumber:     ptr("ISTMO/2025/001"),
		CurrentHolder: "Bob",
	})

	s.ErrorIs(err, apperrors.ErrDuplicate)
	docs, err := s.service.ListDocuments(s.ctx, domain.DocumentFilter{})
	s.Require().NoError(err)
	s.Len(docs, 1)
}

func (s *CustodyServiceTestSuite) TestNormalTransfer() {
	doc := s.createWithAlice()

	updated, err := s.service.ApplyUpdate(s.ctx, doc.DocumentID, domain.DocumentUpdate{CurrentHolder: ptr("Bob")})

	s.Require().NoError(err)
	s.Equal("Bob", updated.CurrentHolder)
	s.Require().Len(updated.Logs, 2)
	first, second := updated.Logs[0], updated.Logs[1]
	s.NotNil(first.SignedAt)
	s.Equal(domain.DocumentSigned, first.Status)
	s.Equal("Alice", *second.FromHolder)
	s.Equal("Bob", second.ToHolder)
	s.Equal("Transferred to Bob", *second.Note)
	s.NoError(s.service.VerifyChain(s.ctx, doc.DocumentID))
}

func (s *CustodyServiceTestSuite) TestCorrection() {
	doc := s.createWithAlice()
	afterTransfer, err := s.service.ApplyUpdate(s.ctx, doc.DocumentID, domain.DocumentUpdate{CurrentHolder: ptr("Bob")})
	s.Require().NoError(err)
	firstBefore := afterTransfer.Logs[0]

	updated, err := s.service.ApplyUpdate(s.ctx, doc.DocumentID, domain.DocumentUpdate{CurrentHolder: ptr("Carol"), IsCorrection: true})

	s.Require().NoError(err)
	s.Require().Len(updated.Logs, 2)
	s.Equal(firstBefore, updated.Logs[0])
	s.Equal("Carol", updated.Logs[1].ToHolder)
	s.Equal("Alice", *updated.Logs[1].FromHolder)
	s.Equal("Transferred to Carol", *updated.Logs[1].Note)
	s.Equal("Carol", updated.CurrentHolder)
	s.NoError(s.service.VerifyChain(s.ctx, doc.DocumentID))
}

func (s *CustodyServiceTestSuite) TestSameHolderUpdate() {
	doc := s.createWithAlice()
	_, err := s.service.ApplyUpdate(s.ctx, doc.DocumentID, domain.DocumentUpdate{CurrentHolder: ptr("Bob")})
	s.Require().NoError(err)

	updated, err := s.service.ApplyUpdate(s.ctx, doc.DocumentID, domain.DocumentUpdate{
		Status:      ptr(domain.DocumentCompleted),
		Description: ptr("Signed and filed"),
	})

	s.Require().NoError(err)
	s.Require().Len(updated.Logs, 2)
	latest := updated.Logs[1]
	s.Equal(domain.DocumentCompleted, latest.Status)
	s.NotNil(latest.SignedAt)
	s.Equal("Signed and filed", *latest.Note)
	s.Equal(domain.DocumentCompleted, updated.Status)
	s.Equal("Signed and filed", updated.Description)

	// Restating the same holder is not a handoff.
	again, err := s.service.ApplyUpdate(s.ctx, doc.DocumentID, domain.DocumentUpdate{CurrentHolder: ptr("Bob")})
	s.Require().NoError(err)
	s.Len(again.Logs, 2)
}

func (s *CustodyServiceTestSuite) TestSimpleFieldsNeverTouchChain() {
	doc := s.createWithAlice()

	updated, err := s.service.ApplyUpdate(s.ctx, doc.DocumentID, domain.DocumentUpdate{
		Title:     ptr("Renamed"),
		ProjectID: ptr("proj-9"),
	})

	s.Require().NoError(err)
	s.Equal("Renamed", updated.Title)
	s.Equal("proj-9", *updated.ProjectID)
	s.Len(updated.Logs, 1)
	s.Equal("Physical tracking started.", *updated.Logs[0].Note)

	byProject, err := s.service.ListDocuments(s.ctx, domain.DocumentFilter{ProjectID: ptr("proj-9")})
	s.Require().NoError(err)
	s.Len(byProject, 1)
}

func (s *CustodyServiceTestSuite) TestBlankTitleIsIgnored() {
	doc := s.createWithAlice()

	updated, err := s.service.ApplyUpdate(s.ctx, doc.DocumentID, domain.DocumentUpdate{Title: ptr("   ")})

	s.Require().NoError(err)
	s.Equal("Tender approval letter", updated.Title)
}

func (s *CustodyServiceTestSuite) TestLongChainStaysLinked() {
	doc := s.createWithAlice()
	holders := []string{"Bob", "Carol", "Dave", "Erin", "Frank"}
	for i, h := range holders {
		_, err := s.service.ApplyUpdate(s.ctx, doc.DocumentID, domain.DocumentUpdate{
			CurrentHolder: ptr(h),
			IsCorrection:  i%2 == 1,
		})
		s.Require().NoError(err)
	}

	final, err := s.service.GetDocument(s.ctx, doc.DocumentID)
	s.Require().NoError(err)
	s.Len(final.Logs, 4) // create + three handoffs; corrections rewrite in place
	s.Equal("Frank", final.CurrentHolder)
	s.NoError(s.service.VerifyChain(s.ctx, doc.DocumentID))

	byHolder, err := s.service.ListDocuments(s.ctx, domain.DocumentFilter{Holder: ptr("Frank")})
	s.Require().NoError(err)
	s.Len(byHolder, 1)
}

func (s *CustodyServiceTestSuite) TestMissingDocument() {
	_, err := s.service.ApplyUpdate(s.ctx, "nope", domain.DocumentUpdate{CurrentHolder: ptr("Bob")})
	s.ErrorIs(err, apperrors.ErrNotFound)

	s.ErrorIs(s.service.DeleteDocument(s.ctx, "nope"), apperrors.ErrNotFound)
	s.ErrorIs(s.service.VerifyChain(s.ctx, "nope"), apperrors.ErrNotFound)
}

func (s *CustodyServiceTestSuite) TestDeleteCascades() {
	doc := s.createWithAlice()
	_, err := s.service.ApplyUpdate(s.ctx, doc.DocumentID, domain.DocumentUpdate{CurrentHolder: ptr("Bob")})
	s.Require().NoError(err)

	s.NoError(s.service.DeleteDocument(s.ctx, doc.DocumentID))

	_, err = s.service.GetDocument(s.ctx, doc.DocumentID)
	s.ErrorIs(err, apperrors.ErrNotFound)

	// The reference number is free again.
	_, err = s.service.CreateDocument(s.ctx, domain.CreateDocumentParams{Title: "Reissued", RefNumber: ptr("ISTMO/2025/001"), CurrentHolder: "Alice"})
	s.NoError(err)
}

func (s *CustodyServiceTestSuite) TestListDocumentsOrder() {
	a := s.createWithAlice()
	b, err := s.service.CreateDocument(s.ctx, domain.CreateDocumentParams{Title: "Second", CurrentHolder: "Bob"})
	s.Require().NoError(err)

	_, err = s.service.ApplyUpdate(s.ctx, a.DocumentID, domain.DocumentUpdate{Status: ptr(domain.DocumentInProgress)})
	s.Require().NoError(err)

	docs, err := s.service.ListDocuments(s.ctx, domain.DocumentFilter{})
	s.Require().NoError(err)
	s.Require().Len(docs, 2)
	s.Equal(a.DocumentID, docs[0].DocumentID)
	s.Equal(b.DocumentID, docs[1].DocumentID)
}
