package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shukrishariff-oms/pms-istmo/internal/apperrors"
	portssvc "github.com/shukrishariff-oms/pms-istmo/internal/core/ports/services"
	"github.com/shukrishariff-oms/pms-istmo/internal/dto"
	"github.com/shukrishariff-oms/pms-istmo/internal/middleware"
)

// documentHandler handles HTTP requests for tracked physical documents.
type documentHandler struct {
	custodyService portssvc.CustodySvcFacade
}

func newDocumentHandler(cs portssvc.CustodySvcFacade) *documentHandler {
	return &documentHandler{custodyService: cs}
}

// registerDocumentRoutes registers routes related to document tracking.
func registerDocumentRoutes(rg *gin.RouterGroup, custodyService portssvc.CustodySvcFacade) {
	h := newDocumentHandler(custodyService)
	managers := middleware.RequireRole(middleware.RoleAdmin, middleware.RoleHOD)

	documents := rg.Group("/documents")
	{
		documents.POST("", managers, h.createDocument)
		documents.GET("", h.listDocuments)
		documents.GET("/:documentID", h.getDocument)
		documents.PUT("/:documentID", h.updateDocument)
		documents.DELETE("/:documentID", managers, h.deleteDocument)
		documents.GET("/:documentID/verify", h.verifyChain)
	}
}

func (h *documentHandler) createDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateDocument", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	doc, err := h.custodyService.CreateDocument(c.Request.Context(), req.ToDomain())
	if err != nil {
		respondWithError(c, err, "Failed to create document")
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *documentHandler) listDocuments(c *gin.Context) {
	var params dto.ListDocumentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	docs, err := h.custodyService.ListDocuments(c.Request.Context(), params.ToFilter())
	if err != nil {
		respondWithError(c, err, "Failed to list documents")
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *documentHandler) getDocument(c *gin.Context) {
	doc, err := h.custodyService.GetDocument(c.Request.Context(), c.Param("documentID"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve document")
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *documentHandler) updateDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateDocument", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	doc, err := h.custodyService.ApplyUpdate(c.Request.Context(), c.Param("documentID"), req.ToDomain())
	if err != nil {
		respondWithError(c, err, "Failed to update document")
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *documentHandler) deleteDocument(c *gin.Context) {
	if err := h.custodyService.DeleteDocument(c.Request.Context(), c.Param("documentID")); err != nil {
		respondWithError(c, err, "Failed to delete document")
		return
	}
	c.Status(http.StatusNoContent)
}

// verifyChain reports a broken chain as valid=false rather than as an HTTP error.
func (h *documentHandler) verifyChain(c *gin.Context) {
	documentID := c.Param("documentID")
	err := h.custodyService.VerifyChain(c.Request.Context(), documentID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.ChainVerificationResponse{DocumentID: documentID, Valid: true})
	case errors.Is(err, apperrors.ErrInvalidState):
		c.JSON(http.StatusOK, dto.ChainVerificationResponse{DocumentID: documentID, Valid: false, Reason: err.Error()})
	default:
		respondWithError(c, err, "Failed to verify custody chain")
	}
}
