package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
	portssvc "github.com/shukrishariff-oms/pms-istmo/internal/core/ports/services"
	"github.com/shukrishariff-oms/pms-istmo/internal/dto"
	"github.com/shukrishariff-oms/pms-istmo/internal/middleware"
)

// budgetHandler handles HTTP requests for budget requests and category balances.
type budgetHandler struct {
	budgetService portssvc.BudgetSvcFacade
}

func newBudgetHandler(bs portssvc.BudgetSvcFacade) *budgetHandler {
	return &budgetHandler{budgetService: bs}
}

var processors = []middleware.Role{middleware.RoleAdmin, middleware.RoleHOD, middleware.RoleFinance}

// registerBudgetRoutes registers routes related to budget requests and balances.
func registerBudgetRoutes(rg *gin.RouterGroup, budgetService portssvc.BudgetSvcFacade) {
	h := newBudgetHandler(budgetService)

	departments := rg.Group("/departments/:departmentID")
	{
		departments.POST("/budget-requests", h.submitRequest)
		departments.GET("/budget-requests", h.listRequests)
		departments.GET("/balances", h.listBalances)
		departments.GET("/balances/:category", h.getBalance)
		departments.GET("/drift", middleware.RequireRole(middleware.RoleAdmin, middleware.RoleFinance), h.checkDrift)
		departments.POST("/reconcile", middleware.RequireRole(middleware.RoleAdmin, middleware.RoleFinance), h.reconcile)
	}

	requests := rg.Group("/budget-requests/:requestID")
	{
		requests.GET("", h.getRequest)
		requests.PUT("", middleware.RequireRole(processors...), h.editRequest)
		requests.DELETE("", middleware.RequireRole(processors...), h.deleteRequest)
		requests.PUT("/approve", middleware.RequireRole(processors...), h.approveRequest)
		requests.PUT("/reject", middleware.RequireRole(processors...), h.rejectRequest)
	}
}

func (h *budgetHandler) submitRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SubmitBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SubmitBudgetRequest", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}

	created, err := h.budgetService.Submit(c.Request.Context(), req.ToDomain(c.Param("departmentID"), userID))
	if err != nil {
		respondWithError(c, err, "Failed to submit budget request")
		return
	}
	c.JSON(http.StatusCreated, dto.ToBudgetRequestResponse(created))
}

func (h *budgetHandler) listRequests(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListBudgetRequestsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListBudgetRequests", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	var status *domain.RequestStatus
	if params.Status != "" {
		s := domain.RequestStatus(params.Status)
		status = &s
	}

	requests, err := h.budgetService.ListRequests(c.Request.Context(), c.Param("departmentID"), status)
	if err != nil {
		respondWithError(c, err, "Failed to list budget requests")
		return
	}
	c.JSON(http.StatusOK, dto.ToListBudgetRequestResponse(requests))
}

func (h *budgetHandler) getRequest(c *gin.Context) {
	req, err := h.budgetService.GetRequest(c.Request.Context(), c.Param("requestID"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve budget request")
		return
	}
	c.JSON(http.StatusOK, dto.ToBudgetRequestResponse(req))
}

func (h *budgetHandler) approveRequest(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	requestID := c.Param("requestID")
	if err := h.budgetService.Approve(c.Request.Context(), requestID, userID); err != nil {
		respondWithError(c, err, "Failed to approve budget request")
		return
	}
	h.getRequest(c)
}

func (h *budgetHandler) rejectRequest(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	requestID := c.Param("requestID")
	if err := h.budgetService.Reject(c.Request.Context(), requestID, userID); err != nil {
		respondWithError(c, err, "Failed to reject budget request")
		return
	}
	h.getRequest(c)
}

// editRequest replaces the request fields. Only admins may edit requests that are
// no longer pending.
func (h *budgetHandler) editRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.EditBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for EditBudgetRequest", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}
	role, _ := middleware.GetRoleFromContext(c)

	updated, err := h.budgetService.Edit(c.Request.Context(), c.Param("requestID"), req.ToDomain(userID, role == middleware.RoleAdmin))
	if err != nil {
		respondWithError(c, err, "Failed to edit budget request")
		return
	}
	c.JSON(http.StatusOK, dto.ToBudgetRequestResponse(updated))
}

func (h *budgetHandler) deleteRequest(c *gin.Context) {
	if err := h.budgetService.Delete(c.Request.Context(), c.Param("requestID")); err != nil {
		respondWithError(c, err, "Failed to delete budget request")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *budgetHandler) listBalances(c *gin.Context) {
	budget, err := h.budgetService.ListBalances(c.Request.Context(), c.Param("departmentID"))
	if err != nil {
		respondWithError(c, err, "Failed to list balances")
		return
	}
	c.JSON(http.StatusOK, budget)
}

func (h *budgetHandler) getBalance(c *gin.Context) {
	balance, err := h.budgetService.GetBalance(c.Request.Context(), c.Param("departmentID"), c.Param("category"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve balance")
		return
	}
	c.JSON(http.StatusOK, balance)
}

func (h *budgetHandler) checkDrift(c *gin.Context) {
	departmentID := c.Param("departmentID")
	drift, err := h.budgetService.CheckDrift(c.Request.Context(), departmentID)
	if err != nil {
		respondWithError(c, err, "Failed to check balance drift")
		return
	}
	c.JSON(http.StatusOK, dto.ToDriftResponse(departmentID, drift))
}

func (h *budgetHandler) reconcile(c *gin.Context) {
	departmentID := c.Param("departmentID")
	sums, err := h.budgetService.Reconcile(c.Request.Context(), departmentID)
	if err != nil {
		respondWithError(c, err, "Failed to reconcile balances")
		return
	}
	c.JSON(http.StatusOK, dto.ReconcileResponse{DepartmentID: departmentID, Balances: sums})
}
