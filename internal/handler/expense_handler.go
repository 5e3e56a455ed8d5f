package handler

import (
	"context"
	"net/http"

	"reimburse/internal/middleware"
	"reimburse/internal/model"
	"reimburse/internal/service"
	"reimburse/pkg/pagination"
	"reimburse/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ExpenseHandler struct {
	expenseService  service.ExpenseService
	approvalService service.ApprovalService
}

func NewExpenseHandler(expenseService service.ExpenseService, approvalService service.ApprovalService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, approvalService: approvalService}
}

func (h *ExpenseHandler) RegisterRoutes(router *gin.RouterGroup) {
	expenses := router.Group("/api/expenses")
	{
		expenses.POST("", middleware.RequireRole(model.RoleEmployee), h.SubmitExpense)
		expenses.GET("/me", middleware.RequireRole(model.RoleEmployee, model.RoleManager, model.RoleAdmin), h.MyExpenses)
		expenses.GET("/pending", middleware.RequireRole(model.RoleManager, model.RoleAdmin, model.RoleFinance), h.PendingExpenses)
		expenses.POST("/:id/approve", middleware.RequireRole(model.RoleManager, model.RoleAdmin, model.RoleFinance), h.ApproveExpense)
		expenses.POST("/:id/reject", middleware.RequireRole(model.RoleManager, model.RoleAdmin, model.RoleFinance), h.RejectExpense)
	}
}

// SubmitExpense handles a new expense claim. The amount is converted
// into the company currency and the approval flow snapshot is frozen
// here.
func (h *ExpenseHandler) SubmitExpense(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authentication required"))
		return
	}

	var req service.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Missing required fields: amount, currency, category, description, date"))
		return
	}

	result, err := h.expenseService.Submit(c.Request.Context(), callerID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// MyExpenses returns the caller's own expense history
func (h *ExpenseHandler) MyExpenses(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authentication required"))
		return
	}

	params := pagination.Parse(c)
	expenses, total, err := h.expenseService.ListMine(c.Request.Context(), callerID, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   expenses,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}

// PendingExpenses returns the expenses waiting on the caller's decision
func (h *ExpenseHandler) PendingExpenses(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authentication required"))
		return
	}

	expenses, err := h.approvalService.ListPending(c.Request.Context(), callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, expenses))
}

// ApproveExpense approves the current step of an expense
func (h *ExpenseHandler) ApproveExpense(c *gin.Context) {
	h.decide(c, h.approvalService.Approve)
}

// RejectExpense rejects the expense, stopping the flow
func (h *ExpenseHandler) RejectExpense(c *gin.Context) {
	h.decide(c, h.approvalService.Reject)
}

type decideFunc func(ctx context.Context, expenseID, actorID uuid.UUID, comment string) (service.DecisionResponse, error)

// decide shares the approve/reject plumbing: resolve caller, parse the
// expense id, read the optional comment, run the engine.
func (h *ExpenseHandler) decide(c *gin.Context, fn decideFunc) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authentication required"))
		return
	}

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Expense not found."))
		return
	}

	var req service.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Allow empty body — comment is optional
		req.Comment = ""
	}

	result, err := fn(c.Request.Context(), expenseID, callerID, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
