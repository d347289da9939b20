package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/luc4spas/erp-joy-maker/internal/middleware"
	"github.com/luc4spas/erp-joy-maker/internal/model"
)

type createExpenseRequest struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
}

// ListExpenses expenses of the tenant
// GET /api/expenses
func (h *Handler) ListExpenses(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}

	expenses, err := h.store.ListExpenses(c.Request.Context(), middleware.UserID(c), from, to)
	if err != nil {
		respondStoreError(c, err, "list expenses")
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

// CreateExpense records an expense
// POST /api/expenses
func (h *Handler) CreateExpense(c *gin.Context) {
	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if !validDate(req.Date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, use YYYY-MM-DD"})
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "description is required"})
		return
	}
	if req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}

	expense := model.Expense{
		UserID:      middleware.UserID(c),
		Date:        req.Date,
		Description: req.Description,
		Amount:      roundMoney(req.Amount),
		Category:    strings.TrimSpace(req.Category),
	}
	if err := h.store.CreateExpense(c.Request.Context(), &expense); err != nil {
		respondStoreError(c, err, "create expense")
		return
	}
	c.JSON(http.StatusCreated, expense)
}

// DeleteExpense removes an expense
// DELETE /api/expenses/:id
func (h *Handler) DeleteExpense(c *gin.Context) {
	if err := h.store.DeleteExpense(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		respondStoreError(c, err, "delete expense")
		return
	}
	c.Status(http.StatusNoContent)
}
