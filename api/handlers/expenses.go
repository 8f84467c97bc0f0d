package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/expense-share/client/internal/model"
)

// ListExpenses handles GET /api/groups/:id/expenses.
func (h *LedgerHandler) ListExpenses(c *gin.Context) {
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	expenses, err := h.service.ListExpenses(getUserID(c), groupID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

// CreateExpense handles POST /api/groups/:id/expenses.
func (h *LedgerHandler) CreateExpense(c *gin.Context) {
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.ExpenseRequest
	if !bindJSON(c, &req) {
		return
	}
	expense, err := h.service.CreateExpense(getUserID(c), groupID, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

// UpdateExpense handles PUT /api/groups/:id/expenses/:expenseId.
func (h *LedgerHandler) UpdateExpense(c *gin.Context) {
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	expenseID, ok := paramID(c, "expenseId")
	if !ok {
		return
	}
	var req model.ExpenseRequest
	if !bindJSON(c, &req) {
		return
	}
	expense, err := h.service.UpdateExpense(getUserID(c), groupID, expenseID, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

// DeleteExpense handles DELETE /api/groups/:id/expenses/:expenseId.
func (h *LedgerHandler) DeleteExpense(c *gin.Context) {
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	expenseID, ok := paramID(c, "expenseId")
	if !ok {
		return
	}
	if err := h.service.DeleteExpense(getUserID(c), groupID, expenseID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListSettlements handles GET /api/groups/:id/settlements.
func (h *LedgerHandler) ListSettlements(c *gin.Context) {
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	summary, err := h.service.Settlements(getUserID(c), groupID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// RecordSettlement handles POST /api/groups/:id/settlements.
func (h *LedgerHandler) RecordSettlement(c *gin.Context) {
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.SettlementRequest
	if !bindJSON(c, &req) {
		return
	}
	settlement, err := h.service.RecordSettlement(getUserID(c), groupID, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, settlement)
}

// ConfirmSettlement handles POST /api/groups/:id/settlements/:settlementId/confirm.
func (h *LedgerHandler) ConfirmSettlement(c *gin.Context) {
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	settlementID, ok := paramID(c, "settlementId")
	if !ok {
		return
	}
	settlement, err := h.service.ConfirmSettlement(getUserID(c), groupID, settlementID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, settlement)
}

// ListSubscriptions handles GET /api/groups/:id/subscriptions.
func (h *LedgerHandler) ListSubscriptions(c *gin.Context) {
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	subs, err := h.service.ListSubscriptions(getUserID(c), groupID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

// CreateSubscription handles POST /api/groups/:id/subscriptions.
func (h *LedgerHandler) CreateSubscription(c *gin.Context) {
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.SubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.service.CreateSubscription(getUserID(c), groupID, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// UpdateSubscription handles PUT /api/groups/:id/subscriptions/:subscriptionId.
func (h *LedgerHandler) UpdateSubscription(c *gin.Context) {
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	subID, ok := paramID(c, "subscriptionId")
	if !ok {
		return
	}
	var req model.SubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.service.UpdateSubscription(getUserID(c), groupID, subID, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// DeleteSubscription handles DELETE /api/groups/:id/subscriptions/:subscriptionId.
func (h *LedgerHandler) DeleteSubscription(c *gin.Context) {
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	subID, ok := paramID(c, "subscriptionId")
	if !ok {
		return
	}
	if err := h.service.DeleteSubscription(getUserID(c), groupID, subID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PaySubscription handles POST /api/groups/:id/subscriptions/:subscriptionId/pay.
func (h *LedgerHandler) PaySubscription(c *gin.Context) {
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	subID, ok := paramID(c, "subscriptionId")
	if !ok {
		return
	}
	result, err := h.service.PaySubscription(getUserID(c), groupID, subID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
