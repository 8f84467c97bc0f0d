package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/expense-share/client/internal/ledger"
	"github.com/expense-share/client/internal/model"
)

// LedgerHandler serves groups and everything scoped to them.
type LedgerHandler struct {
	service *ledger.Service
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(service *ledger.Service) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// ListGroups handles GET /api/groups.
func (h *LedgerHandler) ListGroups(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ListGroups(getUserID(c)))
}

// GetGroup handles GET /api/groups/:id.
func (h *LedgerHandler) GetGroup(c *gin.Context) {
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	group, err := h.service.GetGroup(getUserID(c), groupID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

// CreateGroup handles POST /api/groups.
func (h *LedgerHandler) CreateGroup(c *gin.Context) {
	var req model.GroupRequest
	if !bindJSON(c, &req) {
		return
	}
	group, err := h.service.CreateGroup(getUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

// UpdateGroup handles PUT /api/groups/:id.
func (h *LedgerHandler) UpdateGroup(c *gin.Context) {
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.GroupRequest
	if !bindJSON(c, &req) {
		return
	}
	group, err := h.service.UpdateGroup(getUserID(c), groupID, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

// InviteMember handles POST /api/groups/:id/invites.
func (h *LedgerHandler) InviteMember(c *gin.Context) {
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.InviteRequest
	if !bindJSON(c, &req) {
		return
	}
	invite, err := h.service.InviteMember(getUserID(c), groupID, req.Username)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invite)
}

// ListInvites handles GET /api/invites.
func (h *LedgerHandler) ListInvites(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ListInvites(getUserID(c)))
}

// AcceptInvite handles POST /api/invites/:id/accept.
func (h *LedgerHandler) AcceptInvite(c *gin.Context) {
	inviteID, ok := paramID(c, "id")
	if !ok {
		return
	}
	invite, err := h.service.AcceptInvite(getUserID(c), inviteID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, invite)
}

// SpendingSummary handles GET /api/profile/spending-summary.
func (h *LedgerHandler) SpendingSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.SpendingSummary(getUserID(c)))
}

// ListCategories handles GET /api/groups/:id/categories.
func (h *LedgerHandler) ListCategories(c *gin.Context) {
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	categories, err := h.service.ListCategories(getUserID(c), groupID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// CreateCategory handles POST /api/groups/:id/categories.
func (h *LedgerHandler) CreateCategory(c *gin.Context) {
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.service.CreateCategory(getUserID(c), groupID, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// UpdateCategory handles PUT /api/groups/:id/categories/:categoryId.
func (h *LedgerHandler) UpdateCategory(c *gin.Context) {
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	categoryID, ok := paramID(c, "categoryId")
	if !ok {
		return
	}
	var req model.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.service.UpdateCategory(getUserID(c), groupID, categoryID, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory handles DELETE /api/groups/:id/categories/:categoryId.
func (h *LedgerHandler) DeleteCategory(c *gin.Context) {
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	categoryID, ok := paramID(c, "categoryId")
	if !ok {
		return
	}
	if err := h.service.DeleteCategory(getUserID(c), groupID, categoryID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers the ledger routes on a router group that carries
// RequireAuth.
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/groups", h.ListGroups)
	rg.POST("/groups", h.CreateGroup)
	rg.GET("/groups/:id", h.GetGroup)
	rg.PUT("/groups/:id", h.UpdateGroup)
	rg.POST("/groups/:id/invites", h.InviteMember)

	rg.GET("/groups/:id/categories", h.ListCategories)
	rg.POST("/groups/:id/categories", h.CreateCategory)
	rg.PUT("/groups/:id/categories/:categoryId", h.UpdateCategory)
	rg.DELETE("/groups/:id/categories/:categoryId", h.DeleteCategory)

	rg.GET("/groups/:id/expenses", h.ListExpenses)
	rg.POST("/groups/:id/expenses", h.CreateExpense)
	rg.PUT("/groups/:id/expenses/:expenseId", h.UpdateExpense)
	rg.DELETE("/groups/:id/expenses/:expenseId", h.DeleteExpense)

	rg.GET("/groups/:id/settlements", h.ListSettlements)
	rg.POST("/groups/:id/settlements", h.RecordSettlement)
	rg.POST("/groups/:id/settlements/:settlementId/confirm", h.ConfirmSettlement)

	rg.GET("/groups/:id/subscriptions", h.ListSubscriptions)
	rg.POST("/groups/:id/subscriptions", h.CreateSubscription)
	rg.PUT("/groups/:id/subscriptions/:subscriptionId", h.UpdateSubscription)
	rg.DELETE("/groups/:id/subscriptions/:subscriptionId", h.DeleteSubscription)
	rg.POST("/groups/:id/subscriptions/:subscriptionId/pay", h.PaySubscription)

	rg.GET("/invites", h.ListInvites)
	rg.POST("/invites/:id/accept", h.AcceptInvite)

	rg.GET("/profile/spending-summary", h.SpendingSummary)
}
