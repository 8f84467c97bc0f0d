package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/expense-share/client/internal/ws"
)

// NotificationHandler serves the notification socket.
type NotificationHandler struct {
	wsHandler *ws.Handler
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(wsHandler *ws.Handler) *NotificationHandler {
	return &NotificationHandler{wsHandler: wsHandler}
}

// Notifications handles WS /ws/notifications for the authenticated user.
func (h *NotificationHandler) Notifications(c *gin.Context) {
	// Upgrade failures are answered by the upgrader itself.
	_ = h.wsHandler.HandleConnection(c.Writer, c.Request, getUserID(c))
}

// RegisterRoutes registers the socket route on a group carrying RequireAuth.
func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notifications", h.Notifications)
}
