package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/expense-share/client/internal/ledger"
	"github.com/expense-share/client/internal/model"
)

// SessionCookie carries the session token.
const SessionCookie = "session"

const (
	userIDKey = "userID"
	userKey   = "user"
)

// AuthHandler handles login, logout and the current user.
type AuthHandler struct {
	service *ledger.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *ledger.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

// RequireAuth rejects requests without a valid session cookie and stores the
// user in the context.
func (h *AuthHandler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil {
			sendError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated")
			return
		}
		user, err := h.service.Authenticate(token)
		if err != nil {
			handleError(c, err)
			return
		}
		c.Set(userIDKey, user.ID)
		c.Set(userKey, user)
		c.Next()
	}
}

// getUserID extracts the user ID set by RequireAuth.
func getUserID(c *gin.Context) int64 {
	if v, ok := c.Get(userIDKey); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	token, user, err := h.service.Login(req.Username, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, 0, "/", "", false, true)
	c.JSON(http.StatusOK, user)
}

// Logout handles POST /api/auth/logout. It succeeds without a session too.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(SessionCookie); err == nil {
		h.service.Logout(token)
	}
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	user, _ := c.Get(userKey)
	c.JSON(http.StatusOK, user)
}

// RegisterRoutes registers the auth routes. protected must carry RequireAuth.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/auth/login", h.Login)
	public.POST("/auth/logout", h.Logout)
	protected.GET("/auth/me", h.Me)
}
