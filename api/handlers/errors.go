// Package handlers provides the HTTP API of the dev backend.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/expense-share/client/internal/ledger"
	"github.com/expense-share/client/internal/model"
)

// ErrorResponse is the body of every failed request. Clients show Detail.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// sendError sends an error response with the appropriate status code.
func sendError(c *gin.Context, statusCode int, code, detail string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{Detail: detail, Code: code})
}

// handleError maps service errors onto HTTP statuses.
func handleError(c *gin.Context, err error) {
	detail := ledger.Detail(err)
	switch {
	case errors.Is(err, model.ErrNotFound):
		sendError(c, http.StatusNotFound, "NOT_FOUND", detail)
	case errors.Is(err, model.ErrForbidden):
		sendError(c, http.StatusForbidden, "FORBIDDEN", detail)
	case errors.Is(err, model.ErrUnauthorized):
		sendError(c, http.StatusUnauthorized, "UNAUTHORIZED", detail)
	case errors.Is(err, model.ErrConflict):
		sendError(c, http.StatusConflict, "CONFLICT", detail)
	case errors.Is(err, model.ErrInvalidRequest),
		errors.Is(err, model.ErrNameRequired),
		errors.Is(err, model.ErrInvalidAmount),
		errors.Is(err, model.ErrSplitMismatch),
		errors.Is(err, model.ErrInvalidCadence),
		errors.Is(err, model.ErrInvalidDate),
		errors.Is(err, model.ErrSelfSettlement):
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", detail)
	default:
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// paramID parses a numeric path parameter, answering 400 when it is not one.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid "+name)
		return 0, false
	}
	return id, true
}

// bindJSON decodes the request body, answering 400 on malformed input.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
		return false
	}
	return true
}
