package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCorsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(corsMiddleware("http://localhost:5173"))
	r.GET("/api/groups", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/groups", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("request passes through", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/groups", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetEnv(t *testing.T) {
	t.Setenv("DEVSERVER_TEST_VALUE", "set")
	assert.Equal(t, "set", getEnv("DEVSERVER_TEST_VALUE", "default"))
	assert.Equal(t, "default", getEnv("DEVSERVER_TEST_UNSET", "default"))
}
