package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/expense-share/client/internal/ledger"
	"github.com/expense-share/client/internal/metrics"
	"github.com/expense-share/client/internal/ws"
)

// Options configures NewRouter.
type Options struct {
	Service *ledger.Service
	Hub     *ws.Hub
	Logger  *zerolog.Logger

	// Middleware runs before every route, e.g. CORS.
	Middleware []gin.HandlerFunc

	// AllowedOrigins restricts browser origins on the notification socket.
	AllowedOrigins []string
}

// NewRouter builds the dev backend: /api for REST, /ws for notifications,
// plus /health and /metrics.
func NewRouter(opts Options) *gin.Engine {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("component", "http").Logger()
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	r.Use(opts.Middleware...)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.PromHandler()))

	auth := NewAuthHandler(opts.Service)

	api := r.Group("/api")
	protected := api.Group("", auth.RequireAuth())
	auth.RegisterRoutes(api, protected)
	NewLedgerHandler(opts.Service).RegisterRoutes(protected)

	if opts.Hub != nil {
		socket := r.Group("/ws", auth.RequireAuth())
		NewNotificationHandler(ws.NewHandler(opts.Hub, opts.Logger, opts.AllowedOrigins...)).RegisterRoutes(socket)
	}
	return r
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}
