// Command devserver runs the in-memory expense-sharing backend for local
// development of the client.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/expense-share/client/api/handlers"
	"github.com/expense-share/client/internal/config"
	"github.com/expense-share/client/internal/ledger"
	"github.com/expense-share/client/internal/logging"
	"github.com/expense-share/client/internal/ws"
)

func main() {
	configPath := flag.String("config", getEnv("LEDGER_CONFIG", ""), "path to a YAML config file")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before environment overrides")
	seed := flag.Bool("seed", true, "create the demo users and group")
	flag.Parse()

	if err := run(*configPath, *envFile, *seed); err != nil {
		fmt.Fprintln(os.Stderr, "devserver:", err)
		os.Exit(1)
	}
}

func run(configPath, envFile string, seed bool) error {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return err
	}

	cleanup, err := logging.Init(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer cleanup()
	logger := logging.Get()

	for _, w := range cfg.Validate() {
		logger.Warn().Msg(w)
	}

	hub := ws.NewHub(logger)
	defer hub.Close()

	service := ledger.NewService(ledger.Config{Publisher: hub, Logger: logger})
	if seed {
		if err := service.SeedDemo(); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		logger.Info().Str("password", ledger.DemoPassword).Msg("seeded users alice, bob and cara")
	}

	origin := getEnv("CORS_ORIGIN", "http://localhost:5173")
	gin.SetMode(gin.ReleaseMode)
	router := handlers.NewRouter(handlers.Options{
		Service:        service,
		Hub:            hub,
		Logger:         logger,
		Middleware:     []gin.HandlerFunc{corsMiddleware(origin)},
		AllowedOrigins: []string{origin},
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-sigCh:
	}

	logger.Info().Msg("shutting down server")
	hub.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// corsMiddleware allows the frontend dev server to call the API with cookies.
// Credentialed requests cannot use a wildcard origin.
func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
