package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/config"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/handler"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/middleware"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/repository/postgres"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/repository/storage"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/service"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Connect to the backup document store
	backupStore, err := storage.NewS3BackupStore(context.Background(), cfg.Backup)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to backup store")
	}
	log.Info().Str("bucket", cfg.Backup.Bucket).Msg("Connected to backup store")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	loanRepo := postgres.NewLoanRepository(pool)
	investorRepo := postgres.NewInvestorRepository(pool)

	// WebSocket hub broadcasts book changes to every admin session
	hub := websocket.NewHub()

	// Initialize services
	emailService := service.NewEmailService(cfg.SMTP)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	userService := service.NewUserService(userRepo)
	loanService := service.NewLoanService(loanRepo, hub)
	investorService := service.NewInvestorService(investorRepo, hub)
	dueService := service.NewDueService(loanRepo)
	backupService := service.NewBackupService(loanRepo, investorRepo, backupStore, emailService, cfg.SMTP.To, hub)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authService)
	loginLimiter := middleware.NewRateLimiter()
	defer loginLimiter.Stop()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, emailService)
	adminHandler := handler.NewAdminHandler(userService)
	loanHandler := handler.NewLoanHandler(loanService)
	investorHandler := handler.NewInvestorHandler(investorService)
	dueHandler := handler.NewDueHandler(dueService, cfg.NotPayingMonths)
	backupHandler := handler.NewBackupHandler(backupService)
	wsHandler := handler.NewWebSocketHandler(hub, authService, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, loginLimiter, authHandler, adminHandler, loanHandler, investorHandler, dueHandler, backupHandler, wsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
