package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(
	e *echo.Echo,
	authMiddleware *middleware.AuthMiddleware,
	loginLimiter *middleware.RateLimiter,
	authHandler *AuthHandler,
	adminHandler *AdminHandler,
	loanHandler *LoanHandler,
	investorHandler *InvestorHandler,
	dueHandler *DueHandler,
	backupHandler *BackupHandler,
	wsHandler *WebSocketHandler,
) {
	// API version 1
	api := e.Group("/api/v1")

	// Auth routes; credential endpoints are rate limited per IP
	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login, middleware.RateLimitMiddleware(loginLimiter))
	auth.POST("/forgot-password", authHandler.ForgotPassword, middleware.RateLimitMiddleware(loginLimiter))
	auth.POST("/reset-password", authHandler.ResetPassword, middleware.RateLimitMiddleware(loginLimiter))
	auth.POST("/logout", authHandler.Logout, authMiddleware.Authenticate())
	auth.GET("/me", authHandler.Me, authMiddleware.Authenticate())
	auth.POST("/change-password", authHandler.ChangePassword, authMiddleware.Authenticate())

	// Admin account routes (protected)
	admins := api.Group("/admins")
	admins.Use(authMiddleware.Authenticate())
	admins.POST("", adminHandler.CreateAdmin)
	admins.GET("", adminHandler.ListAdmins)
	admins.DELETE("/:id", adminHandler.DeleteAdmin)

	// Loan routes (protected)
	loans := api.Group("/loans")
	loans.Use(authMiddleware.Authenticate())
	loans.POST("", loanHandler.CreateLoan)
	loans.GET("", loanHandler.GetLoans)
	loans.GET("/export", loanHandler.ExportLoans)
	loans.GET("/:id", loanHandler.GetLoan)
	loans.PUT("/:id", loanHandler.UpdateLoan)
	loans.DELETE("/:id", loanHandler.DeleteLoan)
	loans.POST("/:id/transactions", loanHandler.AddTransaction)
	loans.GET("/:id/metrics", loanHandler.GetLoanMetrics)

	// Investor routes (protected)
	investors := api.Group("/investors")
	investors.Use(authMiddleware.Authenticate())
	investors.POST("", investorHandler.CreateInvestor)
	investors.GET("", investorHandler.GetInvestors)
	investors.GET("/summary", investorHandler.GetSummary)
	investors.GET("/:id", investorHandler.GetInvestor)
	investors.PUT("/:id", investorHandler.UpdateInvestor)
	investors.DELETE("/:id", investorHandler.DeleteInvestor)
	investors.POST("/:id/payments", investorHandler.AddPayment)
	investors.POST("/:id/close", investorHandler.CloseInvestor)

	// Due date and delinquency routes (protected)
	due := api.Group("/due")
	due.Use(authMiddleware.Authenticate())
	due.GET("", dueHandler.GetDue)
	due.GET("/not-paying", dueHandler.GetNotPaying)

	// Backup routes (protected)
	backup := api.Group("/backup")
	backup.Use(authMiddleware.Authenticate())
	backup.POST("", backupHandler.CreateBackup)
	backup.GET("", backupHandler.ListBackups)
	backup.POST("/restore", backupHandler.Restore)
	backup.POST("/email", backupHandler.EmailBackup)

	// WebSocket endpoint authenticates via query token inside the handler
	e.GET("/ws", wsHandler.HandleWS)
}
