package server

import (
	"github.com/labstack/echo/v4"

	"example.com/cfo-ai/backend/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	authHandler *handlers.AuthHandler,
	ledgerHandler *handlers.LedgerHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	industryHandler *handlers.IndustryHandler,
	notificationHandler *handlers.NotificationHandler,
	authMiddleware echo.MiddlewareFunc,
	authRateLimiter echo.MiddlewareFunc,
	analyticsRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", handlers.Health)

	api := e.Group("/api/v1")
	authGroup := api.Group("/auth", authRateLimiter)

	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", authHandler.Me, authMiddleware)

	ledger := api.Group("/ledger", authMiddleware)
	ledger.GET("", ledgerHandler.List)
	ledger.POST("/import", ledgerHandler.Import)

	analytics := api.Group("/analytics", authMiddleware, analyticsRateLimiter)
	analytics.GET("/forecast", analyticsHandler.Forecast)
	analytics.GET("/forecast/snapshot", analyticsHandler.Snapshot)
	analytics.GET("/aggregate", analyticsHandler.Aggregate)
	analytics.GET("/kpi", analyticsHandler.KPI)
	analytics.GET("/positions", analyticsHandler.Positions)
	analytics.GET("/analysis", analyticsHandler.Analysis)

	industries := api.Group("/industries")
	industries.GET("", industryHandler.List)
	industries.PUT("/current", industryHandler.Update, authMiddleware)

	notifications := api.Group("/notifications", authMiddleware)
	notifications.GET("/stream", notificationHandler.Stream)
}
