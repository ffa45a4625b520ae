// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/concilia/backend/internal/integration/entrypoint/controller"
	"github.com/concilia/backend/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine                   *gin.Engine
	healthController         *controller.HealthController
	statementController      *controller.StatementController
	reconciliationController *controller.ReconciliationController
	uploadRateLimiter        *middleware.RateLimiter
	authMiddleware           *middleware.AuthMiddleware
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	statementController *controller.StatementController,
	reconciliationController *controller.ReconciliationController,
	uploadRateLimiter *middleware.RateLimiter,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		healthController:         healthController,
		statementController:      statementController,
		reconciliationController: reconciliationController,
		uploadRateLimiter:        uploadRateLimiter,
		authMiddleware:           authMiddleware,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	r.engine = gin.Default()

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	v1 := r.engine.Group("/api/v1")
	{
		// Statement routes (require authentication)
		if r.statementController != nil && r.authMiddleware != nil {
			statements := v1.Group("/statements")
			statements.Use(r.authMiddleware.Authenticate())
			{
				if r.uploadRateLimiter != nil {
					statements.POST("/upload", r.uploadRateLimiter.Middleware(), r.statementController.Upload)
				} else {
					statements.POST("/upload", r.statementController.Upload)
				}
				statements.GET("", r.statementController.List)
			}
		}

		// Reconciliation routes (require authentication)
		if r.reconciliationController != nil && r.authMiddleware != nil {
			reconciliation := v1.Group("/reconciliation")
			reconciliation.Use(r.authMiddleware.Authenticate())
			{
				reconciliation.GET("/suggestions", r.reconciliationController.ListSuggestions)
				reconciliation.POST("/matches", r.reconciliationController.CreateMatch)
				reconciliation.GET("/matches/:bankTransactionID", r.reconciliationController.GetMatchGroup)
				reconciliation.PATCH("/matches/:bankTransactionID", r.reconciliationController.ReviewMatch)
				reconciliation.DELETE("/matches/:bankTransactionID", r.reconciliationController.UnlinkMatch)
				reconciliation.GET("/integrity", r.reconciliationController.GetIntegrityReport)
				reconciliation.GET("/integrity/:bankTransactionID", r.reconciliationController.ValidateTransaction)
			}
		}
	}
}

// Engine returns the underlying Gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
