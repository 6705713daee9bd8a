package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/kesher-io/kesher/internal/interfaces/http/handlers"
	"github.com/kesher-io/kesher/internal/interfaces/http/middleware"
)

// AdminRouteConfig holds dependencies for the back office API.
type AdminRouteConfig struct {
	AuthHandler    *handlers.AuthHandler
	StatsHandler   *handlers.StatsHandler
	AuthMiddleware *middleware.AuthMiddleware

	CRM       *CRMRouteConfig
	Payments  *PaymentRouteConfig
	Messaging *MessagingRouteConfig
}

// SetupAdminRoutes configures every route under /api/admin behind RequireAuth.
func SetupAdminRoutes(engine *gin.Engine, cfg *AdminRouteConfig) {
	admin := engine.Group("/api/admin")
	admin.Use(cfg.AuthMiddleware.RequireAuth())

	admin.GET("/me", cfg.AuthHandler.Me)

	SetupCRMRoutes(admin, cfg.CRM)
	SetupPaymentRoutes(admin, cfg.Payments)
	SetupMessagingRoutes(admin, cfg.Messaging)

	stats := admin.Group("/stats")
	{
		stats.GET("/overview", cfg.StatsHandler.Overview)
		stats.GET("/crm", cfg.StatsHandler.CRM)
		stats.GET("/funnel", cfg.StatsHandler.Funnel)
		stats.GET("/payments", cfg.StatsHandler.Payments)
		stats.GET("/messaging", cfg.StatsHandler.Messaging)
	}
}
