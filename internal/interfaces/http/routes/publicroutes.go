package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/kesher-io/kesher/internal/interfaces/http/handlers"
	"github.com/kesher-io/kesher/internal/interfaces/http/handlers/payment"
)

// PublicRouteConfig holds dependencies for the unauthenticated API.
type PublicRouteConfig struct {
	AuthHandler    *handlers.AuthHandler
	PublicHandler  *handlers.PublicHandler
	WebhookHandler *payment.WebhookHandler
	LoginLimit     gin.HandlerFunc
	LeadLimit      gin.HandlerFunc
}

// SetupPublicRoutes configures login, the website lead form and gateway webhooks.
func SetupPublicRoutes(engine *gin.Engine, cfg *PublicRouteConfig) {
	api := engine.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", cfg.LoginLimit, cfg.AuthHandler.Login)
	}

	public := api.Group("/public")
	{
		public.POST("/leads", cfg.LeadLimit, cfg.PublicHandler.CaptureLead)
	}

	// Gateways authenticate with their own signature, checked per gateway.
	webhooks := api.Group("/webhooks")
	{
		webhooks.POST("/payments/:gateway", cfg.WebhookHandler.Handle)
	}
}
