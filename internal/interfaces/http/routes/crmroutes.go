package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/kesher-io/kesher/internal/interfaces/http/handlers"
	"github.com/kesher-io/kesher/internal/interfaces/http/handlers/crm"
)

// CRMRouteConfig holds dependencies for contact, lead, deal and product routes.
type CRMRouteConfig struct {
	ContactHandler *crm.ContactHandler
	LeadHandler    *crm.LeadHandler
	DealHandler    *crm.DealHandler
	ProductHandler *handlers.ProductHandler
}

// SetupCRMRoutes registers the CRM endpoints on an authenticated admin group.
func SetupCRMRoutes(admin *gin.RouterGroup, cfg *CRMRouteConfig) {
	contacts := admin.Group("/contacts")
	{
		contacts.GET("", cfg.ContactHandler.List)
		contacts.POST("", cfg.ContactHandler.Create)
		contacts.GET("/:id", cfg.ContactHandler.Get)
		contacts.PUT("/:id", cfg.ContactHandler.Update)
		contacts.PATCH("/:id/status", cfg.ContactHandler.ChangeStatus)
		contacts.DELETE("/:id", cfg.ContactHandler.Delete)
	}

	leads := admin.Group("/leads")
	{
		leads.GET("", cfg.LeadHandler.List)
		leads.POST("", cfg.LeadHandler.Create)
		leads.GET("/:id", cfg.LeadHandler.Get)
		leads.PUT("/:id", cfg.LeadHandler.Update)
		leads.PATCH("/:id/stage", cfg.LeadHandler.MoveStage)
		leads.DELETE("/:id", cfg.LeadHandler.Delete)
	}

	deals := admin.Group("/deals")
	{
		deals.GET("", cfg.DealHandler.List)
		deals.POST("", cfg.DealHandler.Create)
		deals.GET("/:id", cfg.DealHandler.Get)
		deals.PUT("/:id", cfg.DealHandler.Update)
		deals.PATCH("/:id/status", cfg.DealHandler.ChangeStatus)
		deals.DELETE("/:id", cfg.DealHandler.Delete)
	}

	products := admin.Group("/products")
	{
		products.GET("", cfg.ProductHandler.List)
		products.POST("", cfg.ProductHandler.Create)
		products.GET("/:id", cfg.ProductHandler.Get)
		products.PUT("/:id", cfg.ProductHandler.Update)
		products.DELETE("/:id", cfg.ProductHandler.Delete)
	}
}
