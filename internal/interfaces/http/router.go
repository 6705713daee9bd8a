package http

import (
	"context"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/kesher-io/kesher/internal/infrastructure/config"
	"github.com/kesher-io/kesher/internal/infrastructure/ratelimit"
	"github.com/kesher-io/kesher/internal/interfaces/http/middleware"
	"github.com/kesher-io/kesher/internal/interfaces/http/routes"
	"github.com/kesher-io/kesher/internal/shared/logger"

	_ "github.com/kesher-io/kesher/docs"
)

var (
	loginLimits = ratelimit.Limits{PerMinute: 10, PerHour: 60}
	leadLimits  = ratelimit.Limits{PerMinute: 5, PerHour: 30, PerDay: 100}
)

// Router represents the HTTP router configuration
type Router struct {
	container *Container
	engine    *gin.Engine
}

// NewRouter creates a new HTTP router with all dependencies
func NewRouter(db *gorm.DB, cfg *config.Config, log logger.Interface) (*Router, error) {
	c, err := NewContainer(db, cfg, log)
	if err != nil {
		return nil, err
	}
	return &Router{container: c, engine: c.engine}, nil
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	c := r.container
	h := c.hdlrs
	log := c.log

	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Logger(log))
	r.engine.Use(middleware.Recovery(log))
	r.engine.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))
	r.engine.Use(middleware.SecurityHeaders())

	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupSiteRoutes(r.engine, &routes.SiteRouteConfig{
		PageHandler:   h.pages,
		HealthHandler: h.health,
	})

	routes.SetupPublicRoutes(r.engine, &routes.PublicRouteConfig{
		AuthHandler:    h.auth,
		PublicHandler:  h.public,
		WebhookHandler: h.webhook,
		LoginLimit:     middleware.RateLimit(c.rateLimiter, "login", loginLimits, log),
		LeadLimit:      middleware.RateLimit(c.rateLimiter, "leads", leadLimits, log),
	})

	routes.SetupAdminRoutes(r.engine, &routes.AdminRouteConfig{
		AuthHandler:    h.auth,
		StatsHandler:   h.stats,
		AuthMiddleware: c.authMiddleware,
		CRM: &routes.CRMRouteConfig{
			ContactHandler: h.contact,
			LeadHandler:    h.lead,
			DealHandler:    h.deal,
			ProductHandler: h.product,
		},
		Payments: &routes.PaymentRouteConfig{
			PaymentHandler:   h.payment,
			InvoiceHandler:   h.invoice,
			PlanHandler:      h.plan,
			RecurringHandler: h.recurring,
			ReminderHandler:  h.reminder,
		},
		Messaging: &routes.MessagingRouteConfig{
			TemplateHandler: h.template,
			SequenceHandler: h.sequence,
			SocialHandler:   h.social,
		},
	})
}

// StartBackground starts the scheduled jobs.
func (r *Router) StartBackground(ctx context.Context) error {
	return r.container.StartScheduler(ctx)
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Shutdown releases background jobs and connections.
func (r *Router) Shutdown() {
	r.container.Shutdown()
}
