package http

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/kesher-io/kesher/internal/infrastructure/config"
	"github.com/kesher-io/kesher/internal/infrastructure/ratelimit"
	"github.com/kesher-io/kesher/internal/infrastructure/scheduler"
	"github.com/kesher-io/kesher/internal/interfaces/http/middleware"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

// Container holds the infrastructure, repositories, services, handlers and
// background jobs, wires them together and tears them down on Shutdown.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	repos *repositories
	svcs  *services
	hdlrs *allHandlers

	// Middlewares
	authMiddleware *middleware.AuthMiddleware
	rateLimiter    ratelimit.RateLimiter

	scheduler *scheduler.Scheduler
}

// NewContainer creates a Container with all dependencies wired together.
// Messaging is built before CRM and payments because both depend on it.
func NewContainer(db *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
	}

	// Section 1: Infrastructure - Redis, Repositories, Shared Services
	c.initInfrastructure()

	// Section 2: Messaging - Templates, Dispatcher, Sequences, Inbox
	c.initMessaging()

	// Section 3: CRM - Contacts, Leads, Deals, Catalog
	c.initCRM()

	// Section 4: Payments - Gateways, Settlement, Invoices, Billing
	c.initPayments()

	// Section 5: Dashboards & Admin Auth
	c.initStatsAndAuth()

	// Section 6: Handlers
	if err := c.initHandlers(); err != nil {
		return nil, err
	}

	return c, nil
}

// StartScheduler starts the background billing and messaging loops unless
// scheduler.enabled is false.
func (c *Container) StartScheduler(ctx context.Context) error {
	if !c.cfg.Scheduler.Enabled {
		c.log.Infow("scheduler disabled")
		return nil
	}

	s, err := scheduler.NewFromConfig(c.cfg.Scheduler, scheduler.Jobs{
		Recurring:      c.svcs.processRecurring,
		Reminders:      c.svcs.sendReminders,
		Sequences:      c.svcs.processSequences,
		PendingPayment: c.svcs.expirePending,
	}, c.log)
	if err != nil {
		return fmt.Errorf("failed to build scheduler: %w", err)
	}
	s.Start(ctx)
	c.scheduler = s
	c.log.Infow("scheduler started", "jobs", s.Jobs())
	return nil
}

// Shutdown stops the background jobs and closes the Redis connection.
func (c *Container) Shutdown() {
	if c.scheduler != nil {
		c.scheduler.Stop()
		c.log.Infow("scheduler stopped")
	}

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Warnw("failed to close redis client", "error", err)
		}
	}
}
