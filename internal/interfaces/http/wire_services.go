package http

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	authApp "github.com/kesher-io/kesher/internal/application/auth"
	billingApp "github.com/kesher-io/kesher/internal/application/billing"
	"github.com/kesher-io/kesher/internal/application/catalog"
	"github.com/kesher-io/kesher/internal/application/common"
	crmApp "github.com/kesher-io/kesher/internal/application/crm"
	invoiceApp "github.com/kesher-io/kesher/internal/application/invoice"
	messagingApp "github.com/kesher-io/kesher/internal/application/messaging"
	"github.com/kesher-io/kesher/internal/application/payment/paymentgateway"
	paymentUsecases "github.com/kesher-io/kesher/internal/application/payment/usecases"
	statsApp "github.com/kesher-io/kesher/internal/application/stats"
	"github.com/kesher-io/kesher/internal/infrastructure/auth"
	"github.com/kesher-io/kesher/internal/infrastructure/cache"
	"github.com/kesher-io/kesher/internal/infrastructure/config"
	"github.com/kesher-io/kesher/internal/infrastructure/email"
	"github.com/kesher-io/kesher/internal/infrastructure/ratelimit"
	"github.com/kesher-io/kesher/internal/interfaces/http/middleware"
	shareddb "github.com/kesher-io/kesher/internal/shared/db"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/services/markdown"
)

const (
	statsCacheTTL       = 60 * time.Second
	gatewayHTTPTimeout  = 30 * time.Second
	rateLimitKeyPrefix  = "kesher:ratelimit"
	defaultVATPercent   = 18
	redisConnectTimeout = 5 * time.Second
)

// services holds the application layer built on top of the repositories.
type services struct {
	txManager *shareddb.TransactionManager
	mailer    common.Mailer
	markdown  *markdown.Renderer
	gateways  *paymentgateway.Registry
	jwt       *auth.JWTService

	dispatcher *messagingApp.Dispatcher

	contacts *crmApp.ContactService
	leads    *crmApp.LeadService
	deals    *crmApp.DealService
	products *catalog.ProductService

	settlement       *paymentUsecases.Settlement
	createPayment    *paymentUsecases.CreatePaymentUseCase
	getPayment       *paymentUsecases.GetPaymentUseCase
	listPayments     *paymentUsecases.ListPaymentsUseCase
	refundPayment    *paymentUsecases.RefundPaymentUseCase
	cancelPayment    *paymentUsecases.CancelPaymentUseCase
	handleWebhook    *paymentUsecases.HandleWebhookUseCase
	expirePending    *paymentUsecases.ExpirePendingPaymentsUseCase
	invoices         *invoiceApp.Service
	plans            *billingApp.PlanService
	recurring        *billingApp.RecurringService
	reminders        *billingApp.ReminderService
	processRecurring *billingApp.ProcessDueRecurringUseCase
	sendReminders    *billingApp.SendDueRemindersUseCase

	templates        *messagingApp.TemplateService
	sequences        *messagingApp.SequenceService
	processSequences *messagingApp.ProcessSequencesUseCase
	social           *messagingApp.SocialService

	stats *statsApp.Service
	login *authApp.LoginUseCase
}

// ============================================================
// Section 1: Infrastructure - Redis, Repositories, Shared Services
// ============================================================

// initInfrastructure connects Redis when enabled and builds the repositories,
// the mailer, the gateways and the admin auth services.
func (c *Container) initInfrastructure() {
	cfg := c.cfg
	log := c.log

	c.redis = initRedis(cfg, log)
	c.repos = newRepositories(c.db, c.cfg.Payment.Currency)

	c.svcs = &services{
		txManager: shareddb.NewTransactionManager(c.db),
		mailer:    email.NewMailer(cfg.Email, log),
		markdown:  markdown.NewRenderer(),
		gateways:  paymentgateway.NewRegistry(cfg.Payment, &http.Client{Timeout: gatewayHTTPTimeout}, log),
		jwt:       auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes),
	}

	c.authMiddleware = middleware.NewAuthMiddleware(c.svcs.jwt, log)
	if c.redis != nil {
		c.rateLimiter = ratelimit.NewRedisRateLimiter(c.redis, rateLimitKeyPrefix)
	} else {
		c.rateLimiter = ratelimit.NewMemoryRateLimiter()
	}

	log.Infow("payment gateways registered",
		"gateways", c.svcs.gateways.Names(),
		"default", c.svcs.gateways.Default().Name(),
	)
}

// initRedis returns nil when Redis is disabled or unreachable. Caching and rate
// limiting then fall back to in-process behaviour.
func initRedis(cfg *config.Config, log logger.Interface) *redis.Client {
	if !cfg.Redis.Enabled {
		log.Infow("redis disabled, using in-memory rate limiting and no stats cache")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warnw("failed to connect to redis, continuing without it", "addr", cfg.Redis.GetAddr(), "error", err)
		_ = client.Close()
		return nil
	}
	log.Infow("redis connection established", "addr", cfg.Redis.GetAddr())
	return client
}

// ============================================================
// Section 2: Messaging - Templates, Dispatcher, Sequences, Inbox
// ============================================================

// initMessaging comes before CRM and payments: both fire sequence triggers and
// send templated email through the dispatcher.
func (c *Container) initMessaging() {
	log := c.log
	r := c.repos
	s := c.svcs

	s.dispatcher = messagingApp.NewDispatcher(r.templateRepo, r.contactRepo, s.mailer, s.markdown, log)
	s.templates = messagingApp.NewTemplateService(r.templateRepo, s.markdown, log)
	s.sequences = messagingApp.NewSequenceService(r.sequenceRepo, r.enrollmentRepo, r.templateRepo, r.contactRepo, log)
	s.processSequences = messagingApp.NewProcessSequencesUseCase(r.sequenceRepo, r.enrollmentRepo, s.dispatcher, log)
	s.social = messagingApp.NewSocialService(r.socialRepo, r.contactRepo, log)
}

// ============================================================
// Section 3: CRM - Contacts, Leads, Deals, Catalog
// ============================================================

func (c *Container) initCRM() {
	currency := c.cfg.Payment.Currency
	log := c.log
	r := c.repos
	s := c.svcs

	s.contacts = crmApp.NewContactService(r.contactRepo, log)
	s.leads = crmApp.NewLeadService(r.leadRepo, s.contacts, s.sequences, currency, log)
	s.deals = crmApp.NewDealService(r.dealRepo, r.contactRepo, currency, log)
	s.products = catalog.NewProductService(r.productRepo, currency, log)
}

// ============================================================
// Section 4: Payments - Gateways, Settlement, Invoices, Billing
// ============================================================

func (c *Container) initPayments() {
	pc := c.cfg.Payment
	log := c.log
	r := c.repos
	s := c.svcs

	s.invoices = invoiceApp.NewService(r.invoiceRepo, r.paymentRepo, s.dispatcher, vatPercent(pc.VATPercent, log), log)

	s.settlement = paymentUsecases.NewSettlement(r.paymentRepo, r.dealRepo, r.planRepo, r.reminderRepo, s.contacts, log)
	s.settlement.SetInvoiceIssuer(s.invoices, pc.AutoInvoice)
	s.settlement.SetSequenceTrigger(s.sequences)

	s.createPayment = paymentUsecases.NewCreatePaymentUseCase(
		r.paymentRepo, r.contactRepo, r.dealRepo, r.planRepo,
		s.gateways, s.settlement, pc.Currency, pc.NotifyBaseURL, log,
	)
	s.getPayment = paymentUsecases.NewGetPaymentUseCase(r.paymentRepo, log)
	s.listPayments = paymentUsecases.NewListPaymentsUseCase(r.paymentRepo, log)
	s.refundPayment = paymentUsecases.NewRefundPaymentUseCase(r.paymentRepo, s.gateways, s.settlement, log)
	s.cancelPayment = paymentUsecases.NewCancelPaymentUseCase(r.paymentRepo, log)
	s.handleWebhook = paymentUsecases.NewHandleWebhookUseCase(r.paymentRepo, r.webhookRepo, s.gateways, s.txManager, s.settlement, log)
	s.expirePending = paymentUsecases.NewExpirePendingPaymentsUseCase(r.paymentRepo, hours(pc.PendingTTLHours, 48), log)

	s.plans = billingApp.NewPlanService(r.planRepo, r.reminderRepo, r.contactRepo, s.txManager, pc.Currency, pc.RemindDaysBefore, log)
	s.recurring = billingApp.NewRecurringService(r.recurringRepo, r.contactRepo, pc.Currency, pc.DefaultGateway, log)
	s.reminders = billingApp.NewReminderService(r.reminderRepo, log)
	s.processRecurring = billingApp.NewProcessDueRecurringUseCase(r.recurringRepo, r.reminderRepo, s.createPayment, billingApp.RecurringPolicy{
		RetryDelay:  hours(pc.RetryDelayHours, 24),
		MaxAttempts: pc.MaxFailedAttempts,
	}, log)
	s.sendReminders = billingApp.NewSendDueRemindersUseCase(r.reminderRepo, s.dispatcher, log)
}

func vatPercent(raw string, log logger.Interface) decimal.Decimal {
	v, err := decimal.NewFromString(raw)
	if err != nil || v.IsNegative() {
		log.Warnw("invalid payment.vat_percent, using default", "value", raw, "default", defaultVATPercent)
		return decimal.NewFromInt(defaultVATPercent)
	}
	return v
}

func hours(v, fallback int) time.Duration {
	if v <= 0 {
		v = fallback
	}
	return time.Duration(v) * time.Hour
}

// ============================================================
// Section 5: Dashboards & Admin Auth
// ============================================================

func (c *Container) initStatsAndAuth() {
	cfg := c.cfg
	log := c.log
	s := c.svcs

	var statsCache statsApp.Cache
	if c.redis != nil {
		statsCache = cache.NewRedisJSONCache(c.redis)
	}
	s.stats = statsApp.NewService(c.repos.statsRepo, statsCache, statsCacheTTL, cfg.Payment.Currency, log)

	if cfg.Auth.Admin.PasswordHash == "" {
		log.Warnw("auth.admin.password_hash is empty, admin login is disabled")
	}
	s.login = authApp.NewLoginUseCase(
		cfg.Auth.Admin.Email,
		cfg.Auth.Admin.PasswordHash,
		auth.NewBcryptPasswordHasher(bcrypt.DefaultCost),
		s.jwt,
		log,
	)
}
