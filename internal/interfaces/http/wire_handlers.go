package http

import (
	"fmt"

	"github.com/kesher-io/kesher/internal/interfaces/http/handlers"
	billingHandlers "github.com/kesher-io/kesher/internal/interfaces/http/handlers/billing"
	crmHandlers "github.com/kesher-io/kesher/internal/interfaces/http/handlers/crm"
	"github.com/kesher-io/kesher/internal/interfaces/http/handlers/marketing"
	messagingHandlers "github.com/kesher-io/kesher/internal/interfaces/http/handlers/messaging"
	paymentHandlers "github.com/kesher-io/kesher/internal/interfaces/http/handlers/payment"
)

const siteTagline = "Courses, workshops and mentoring"

type allHandlers struct {
	health  *handlers.HealthHandler
	auth    *handlers.AuthHandler
	public  *handlers.PublicHandler
	product *handlers.ProductHandler
	stats   *handlers.StatsHandler
	pages   *marketing.PageHandler

	contact *crmHandlers.ContactHandler
	lead    *crmHandlers.LeadHandler
	deal    *crmHandlers.DealHandler

	payment *paymentHandlers.PaymentHandler
	invoice *paymentHandlers.InvoiceHandler
	webhook *paymentHandlers.WebhookHandler

	plan      *billingHandlers.PlanHandler
	recurring *billingHandlers.RecurringHandler
	reminder  *billingHandlers.ReminderHandler

	template *messagingHandlers.TemplateHandler
	sequence *messagingHandlers.SequenceHandler
	social   *messagingHandlers.SocialHandler
}

// ============================================================
// Section 6: Handlers
// ============================================================

func (c *Container) initHandlers() error {
	log := c.log
	s := c.svcs

	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	pages, err := marketing.NewPageHandler(s.products, s.markdown, marketing.Site{
		Name:         c.cfg.Email.FromName,
		Tagline:      siteTagline,
		BaseURL:      c.cfg.Server.BaseURL,
		ContactEmail: c.cfg.Email.FromAddress,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to load page templates: %w", err)
	}

	c.hdlrs = &allHandlers{
		health:  handlers.NewHealthHandler(sqlDB, log),
		auth:    handlers.NewAuthHandler(s.login, log),
		public:  handlers.NewPublicHandler(s.leads, log),
		product: handlers.NewProductHandler(s.products, log),
		stats:   handlers.NewStatsHandler(s.stats, log),
		pages:   pages,

		contact: crmHandlers.NewContactHandler(s.contacts, log),
		lead:    crmHandlers.NewLeadHandler(s.leads, log),
		deal:    crmHandlers.NewDealHandler(s.deals, log),

		payment: paymentHandlers.NewPaymentHandler(s.createPayment, s.getPayment, s.listPayments, s.refundPayment, s.cancelPayment, log),
		invoice: paymentHandlers.NewInvoiceHandler(s.invoices, log),
		webhook: paymentHandlers.NewWebhookHandler(s.handleWebhook, log),

		plan:      billingHandlers.NewPlanHandler(s.plans, log),
		recurring: billingHandlers.NewRecurringHandler(s.recurring, s.processRecurring, log),
		reminder:  billingHandlers.NewReminderHandler(s.reminders, s.sendReminders, log),

		template: messagingHandlers.NewTemplateHandler(s.templates, log),
		sequence: messagingHandlers.NewSequenceHandler(s.sequences, s.processSequences, log),
		social:   messagingHandlers.NewSocialHandler(s.social, log),
	}
	return nil
}
