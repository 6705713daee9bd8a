package http

import (
	"gorm.io/gorm"

	"github.com/kesher-io/kesher/internal/infrastructure/repository"
)

// repositories holds every repository instance used by the container.
type repositories struct {
	contactRepo    *repository.ContactRepository
	leadRepo       *repository.LeadRepository
	dealRepo       *repository.DealRepository
	productRepo    *repository.ProductRepository
	paymentRepo    *repository.PaymentRepository
	webhookRepo    *repository.WebhookEventRepository
	invoiceRepo    *repository.InvoiceRepository
	planRepo       *repository.PaymentPlanRepository
	recurringRepo  *repository.RecurringPaymentRepository
	reminderRepo   *repository.ReminderRepository
	templateRepo   *repository.MessageTemplateRepository
	sequenceRepo   *repository.EmailSequenceRepository
	enrollmentRepo *repository.EnrollmentRepository
	socialRepo     *repository.SocialMessageRepository
	statsRepo      *repository.StatsRepository
}

// newRepositories creates all repository instances from the database connection.
func newRepositories(db *gorm.DB, currency string) *repositories {
	return &repositories{
		contactRepo:    repository.NewContactRepository(db),
		leadRepo:       repository.NewLeadRepository(db),
		dealRepo:       repository.NewDealRepository(db),
		productRepo:    repository.NewProductRepository(db),
		paymentRepo:    repository.NewPaymentRepository(db),
		webhookRepo:    repository.NewWebhookEventRepository(db),
		invoiceRepo:    repository.NewInvoiceRepository(db),
		planRepo:       repository.NewPaymentPlanRepository(db),
		recurringRepo:  repository.NewRecurringPaymentRepository(db),
		reminderRepo:   repository.NewReminderRepository(db),
		templateRepo:   repository.NewMessageTemplateRepository(db),
		sequenceRepo:   repository.NewEmailSequenceRepository(db),
		enrollmentRepo: repository.NewEnrollmentRepository(db),
		socialRepo:     repository.NewSocialMessageRepository(db),
		statsRepo:      repository.NewStatsRepository(db, currency),
	}
}
