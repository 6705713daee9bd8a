package constants

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"

	ContextKeyAdminEmail = "admin_email"
	ContextKeyRequestID  = "request_id"

	// DefaultCurrency is the ISO code stored on money columns when none is given.
	DefaultCurrency = "ILS"

	ErrMsgInternalServerError = "Internal server error occurred"
	ErrMsgValidationFailed    = "Validation failed"
)

// Table names.
const (
	TableContacts            = "contacts"
	TableLeads               = "leads"
	TableDeals               = "deals"
	TableProducts            = "products"
	TablePayments            = "payments"
	TableWebhookEvents       = "webhook_events"
	TableInvoices            = "invoices"
	TablePaymentPlans        = "payment_plans"
	TablePlanInstallments    = "plan_installments"
	TableRecurringPayments   = "recurring_payments"
	TableReminders           = "reminders"
	TableMessageTemplates    = "message_templates"
	TableEmailSequences      = "email_sequences"
	TableSequenceEnrollments = "sequence_enrollments"
	TableSocialMessages      = "social_messages"
)
