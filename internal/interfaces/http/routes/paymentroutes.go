package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/kesher-io/kesher/internal/interfaces/http/handlers/billing"
	"github.com/kesher-io/kesher/internal/interfaces/http/handlers/payment"
)

// PaymentRouteConfig holds dependencies for payment, invoice and billing routes.
type PaymentRouteConfig struct {
	PaymentHandler   *payment.PaymentHandler
	InvoiceHandler   *payment.InvoiceHandler
	PlanHandler      *billing.PlanHandler
	RecurringHandler *billing.RecurringHandler
	ReminderHandler  *billing.ReminderHandler
}

// SetupPaymentRoutes registers the money endpoints on an authenticated admin group.
func SetupPaymentRoutes(admin *gin.RouterGroup, cfg *PaymentRouteConfig) {
	payments := admin.Group("/payments")
	{
		payments.GET("", cfg.PaymentHandler.List)
		payments.POST("", cfg.PaymentHandler.Create)
		payments.GET("/reference/:reference", cfg.PaymentHandler.GetByReference)
		payments.GET("/:id", cfg.PaymentHandler.Get)
		payments.POST("/:id/refund", cfg.PaymentHandler.Refund)
		payments.POST("/:id/cancel", cfg.PaymentHandler.Cancel)
		payments.POST("/:id/invoice", cfg.InvoiceHandler.Generate)
	}

	invoices := admin.Group("/invoices")
	{
		invoices.GET("", cfg.InvoiceHandler.List)
		invoices.GET("/:id", cfg.InvoiceHandler.Get)
		invoices.POST("/:id/cancel", cfg.InvoiceHandler.Cancel)
		invoices.POST("/:id/send", cfg.InvoiceHandler.Send)
	}

	plans := admin.Group("/payment-plans")
	{
		// Named endpoints come before /:id.
		plans.GET("/due", cfg.PlanHandler.DueSoon)
		plans.GET("", cfg.PlanHandler.List)
		plans.POST("", cfg.PlanHandler.Create)
		plans.GET("/:id", cfg.PlanHandler.Get)
		plans.POST("/:id/cancel", cfg.PlanHandler.Cancel)
	}

	recurring := admin.Group("/recurring-payments")
	{
		recurring.POST("/run", cfg.RecurringHandler.RunDue)
		recurring.GET("", cfg.RecurringHandler.List)
		recurring.POST("", cfg.RecurringHandler.Create)
		recurring.GET("/:id", cfg.RecurringHandler.Get)
		recurring.POST("/:id/pause", cfg.RecurringHandler.Pause)
		recurring.POST("/:id/resume", cfg.RecurringHandler.Resume)
		recurring.POST("/:id/cancel", cfg.RecurringHandler.Cancel)
		recurring.PUT("/:id/card", cfg.RecurringHandler.UpdateCard)
		recurring.PUT("/:id/amount", cfg.RecurringHandler.UpdateAmount)
	}

	reminders := admin.Group("/reminders")
	{
		reminders.POST("/send", cfg.ReminderHandler.SendDue)
		reminders.GET("", cfg.ReminderHandler.List)
		reminders.POST("/:id/cancel", cfg.ReminderHandler.Cancel)
	}
}
