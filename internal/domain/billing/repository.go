package billing

import (
	"context"
	"time"
)

type PlanFilter struct {
	Status    PlanStatus
	ContactID uint
	Page      int
	PageSize  int
}

type PaymentPlanRepository interface {
	// Create stores the plan together with its installments.
	Create(ctx context.Context, plan *PaymentPlan) error
	// Update saves the plan status and every installment.
	Update(ctx context.Context, plan *PaymentPlan) error
	GetByID(ctx context.Context, id uint) (*PaymentPlan, error)
	GetByInstallmentID(ctx context.Context, installmentID uint) (*PaymentPlan, error)
	List(ctx context.Context, filter PlanFilter) ([]*PaymentPlan, int64, error)
}

type RecurringFilter struct {
	Status    RecurringStatus
	ContactID uint
	Page      int
	PageSize  int
}

type RecurringPaymentRepository interface {
	Create(ctx context.Context, r *RecurringPayment) error
	Update(ctx context.Context, r *RecurringPayment) error
	GetByID(ctx context.Context, id uint) (*RecurringPayment, error)
	List(ctx context.Context, filter RecurringFilter) ([]*RecurringPayment, int64, error)
	// ListDue returns active recurring payments whose next attempt is at or before now.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*RecurringPayment, error)
}

type ReminderFilter struct {
	Status    ReminderStatus
	Kind      ReminderKind
	ContactID uint
	Page      int
	PageSize  int
}

type ReminderRepository interface {
	Create(ctx context.Context, r *Reminder) error
	CreateBatch(ctx context.Context, reminders []*Reminder) error
	Update(ctx context.Context, r *Reminder) error
	GetByID(ctx context.Context, id uint) (*Reminder, error)
	List(ctx context.Context, filter ReminderFilter) ([]*Reminder, int64, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]*Reminder, error)
	// CancelPendingForInstallment cancels reminders that became moot once the installment was paid.
	CancelPendingForInstallment(ctx context.Context, installmentID uint) error
}
