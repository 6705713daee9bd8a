package billing

import (
	"context"
	"time"

	appbilling "github.com/kesher-io/kesher/internal/application/billing"
	commondto "github.com/kesher-io/kesher/internal/application/common/dto"
)

type planService interface {
	Create(ctx context.Context, cmd appbilling.CreatePlanCommand) (*appbilling.PaymentPlanDTO, error)
	Get(ctx context.Context, id uint) (*appbilling.PaymentPlanDTO, error)
	List(ctx context.Context, q appbilling.ListPlansQuery) (*commondto.ListResult[*appbilling.PaymentPlanDTO], error)
	Cancel(ctx context.Context, id uint) (*appbilling.PaymentPlanDTO, error)
	DueSoon(ctx context.Context, within time.Duration) ([]*appbilling.InstallmentDTO, error)
}

type recurringService interface {
	Create(ctx context.Context, cmd appbilling.CreateRecurringCommand) (*appbilling.RecurringPaymentDTO, error)
	Get(ctx context.Context, id uint) (*appbilling.RecurringPaymentDTO, error)
	List(ctx context.Context, q appbilling.ListRecurringQuery) (*commondto.ListResult[*appbilling.RecurringPaymentDTO], error)
	Pause(ctx context.Context, id uint) (*appbilling.RecurringPaymentDTO, error)
	Resume(ctx context.Context, id uint) (*appbilling.RecurringPaymentDTO, error)
	Cancel(ctx context.Context, id uint) (*appbilling.RecurringPaymentDTO, error)
	UpdateCard(ctx context.Context, id uint, token, expiry string) (*appbilling.RecurringPaymentDTO, error)
	UpdateAmount(ctx context.Context, id uint, amount string) (*appbilling.RecurringPaymentDTO, error)
}

type processRecurringUseCase interface {
	Execute(ctx context.Context) (*appbilling.ProcessResult, error)
}

type reminderService interface {
	List(ctx context.Context, q appbilling.ListRemindersQuery) (*commondto.ListResult[*appbilling.ReminderDTO], error)
	Cancel(ctx context.Context, id uint) (*appbilling.ReminderDTO, error)
}

type sendRemindersUseCase interface {
	Execute(ctx context.Context) (*appbilling.SendResult, error)
}
