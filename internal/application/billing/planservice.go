package billing

import (
	"context"
	"time"

	"github.com/kesher-io/kesher/internal/application/common"
	commondto "github.com/kesher-io/kesher/internal/application/common/dto"
	"github.com/kesher-io/kesher/internal/domain/billing"
	"github.com/kesher-io/kesher/internal/domain/contact"
	"github.com/kesher-io/kesher/internal/shared/biztime"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

// TxRunner runs fn inside a single database transaction.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type CreatePlanCommand struct {
	ContactID        uint
	DealID           *uint
	Description      string
	Total            string
	Currency         string
	InstallmentCount int
	Frequency        string
	// StartDate is the first due date, YYYY-MM-DD in business time.
	StartDate string
}

type ListPlansQuery struct {
	Status    string
	ContactID uint
	Page      int
	PageSize  int
}

type PlanService struct {
	planRepo         billing.PaymentPlanRepository
	reminderRepo     billing.ReminderRepository
	contactRepo      contact.Repository
	tx               TxRunner
	currency         string
	remindDaysBefore int
	logger           logger.Interface
}

func NewPlanService(
	planRepo billing.PaymentPlanRepository,
	reminderRepo billing.ReminderRepository,
	contactRepo contact.Repository,
	tx TxRunner,
	currency string,
	remindDaysBefore int,
	logger logger.Interface,
) *PlanService {
	return &PlanService{
		planRepo:         planRepo,
		reminderRepo:     reminderRepo,
		contactRepo:      contactRepo,
		tx:               tx,
		currency:         currency,
		remindDaysBefore: remindDaysBefore,
		logger:           logger,
	}
}

// Create stores the plan and queues one due reminder per installment.
func (s *PlanService) Create(ctx context.Context, cmd CreatePlanCommand) (*PaymentPlanDTO, error) {
	if _, err := s.contactRepo.GetByID(ctx, cmd.ContactID); err != nil {
		return nil, err
	}
	currency := cmd.Currency
	if currency == "" {
		currency = s.currency
	}
	total, err := common.ParseAmount(cmd.Total, currency, "total")
	if err != nil {
		return nil, err
	}
	start, err := biztime.ParseDate(cmd.StartDate)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid start date", cmd.StartDate)
	}

	plan, err := billing.NewPaymentPlan(billing.NewPaymentPlanParams{
		ContactID:        cmd.ContactID,
		DealID:           cmd.DealID,
		Description:      cmd.Description,
		Total:            total,
		InstallmentCount: cmd.InstallmentCount,
		Frequency:        billing.Frequency(cmd.Frequency),
		StartDate:        start,
	})
	if err != nil {
		return nil, common.ValidationError(err)
	}

	err = s.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := s.planRepo.Create(txCtx, plan); err != nil {
			return err
		}
		reminders, err := s.installmentReminders(plan)
		if err != nil {
			return err
		}
		return s.reminderRepo.CreateBatch(txCtx, reminders)
	})
	if err != nil {
		s.logger.Errorw("failed to create payment plan", "error", err, "contact_id", cmd.ContactID)
		return nil, err
	}

	s.logger.Infow("payment plan created",
		"plan_id", plan.ID(),
		"contact_id", plan.ContactID(),
		"installments", plan.InstallmentCount(),
		"total", plan.Total().String(),
	)
	return ToPaymentPlanDTO(plan), nil
}

func (s *PlanService) installmentReminders(plan *billing.PaymentPlan) ([]*billing.Reminder, error) {
	now := biztime.NowUTC()
	planID := plan.ID()
	reminders := make([]*billing.Reminder, 0, len(plan.Installments()))
	for _, inst := range plan.Installments() {
		remindAt := inst.DueDate.AddDate(0, 0, -s.remindDaysBefore)
		if remindAt.Before(now) {
			remindAt = now
		}
		instID := inst.ID
		due := inst.DueDate
		r, err := billing.NewReminder(billing.NewReminderParams{
			ContactID:     plan.ContactID(),
			Kind:          billing.ReminderInstallmentDue,
			PlanID:        &planID,
			InstallmentID: &instID,
			Amount:        inst.Amount,
			DueDate:       &due,
			RemindAt:      remindAt,
		})
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, r)
	}
	return reminders, nil
}

func (s *PlanService) Get(ctx context.Context, id uint) (*PaymentPlanDTO, error) {
	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToPaymentPlanDTO(plan), nil
}

func (s *PlanService) List(ctx context.Context, q ListPlansQuery) (*commondto.ListResult[*PaymentPlanDTO], error) {
	filter := billing.PlanFilter{Status: billing.PlanStatus(q.Status), ContactID: q.ContactID}
	pg := utils.NormalizePagination(q.Page, q.PageSize)
	filter.Page, filter.PageSize = pg.Page, pg.PageSize

	plans, total, err := s.planRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]*PaymentPlanDTO, 0, len(plans))
	for _, p := range plans {
		items = append(items, ToPaymentPlanDTO(p))
	}
	return &commondto.ListResult[*PaymentPlanDTO]{Items: items, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

// Cancel stops the plan and drops the reminders of its open installments.
func (s *PlanService) Cancel(ctx context.Context, id uint) (*PaymentPlanDTO, error) {
	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var open []uint
	for _, inst := range plan.Installments() {
		if inst.Status == billing.InstallmentStatusPending {
			open = append(open, inst.ID)
		}
	}
	if err := plan.Cancel(); err != nil {
		return nil, apperrors.NewConflictError(err.Error())
	}

	err = s.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := s.planRepo.Update(txCtx, plan); err != nil {
			return err
		}
		for _, instID := range open {
			if err := s.reminderRepo.CancelPendingForInstallment(txCtx, instID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infow("payment plan cancelled", "plan_id", plan.ID(), "open_installments", len(open))
	return ToPaymentPlanDTO(plan), nil
}

// DueSoon lists pending installments due before the given horizon, for the dashboard.
func (s *PlanService) DueSoon(ctx context.Context, within time.Duration) ([]*InstallmentDTO, error) {
	plans, _, err := s.planRepo.List(ctx, billing.PlanFilter{Status: billing.PlanStatusActive})
	if err != nil {
		return nil, err
	}
	horizon := biztime.NowUTC().Add(within)
	var out []*InstallmentDTO
	for _, p := range plans {
		for _, inst := range ToPaymentPlanDTO(p).Installments {
			if inst.Status == string(billing.InstallmentStatusPending) && !inst.DueDate.After(horizon) {
				out = append(out, inst)
			}
		}
	}
	return out, nil
}
