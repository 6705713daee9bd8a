package billing

import (
	"context"

	commondto "github.com/kesher-io/kesher/internal/application/common/dto"
	"github.com/kesher-io/kesher/internal/domain/billing"
	"github.com/kesher-io/kesher/internal/shared/biztime"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

const reminderBatchSize = 100

// TemplateSender renders a stored message template and emails it to a contact.
type TemplateSender interface {
	SendTemplate(ctx context.Context, templateName string, contactID uint, vars map[string]string) error
}

type SendResult struct {
	Sent   int
	Failed int
}

type SendDueRemindersUseCase struct {
	repo   billing.ReminderRepository
	sender TemplateSender
	logger logger.Interface
}

func NewSendDueRemindersUseCase(repo billing.ReminderRepository, sender TemplateSender, logger logger.Interface) *SendDueRemindersUseCase {
	return &SendDueRemindersUseCase{repo: repo, sender: sender, logger: logger}
}

// Execute emails every pending reminder whose time has come. A reminder that
// keeps failing is given up after billing.MaxReminderAttempts.
func (uc *SendDueRemindersUseCase) Execute(ctx context.Context) (*SendResult, error) {
	now := biztime.NowUTC()
	due, err := uc.repo.ListDue(ctx, now, reminderBatchSize)
	if err != nil {
		uc.logger.Errorw("failed to list due reminders", "error", err)
		return nil, err
	}

	result := &SendResult{}
	for _, r := range due {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if err := uc.sender.SendTemplate(ctx, r.Kind().TemplateName(), r.ContactID(), reminderVars(r)); err != nil {
			r.RecordFailure(err.Error())
			result.Failed++
			uc.logger.Warnw("failed to send reminder",
				"reminder_id", r.ID(),
				"kind", r.Kind(),
				"attempts", r.Attempts(),
				"error", err,
			)
		} else {
			r.MarkSent(now)
			result.Sent++
		}
		if err := uc.repo.Update(ctx, r); err != nil {
			uc.logger.Errorw("failed to save reminder", "error", err, "reminder_id", r.ID())
		}
	}

	if len(due) > 0 {
		uc.logger.Infow("reminders processed", "sent", result.Sent, "failed", result.Failed)
	}
	return result, nil
}

func reminderVars(r *billing.Reminder) map[string]string {
	vars := map[string]string{
		"Amount": r.Amount().String(),
		"Kind":   string(r.Kind()),
	}
	if r.DueDate() != nil {
		vars["DueDate"] = biztime.Format(*r.DueDate(), "02/01/2006")
	}
	return vars
}

type ListRemindersQuery struct {
	Status    string
	Kind      string
	ContactID uint
	Page      int
	PageSize  int
}

type ReminderService struct {
	repo   billing.ReminderRepository
	logger logger.Interface
}

func NewReminderService(repo billing.ReminderRepository, logger logger.Interface) *ReminderService {
	return &ReminderService{repo: repo, logger: logger}
}

func (s *ReminderService) List(ctx context.Context, q ListRemindersQuery) (*commondto.ListResult[*ReminderDTO], error) {
	filter := billing.ReminderFilter{
		Status:    billing.ReminderStatus(q.Status),
		ContactID: q.ContactID,
	}
	if q.Kind != "" {
		kind := billing.ReminderKind(q.Kind)
		if !kind.IsValid() {
			return nil, apperrors.NewValidationError("invalid reminder kind", q.Kind)
		}
		filter.Kind = kind
	}
	pg := utils.NormalizePagination(q.Page, q.PageSize)
	filter.Page, filter.PageSize = pg.Page, pg.PageSize

	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]*ReminderDTO, 0, len(list))
	for _, r := range list {
		items = append(items, ToReminderDTO(r))
	}
	return &commondto.ListResult[*ReminderDTO]{Items: items, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (s *ReminderService) Cancel(ctx context.Context, id uint) (*ReminderDTO, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.Cancel(); err != nil {
		return nil, apperrors.NewConflictError(err.Error())
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	s.logger.Infow("reminder cancelled", "reminder_id", r.ID())
	return ToReminderDTO(r), nil
}
