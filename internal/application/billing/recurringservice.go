package billing

import (
	"context"

	"github.com/kesher-io/kesher/internal/application/common"
	commondto "github.com/kesher-io/kesher/internal/application/common/dto"
	"github.com/kesher-io/kesher/internal/domain/billing"
	"github.com/kesher-io/kesher/internal/domain/contact"
	"github.com/kesher-io/kesher/internal/shared/biztime"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

type CreateRecurringCommand struct {
	ContactID   uint
	ProductID   *uint
	Description string
	Amount      string
	Currency    string
	Frequency   string
	StartDate   string
	EndDate     string
	MaxCharges  *int
	Gateway     string
	CardToken   string
	CardExpiry  string
}

type ListRecurringQuery struct {
	Status    string
	ContactID uint
	Page      int
	PageSize  int
}

type RecurringService struct {
	repo           billing.RecurringPaymentRepository
	contactRepo    contact.Repository
	currency       string
	defaultGateway string
	logger         logger.Interface
}

func NewRecurringService(
	repo billing.RecurringPaymentRepository,
	contactRepo contact.Repository,
	currency string,
	defaultGateway string,
	logger logger.Interface,
) *RecurringService {
	return &RecurringService{
		repo:           repo,
		contactRepo:    contactRepo,
		currency:       currency,
		defaultGateway: defaultGateway,
		logger:         logger,
	}
}

func (s *RecurringService) Create(ctx context.Context, cmd CreateRecurringCommand) (*RecurringPaymentDTO, error) {
	if _, err := s.contactRepo.GetByID(ctx, cmd.ContactID); err != nil {
		return nil, err
	}
	currency := cmd.Currency
	if currency == "" {
		currency = s.currency
	}
	amount, err := common.ParseAmount(cmd.Amount, currency, "amount")
	if err != nil {
		return nil, err
	}
	start, err := biztime.ParseDate(cmd.StartDate)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid start date", cmd.StartDate)
	}
	params := billing.NewRecurringPaymentParams{
		ContactID:   cmd.ContactID,
		ProductID:   cmd.ProductID,
		Description: cmd.Description,
		Amount:      amount,
		Frequency:   billing.Frequency(cmd.Frequency),
		StartDate:   start,
		MaxCharges:  cmd.MaxCharges,
		Gateway:     cmd.Gateway,
		CardToken:   cmd.CardToken,
		CardExpiry:  cmd.CardExpiry,
	}
	if params.Gateway == "" {
		params.Gateway = s.defaultGateway
	}
	if cmd.EndDate != "" {
		end, err := biztime.ParseDate(cmd.EndDate)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid end date", cmd.EndDate)
		}
		params.EndDate = &end
	}

	r, err := billing.NewRecurringPayment(params)
	if err != nil {
		return nil, common.ValidationError(err)
	}
	if err := s.repo.Create(ctx, r); err != nil {
		s.logger.Errorw("failed to create recurring payment", "error", err, "contact_id", cmd.ContactID)
		return nil, err
	}
	s.logger.Infow("recurring payment created",
		"recurring_id", r.ID(),
		"contact_id", r.ContactID(),
		"amount", r.Amount().String(),
		"frequency", r.Frequency(),
	)
	return ToRecurringPaymentDTO(r), nil
}

func (s *RecurringService) Get(ctx context.Context, id uint) (*RecurringPaymentDTO, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToRecurringPaymentDTO(r), nil
}

func (s *RecurringService) List(ctx context.Context, q ListRecurringQuery) (*commondto.ListResult[*RecurringPaymentDTO], error) {
	filter := billing.RecurringFilter{ContactID: q.ContactID}
	if q.Status != "" {
		status := billing.RecurringStatus(q.Status)
		if !status.IsValid() {
			return nil, apperrors.NewValidationError("invalid recurring status", q.Status)
		}
		filter.Status = status
	}
	pg := utils.NormalizePagination(q.Page, q.PageSize)
	filter.Page, filter.PageSize = pg.Page, pg.PageSize

	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]*RecurringPaymentDTO, 0, len(list))
	for _, r := range list {
		items = append(items, ToRecurringPaymentDTO(r))
	}
	return &commondto.ListResult[*RecurringPaymentDTO]{Items: items, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (s *RecurringService) Pause(ctx context.Context, id uint) (*RecurringPaymentDTO, error) {
	return s.mutate(ctx, id, "paused", (*billing.RecurringPayment).Pause)
}

func (s *RecurringService) Resume(ctx context.Context, id uint) (*RecurringPaymentDTO, error) {
	return s.mutate(ctx, id, "resumed", func(r *billing.RecurringPayment) error {
		return r.Resume(biztime.NowUTC())
	})
}

func (s *RecurringService) Cancel(ctx context.Context, id uint) (*RecurringPaymentDTO, error) {
	return s.mutate(ctx, id, "cancelled", (*billing.RecurringPayment).Cancel)
}

func (s *RecurringService) UpdateCard(ctx context.Context, id uint, token, expiry string) (*RecurringPaymentDTO, error) {
	dto, err := s.mutate(ctx, id, "card updated", func(r *billing.RecurringPayment) error {
		if err := r.UpdateCard(token, expiry); err != nil {
			return apperrors.NewValidationError(err.Error())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infow("recurring card replaced", "id", id, "card", utils.MaskToken(token), "expiry", expiry)
	return dto, nil
}

func (s *RecurringService) UpdateAmount(ctx context.Context, id uint, amount string) (*RecurringPaymentDTO, error) {
	return s.mutate(ctx, id, "amount updated", func(r *billing.RecurringPayment) error {
		m, err := common.ParseAmount(amount, r.Amount().Currency(), "amount")
		if err != nil {
			return err
		}
		if err := r.UpdateAmount(m); err != nil {
			return apperrors.NewValidationError(err.Error())
		}
		return nil
	})
}

func (s *RecurringService) mutate(ctx context.Context, id uint, action string, fn func(*billing.RecurringPayment) error) (*RecurringPaymentDTO, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(r); err != nil {
		if apperrors.GetAppError(err) != nil {
			return nil, err
		}
		return nil, apperrors.NewConflictError(err.Error())
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	s.logger.Infow("recurring payment "+action, "recurring_id", r.ID(), "status", r.Status())
	return ToRecurringPaymentDTO(r), nil
}
