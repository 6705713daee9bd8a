package crm

import (
	"context"
	"time"

	"github.com/kesher-io/kesher/internal/application/common"
	commondto "github.com/kesher-io/kesher/internal/application/common/dto"
	"github.com/kesher-io/kesher/internal/application/crm/dto"
	"github.com/kesher-io/kesher/internal/domain/contact"
	"github.com/kesher-io/kesher/internal/domain/deal"
	"github.com/kesher-io/kesher/internal/domain/shared/money"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

type DealService struct {
	repo        deal.Repository
	contactRepo contact.Repository
	currency    string
	logger      logger.Interface
}

func NewDealService(repo deal.Repository, contactRepo contact.Repository, currency string, logger logger.Interface) *DealService {
	return &DealService{repo: repo, contactRepo: contactRepo, currency: currency, logger: logger}
}

type DealCommand struct {
	ContactID         uint
	LeadID            *uint
	ProductID         *uint
	Title             string
	Amount            string
	Discount          string
	Currency          string
	ExpectedCloseDate *time.Time
	Notes             string
}

type ListDealsQuery struct {
	Status    string
	ContactID uint
	Page      int
	PageSize  int
}

func (s *DealService) amounts(cmd DealCommand) (amount, discount money.Money, err error) {
	currency := cmd.Currency
	if currency == "" {
		currency = s.currency
	}
	a, err := common.ParseAmount(cmd.Amount, currency, "amount")
	if err != nil {
		return money.Money{}, money.Money{}, err
	}
	d, err := common.ParseAmount(cmd.Discount, currency, "discount")
	if err != nil {
		return money.Money{}, money.Money{}, err
	}
	return a, d, nil
}

func (s *DealService) Create(ctx context.Context, cmd DealCommand) (*dto.DealDTO, error) {
	if _, err := s.contactRepo.GetByID(ctx, cmd.ContactID); err != nil {
		return nil, err
	}
	amount, discount, err := s.amounts(cmd)
	if err != nil {
		return nil, err
	}
	d, err := deal.NewDeal(deal.NewDealParams{
		ContactID:         cmd.ContactID,
		LeadID:            cmd.LeadID,
		ProductID:         cmd.ProductID,
		Title:             cmd.Title,
		Amount:            amount,
		Discount:          discount,
		ExpectedCloseDate: cmd.ExpectedCloseDate,
		Notes:             cmd.Notes,
	})
	if err != nil {
		return nil, common.ValidationError(err)
	}
	if err := s.repo.Create(ctx, d); err != nil {
		s.logger.Errorw("failed to create deal", "error", err, "contact_id", cmd.ContactID)
		return nil, err
	}
	s.logger.Infow("deal created", "deal_id", d.ID(), "contact_id", d.ContactID(), "final_amount", d.FinalAmount().String())
	return dto.ToDealDTO(d), nil
}

func (s *DealService) Get(ctx context.Context, id uint) (*dto.DealDTO, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.ToDealDTO(d), nil
}

func (s *DealService) List(ctx context.Context, q ListDealsQuery) (*commondto.ListResult[*dto.DealDTO], error) {
	p := utils.NormalizePagination(q.Page, q.PageSize)
	status := deal.Status(q.Status)
	if q.Status != "" && !status.IsValid() {
		return nil, apperrors.NewValidationError("invalid deal status", q.Status)
	}
	deals, total, err := s.repo.List(ctx, deal.Filter{Status: status, ContactID: q.ContactID, Page: p.Page, PageSize: p.PageSize})
	if err != nil {
		return nil, err
	}
	return &commondto.ListResult[*dto.DealDTO]{Items: dto.ToDealDTOs(deals), Total: total, Page: p.Page, PageSize: p.PageSize}, nil
}

func (s *DealService) Update(ctx context.Context, id uint, cmd DealCommand) (*dto.DealDTO, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cmd.Currency == "" {
		cmd.Currency = d.Amount().Currency()
	}
	amount, discount, err := s.amounts(cmd)
	if err != nil {
		return nil, err
	}
	if err := d.UpdateTerms(cmd.Title, amount, discount, cmd.ExpectedCloseDate, cmd.Notes); err != nil {
		return nil, common.ValidationError(err)
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return dto.ToDealDTO(d), nil
}

func (s *DealService) ChangeStatus(ctx context.Context, id uint, status string) (*dto.DealDTO, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := d.ChangeStatus(deal.Status(status)); err != nil {
		return nil, common.ValidationError(err)
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	s.logger.Infow("deal status changed", "deal_id", d.ID(), "status", d.Status())
	return dto.ToDealDTO(d), nil
}

func (s *DealService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}
