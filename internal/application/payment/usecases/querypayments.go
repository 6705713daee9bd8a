package usecases

import (
	"context"
	"time"

	commondto "github.com/kesher-io/kesher/internal/application/common/dto"
	"github.com/kesher-io/kesher/internal/domain/payment"
	vo "github.com/kesher-io/kesher/internal/domain/payment/valueobjects"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

type GetPaymentUseCase struct {
	paymentRepo payment.PaymentRepository
	logger      logger.Interface
}

func NewGetPaymentUseCase(paymentRepo payment.PaymentRepository, logger logger.Interface) *GetPaymentUseCase {
	return &GetPaymentUseCase{paymentRepo: paymentRepo, logger: logger}
}

func (uc *GetPaymentUseCase) Execute(ctx context.Context, id uint) (*PaymentDTO, error) {
	p, err := uc.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToPaymentDTO(p), nil
}

func (uc *GetPaymentUseCase) ByReference(ctx context.Context, reference string) (*PaymentDTO, error) {
	p, err := uc.paymentRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	return ToPaymentDTO(p), nil
}

type ListPaymentsQuery struct {
	Status    string
	ContactID uint
	DealID    uint
	Gateway   string
	From      time.Time
	To        time.Time
	Page      int
	PageSize  int
}

type ListPaymentsUseCase struct {
	paymentRepo payment.PaymentRepository
	logger      logger.Interface
}

func NewListPaymentsUseCase(paymentRepo payment.PaymentRepository, logger logger.Interface) *ListPaymentsUseCase {
	return &ListPaymentsUseCase{paymentRepo: paymentRepo, logger: logger}
}

func (uc *ListPaymentsUseCase) Execute(ctx context.Context, q ListPaymentsQuery) (*commondto.ListResult[*PaymentDTO], error) {
	filter := payment.Filter{
		ContactID: q.ContactID,
		DealID:    q.DealID,
		Gateway:   q.Gateway,
		From:      q.From,
		To:        q.To,
	}
	if q.Status != "" {
		status, err := vo.NewPaymentStatus(q.Status)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid payment status", q.Status)
		}
		filter.Status = status
	}
	pg := utils.NormalizePagination(q.Page, q.PageSize)
	filter.Page, filter.PageSize = pg.Page, pg.PageSize

	payments, total, err := uc.paymentRepo.List(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to list payments", "error", err)
		return nil, err
	}

	items := make([]*PaymentDTO, 0, len(payments))
	for _, p := range payments {
		items = append(items, ToPaymentDTO(p))
	}
	return &commondto.ListResult[*PaymentDTO]{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}
