package usecases

import (
	"context"

	"github.com/kesher-io/kesher/internal/domain/payment"
	vo "github.com/kesher-io/kesher/internal/domain/payment/valueobjects"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

type CancelPaymentUseCase struct {
	paymentRepo payment.PaymentRepository
	logger      logger.Interface
}

func NewCancelPaymentUseCase(paymentRepo payment.PaymentRepository, logger logger.Interface) *CancelPaymentUseCase {
	return &CancelPaymentUseCase{paymentRepo: paymentRepo, logger: logger}
}

// Execute cancels a payment that is still waiting for the customer.
func (uc *CancelPaymentUseCase) Execute(ctx context.Context, id uint, reason string) (*PaymentDTO, error) {
	p, err := uc.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status() != vo.PaymentStatusPending {
		return nil, apperrors.NewConflictError("only pending payments can be cancelled", p.Status().String())
	}
	if reason == "" {
		reason = "cancelled by admin"
	}
	if err := p.Cancel(reason); err != nil {
		return nil, apperrors.NewConflictError(err.Error())
	}
	if err := uc.paymentRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	uc.logger.Infow("payment cancelled", "payment_id", p.ID(), "reason", reason)
	return ToPaymentDTO(p), nil
}
