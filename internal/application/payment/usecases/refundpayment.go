package usecases

import (
	"context"

	"github.com/kesher-io/kesher/internal/application/common"
	"github.com/kesher-io/kesher/internal/application/payment/paymentgateway"
	"github.com/kesher-io/kesher/internal/domain/payment"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

type RefundPaymentCommand struct {
	PaymentID uint
	// Amount in major units; empty refunds everything still refundable.
	Amount string
	Reason string
}

type RefundPaymentUseCase struct {
	paymentRepo payment.PaymentRepository
	gateways    GatewayResolver
	settlement  *Settlement
	logger      logger.Interface
}

func NewRefundPaymentUseCase(
	paymentRepo payment.PaymentRepository,
	gateways GatewayResolver,
	settlement *Settlement,
	logger logger.Interface,
) *RefundPaymentUseCase {
	return &RefundPaymentUseCase{
		paymentRepo: paymentRepo,
		gateways:    gateways,
		settlement:  settlement,
		logger:      logger,
	}
}

func (uc *RefundPaymentUseCase) Execute(ctx context.Context, cmd RefundPaymentCommand) (*PaymentDTO, error) {
	p, err := uc.paymentRepo.GetByID(ctx, cmd.PaymentID)
	if err != nil {
		return nil, err
	}

	refundable := p.Refundable()
	if !refundable.IsPositive() {
		return nil, apperrors.NewConflictError("payment has nothing left to refund", p.Status().String())
	}

	amount, err := common.ParseAmount(cmd.Amount, p.Amount().Currency(), "amount")
	if err != nil {
		return nil, err
	}
	if amount.IsZero() {
		amount = refundable
	}
	if amount.GreaterThan(refundable) {
		return nil, apperrors.NewValidationError("refund exceeds refundable amount", refundable.String())
	}

	gw, err := uc.gateways.Get(p.Gateway())
	if err != nil {
		return nil, err
	}

	result, err := gw.RefundPayment(ctx, paymentgateway.RefundRequest{
		Reference:     p.Reference(),
		TransactionID: p.TransactionID(),
		Amount:        amount,
	})
	if err != nil {
		uc.logger.Errorw("gateway refund failed", "error", err, "payment_id", p.ID(), "gateway", gw.Name())
		return nil, apperrors.NewGatewayError("refund failed", err.Error())
	}
	if !result.Approved {
		uc.logger.Warnw("gateway declined refund", "payment_id", p.ID(), "message", result.Message)
		return nil, apperrors.NewGatewayError("refund declined", result.Message)
	}

	if err := p.Refund(amount); err != nil {
		return nil, common.ValidationError(err)
	}
	p.SetMetadata("last_refund_id", result.RefundID)
	if cmd.Reason != "" {
		p.SetMetadata("last_refund_reason", cmd.Reason)
	}
	if err := uc.paymentRepo.Update(ctx, p); err != nil {
		uc.logger.Errorw("failed to store refund", "error", err, "payment_id", p.ID(), "refund_id", result.RefundID)
		return nil, err
	}

	uc.logger.Infow("payment refunded",
		"payment_id", p.ID(),
		"amount", amount.String(),
		"status", p.Status(),
	)
	uc.settlement.OnRefunded(ctx, p)
	return ToPaymentDTO(p), nil
}
