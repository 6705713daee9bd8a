package usecases

import (
	"context"
	"errors"
	"net/http"

	"github.com/kesher-io/kesher/internal/application/payment/paymentgateway"
	"github.com/kesher-io/kesher/internal/domain/payment"
	vo "github.com/kesher-io/kesher/internal/domain/payment/valueobjects"
	"github.com/kesher-io/kesher/internal/shared/biztime"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

// latePaymentMetadataKey marks a payment that was captured after it was cancelled or failed.
const latePaymentMetadataKey = "late_payment"

// TxRunner runs fn inside a single database transaction.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type WebhookCommand struct {
	Gateway string
	Header  http.Header
	Body    []byte
}

type WebhookResult struct {
	Reference string
	Status    string
	Duplicate bool
}

type HandleWebhookUseCase struct {
	paymentRepo payment.PaymentRepository
	eventRepo   payment.WebhookEventRepository
	gateways    GatewayResolver
	tx          TxRunner
	settlement  *Settlement
	logger      logger.Interface
}

func NewHandleWebhookUseCase(
	paymentRepo payment.PaymentRepository,
	eventRepo payment.WebhookEventRepository,
	gateways GatewayResolver,
	tx TxRunner,
	settlement *Settlement,
	logger logger.Interface,
) *HandleWebhookUseCase {
	return &HandleWebhookUseCase{
		paymentRepo: paymentRepo,
		eventRepo:   eventRepo,
		gateways:    gateways,
		tx:          tx,
		settlement:  settlement,
		logger:      logger,
	}
}

// Execute verifies and applies one gateway notification. Redelivered events are
// acknowledged without touching the payment. Any error rolls the event record back
// so the gateway retries.
func (uc *HandleWebhookUseCase) Execute(ctx context.Context, cmd WebhookCommand) (*WebhookResult, error) {
	gw, err := uc.gateways.Get(cmd.Gateway)
	if err != nil {
		return nil, apperrors.NewNotFoundError("unknown payment gateway", cmd.Gateway)
	}

	if err := gw.VerifyWebhook(cmd.Header, cmd.Body); err != nil {
		if errors.Is(err, paymentgateway.ErrWebhookUnsupported) {
			return nil, apperrors.NewBadRequestError("gateway does not accept webhooks", gw.Name())
		}
		uc.logger.Warnw("webhook verification failed", "gateway", gw.Name(), "error", err)
		return nil, apperrors.NewUnauthorizedError("invalid webhook signature")
	}

	event, err := gw.ParseWebhook(cmd.Header, cmd.Body)
	if err != nil {
		uc.logger.Warnw("failed to parse webhook", "gateway", gw.Name(), "error", err)
		return nil, apperrors.NewBadRequestError("invalid webhook payload", err.Error())
	}

	if confirmer, ok := gw.(paymentgateway.WebhookConfirmer); ok {
		if err := confirmer.ConfirmWebhook(ctx, event); err != nil {
			uc.logger.Warnw("webhook not confirmed by gateway",
				"gateway", gw.Name(),
				"reference", event.Reference,
				"transaction_id", event.TransactionID,
				"error", err,
			)
			if errors.Is(err, paymentgateway.ErrNotConfirmed) {
				return nil, apperrors.NewUnauthorizedError("webhook not confirmed by gateway")
			}
			return nil, apperrors.NewGatewayError("failed to confirm webhook", err.Error())
		}
	}

	result := &WebhookResult{Reference: event.Reference}
	var (
		settled  *payment.Payment
		refunded *payment.Payment
	)

	err = uc.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		fresh, err := uc.eventRepo.Record(txCtx, &payment.WebhookEvent{
			Gateway:    gw.Name(),
			EventID:    event.EventID,
			EventType:  event.EventType,
			Reference:  event.Reference,
			Payload:    cmd.Body,
			ReceivedAt: biztime.NowUTC(),
		})
		if err != nil {
			return err
		}
		if !fresh {
			result.Duplicate = true
			return nil
		}

		p, err := uc.findPayment(txCtx, gw.Name(), event)
		if err != nil {
			return err
		}

		changed, err := uc.apply(p, event)
		if err != nil {
			return err
		}
		result.Status = p.Status().String()
		if !changed {
			return nil
		}
		if err := uc.paymentRepo.Update(txCtx, p); err != nil {
			return err
		}

		switch p.Status() {
		case vo.PaymentStatusCompleted:
			settled = p
		case vo.PaymentStatusRefunded, vo.PaymentStatusPartiallyRefunded:
			refunded = p
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to apply webhook",
			"gateway", gw.Name(),
			"event_id", event.EventID,
			"reference", event.Reference,
			"error", err,
		)
		return nil, err
	}

	if result.Duplicate {
		uc.logger.Infow("duplicate webhook ignored", "gateway", gw.Name(), "event_id", event.EventID)
		return result, nil
	}

	if settled != nil {
		uc.settlement.OnCompleted(ctx, settled)
	}
	if refunded != nil {
		uc.settlement.OnRefunded(ctx, refunded)
	}

	uc.logger.Infow("webhook processed",
		"gateway", gw.Name(),
		"event_id", event.EventID,
		"reference", event.Reference,
		"status", result.Status,
	)
	return result, nil
}

func (uc *HandleWebhookUseCase) findPayment(ctx context.Context, gateway string, event *paymentgateway.WebhookEvent) (*payment.Payment, error) {
	if event.Reference != "" {
		p, err := uc.paymentRepo.GetByReference(ctx, event.Reference)
		if err == nil {
			return p, nil
		}
		if !apperrors.IsNotFoundError(err) || event.TransactionID == "" {
			return nil, err
		}
	}
	if event.TransactionID == "" {
		return nil, apperrors.NewBadRequestError("webhook carries no payment reference")
	}
	return uc.paymentRepo.GetByTransactionID(ctx, gateway, event.TransactionID)
}

// apply moves the payment according to the event and reports whether it changed.
func (uc *HandleWebhookUseCase) apply(p *payment.Payment, event *paymentgateway.WebhookEvent) (bool, error) {
	switch event.Status {
	case paymentgateway.EventPaid:
		if p.Status().IsSettled() {
			return false, nil
		}
		if p.Status() != vo.PaymentStatusPending {
			// Money was taken for a payment we already closed. Flag it for a manual refund.
			uc.logger.Errorw("paid notification for closed payment",
				"payment_id", p.ID(),
				"status", p.Status(),
				"transaction_id", event.TransactionID,
				"amount", event.Amount.String(),
			)
			p.SetMetadata(latePaymentMetadataKey, map[string]any{
				"transaction_id": event.TransactionID,
				"amount":         event.Amount.String(),
				"status":         p.Status().String(),
				"received_at":    biztime.NowUTC(),
			})
			return true, nil
		}
		if !event.Amount.IsZero() && !p.MatchesAmount(event.Amount) {
			uc.logger.Warnw("webhook amount mismatch",
				"payment_id", p.ID(),
				"expected", p.Amount().String(),
				"reported", event.Amount.String(),
			)
			if err := p.Fail("amount mismatch: reported " + event.Amount.String()); err != nil {
				return false, err
			}
			return true, nil
		}
		return p.Complete(event.TransactionID, event.OccurredAt)

	case paymentgateway.EventFailed:
		if p.Status() != vo.PaymentStatusPending {
			return false, nil
		}
		reason := event.Reason
		if reason == "" {
			reason = "declined by gateway"
		}
		if err := p.Fail(reason); err != nil {
			return false, err
		}
		return true, nil

	case paymentgateway.EventRefunded:
		refundable := p.Refundable()
		if !refundable.IsPositive() {
			return false, nil
		}
		amount := event.Amount
		if amount.IsZero() || !amount.SameCurrency(refundable) || amount.GreaterThan(refundable) {
			amount = refundable
		}
		if err := p.Refund(amount); err != nil {
			return false, err
		}
		return true, nil
	}

	uc.logger.Warnw("unhandled webhook status", "status", event.Status, "event_id", event.EventID)
	return false, nil
}
