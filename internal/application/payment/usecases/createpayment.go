package usecases

import (
	"context"
	"strings"

	"github.com/kesher-io/kesher/internal/application/common"
	"github.com/kesher-io/kesher/internal/application/payment/paymentgateway"
	"github.com/kesher-io/kesher/internal/domain/billing"
	"github.com/kesher-io/kesher/internal/domain/contact"
	"github.com/kesher-io/kesher/internal/domain/deal"
	"github.com/kesher-io/kesher/internal/domain/payment"
	vo "github.com/kesher-io/kesher/internal/domain/payment/valueobjects"
	"github.com/kesher-io/kesher/internal/domain/shared/money"
	"github.com/kesher-io/kesher/internal/shared/biztime"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

// GatewayResolver looks up payment gateways by name.
type GatewayResolver interface {
	Get(name string) (paymentgateway.PaymentGateway, error)
	Default() paymentgateway.PaymentGateway
}

type CreatePaymentCommand struct {
	ContactID          uint
	DealID             *uint
	InstallmentID      *uint
	RecurringPaymentID *uint
	// Amount in major units. Empty takes the deal balance or the installment amount.
	Amount       string
	Currency     string
	Method       string
	Gateway      string
	Description  string
	Installments int
	CardToken    string
	CardExpiry   string
	SuccessURL   string
	FailureURL   string
}

type CreatePaymentUseCase struct {
	paymentRepo   payment.PaymentRepository
	contactRepo   contact.Repository
	dealRepo      deal.Repository
	planRepo      billing.PaymentPlanRepository
	gateways      GatewayResolver
	settlement    *Settlement
	currency      string
	notifyBaseURL string
	logger        logger.Interface
}

func NewCreatePaymentUseCase(
	paymentRepo payment.PaymentRepository,
	contactRepo contact.Repository,
	dealRepo deal.Repository,
	planRepo billing.PaymentPlanRepository,
	gateways GatewayResolver,
	settlement *Settlement,
	currency string,
	notifyBaseURL string,
	logger logger.Interface,
) *CreatePaymentUseCase {
	return &CreatePaymentUseCase{
		paymentRepo:   paymentRepo,
		contactRepo:   contactRepo,
		dealRepo:      dealRepo,
		planRepo:      planRepo,
		gateways:      gateways,
		settlement:    settlement,
		currency:      currency,
		notifyBaseURL: strings.TrimRight(notifyBaseURL, "/"),
		logger:        logger,
	}
}

func (uc *CreatePaymentUseCase) Execute(ctx context.Context, cmd CreatePaymentCommand) (*PaymentDTO, error) {
	method, err := vo.NewPaymentMethod(cmd.Method)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid payment method", cmd.Method)
	}

	c, err := uc.contactRepo.GetByID(ctx, cmd.ContactID)
	if err != nil {
		return nil, err
	}

	amount, err := uc.resolveAmount(ctx, cmd)
	if err != nil {
		return nil, err
	}

	gw, err := uc.selectGateway(cmd.Gateway, method)
	if err != nil {
		return nil, err
	}

	p, err := payment.NewPayment(payment.NewPaymentParams{
		ContactID:          c.ID(),
		DealID:             cmd.DealID,
		RecurringPaymentID: cmd.RecurringPaymentID,
		InstallmentID:      cmd.InstallmentID,
		Description:        cmd.Description,
		Amount:             amount,
		Method:             method,
		Gateway:            gw.Name(),
		Installments:       cmd.Installments,
	})
	if err != nil {
		return nil, common.ValidationError(err)
	}

	if err := uc.paymentRepo.Create(ctx, p); err != nil {
		uc.logger.Errorw("failed to create payment", "error", err, "contact_id", c.ID())
		return nil, err
	}

	result, chargeErr := gw.ProcessPayment(ctx, paymentgateway.ChargeRequest{
		Reference:    p.Reference(),
		Amount:       p.Amount(),
		Description:  p.Description(),
		Installments: p.Installments(),
		CardToken:    cmd.CardToken,
		CardExpiry:   cmd.CardExpiry,
		Customer: paymentgateway.Customer{
			Name:  c.FullName(),
			Email: c.Email(),
			Phone: c.Phone(),
		},
		NotifyURL:  uc.notifyURL(gw.Name()),
		SuccessURL: cmd.SuccessURL,
		FailureURL: cmd.FailureURL,
	})
	if chargeErr != nil {
		uc.logger.Errorw("gateway charge failed",
			"error", chargeErr,
			"gateway", gw.Name(),
			"reference", p.Reference(),
		)
		if err := p.Fail(chargeErr.Error()); err == nil {
			if err := uc.paymentRepo.Update(ctx, p); err != nil {
				uc.logger.Errorw("failed to store failed payment", "error", err, "payment_id", p.ID())
			}
		}
		return nil, apperrors.NewGatewayError("payment gateway error", chargeErr.Error())
	}

	if err := uc.applyChargeResult(ctx, p, result); err != nil {
		return nil, err
	}

	uc.logger.Infow("payment created",
		"payment_id", p.ID(),
		"reference", p.Reference(),
		"gateway", gw.Name(),
		"status", p.Status(),
		"amount", p.Amount().String(),
	)
	return ToPaymentDTO(p), nil
}

func (uc *CreatePaymentUseCase) applyChargeResult(ctx context.Context, p *payment.Payment, result *paymentgateway.ChargeResult) error {
	if result.CardToken != "" {
		p.SetMetadata("card_token", result.CardToken)
	}

	switch result.Status {
	case paymentgateway.ChargeApproved:
		if _, err := p.Complete(result.TransactionID, biztime.NowUTC()); err != nil {
			return err
		}
	case paymentgateway.ChargePending:
		p.SetGatewayResult(result.TransactionID, result.RedirectURL)
	default:
		reason := result.Message
		if reason == "" {
			reason = "declined by gateway"
		}
		if err := p.Fail(reason); err != nil {
			return err
		}
	}

	if err := uc.paymentRepo.Update(ctx, p); err != nil {
		uc.logger.Errorw("failed to update payment after charge", "error", err, "payment_id", p.ID())
		return err
	}

	if p.Status() == vo.PaymentStatusCompleted {
		uc.settlement.OnCompleted(ctx, p)
	}
	return nil
}

// selectGateway keeps offline payments on the manual gateway.
func (uc *CreatePaymentUseCase) selectGateway(name string, method vo.PaymentMethod) (paymentgateway.PaymentGateway, error) {
	if method.IsOffline() {
		return uc.gateways.Get(paymentgateway.ManualGatewayName)
	}
	if strings.TrimSpace(name) != "" {
		return uc.gateways.Get(name)
	}
	return uc.gateways.Default(), nil
}

func (uc *CreatePaymentUseCase) resolveAmount(ctx context.Context, cmd CreatePaymentCommand) (money.Money, error) {
	currency := cmd.Currency
	if currency == "" {
		currency = uc.currency
	}
	amount, err := common.ParseAmount(cmd.Amount, currency, "amount")
	if err != nil {
		return money.Money{}, err
	}

	if cmd.InstallmentID != nil {
		plan, err := uc.planRepo.GetByInstallmentID(ctx, *cmd.InstallmentID)
		if err != nil {
			return money.Money{}, err
		}
		inst, _ := plan.Installment(*cmd.InstallmentID)
		if inst.Status != billing.InstallmentStatusPending {
			return money.Money{}, apperrors.NewConflictError("installment is not pending")
		}
		if plan.ContactID() != cmd.ContactID {
			return money.Money{}, apperrors.NewValidationError("installment belongs to another contact")
		}
		if amount.IsZero() {
			return inst.Amount, nil
		}
		return amount, nil
	}

	if cmd.DealID != nil {
		d, err := uc.dealRepo.GetByID(ctx, *cmd.DealID)
		if err != nil {
			return money.Money{}, err
		}
		if d.ContactID() != cmd.ContactID {
			return money.Money{}, apperrors.NewValidationError("deal belongs to another contact")
		}
		if amount.IsZero() {
			paid, err := uc.paymentRepo.SumSettledByDeal(ctx, d.ID(), d.Amount().Currency())
			if err != nil {
				return money.Money{}, err
			}
			balance, err := d.FinalAmount().Sub(paid)
			if err != nil {
				return money.Money{}, err
			}
			if !balance.IsPositive() {
				return money.Money{}, apperrors.NewConflictError("deal is already paid in full")
			}
			return balance, nil
		}
	}

	if !amount.IsPositive() {
		return money.Money{}, apperrors.NewValidationError("amount must be positive")
	}
	return amount, nil
}

func (uc *CreatePaymentUseCase) notifyURL(gateway string) string {
	if uc.notifyBaseURL == "" || gateway == paymentgateway.ManualGatewayName {
		return ""
	}
	return uc.notifyBaseURL + "/api/webhooks/payments/" + gateway
}
