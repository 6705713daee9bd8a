package usecases

import (
	"context"

	"github.com/kesher-io/kesher/internal/domain/billing"
	"github.com/kesher-io/kesher/internal/domain/deal"
	"github.com/kesher-io/kesher/internal/domain/messaging"
	"github.com/kesher-io/kesher/internal/domain/payment"
	"github.com/kesher-io/kesher/internal/shared/biztime"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

// ContactPromoter turns a paying contact into a customer.
type ContactPromoter interface {
	MarkCustomer(ctx context.Context, contactID uint) error
}

// InvoiceIssuer issues and credits the invoice that belongs to a payment.
type InvoiceIssuer interface {
	IssueForPayment(ctx context.Context, paymentID uint) error
	CreditForPayment(ctx context.Context, paymentID uint) error
}

type SequenceTrigger interface {
	Fire(ctx context.Context, trigger messaging.Trigger, contactID uint) error
}

// Settlement applies what follows from a payment changing state: the deal,
// the contact, the plan installment, the invoice and the follow-up sequences.
// Failures are logged; the payment itself is already stored.
type Settlement struct {
	paymentRepo  payment.PaymentRepository
	dealRepo     deal.Repository
	planRepo     billing.PaymentPlanRepository
	reminderRepo billing.ReminderRepository
	contacts     ContactPromoter
	invoices     InvoiceIssuer
	trigger      SequenceTrigger
	autoInvoice  bool
	logger       logger.Interface
}

func NewSettlement(
	paymentRepo payment.PaymentRepository,
	dealRepo deal.Repository,
	planRepo billing.PaymentPlanRepository,
	reminderRepo billing.ReminderRepository,
	contacts ContactPromoter,
	logger logger.Interface,
) *Settlement {
	return &Settlement{
		paymentRepo:  paymentRepo,
		dealRepo:     dealRepo,
		planRepo:     planRepo,
		reminderRepo: reminderRepo,
		contacts:     contacts,
		logger:       logger,
	}
}

// SetInvoiceIssuer enables invoices; autoIssue issues one for every completed payment.
func (s *Settlement) SetInvoiceIssuer(issuer InvoiceIssuer, autoIssue bool) {
	s.invoices = issuer
	s.autoInvoice = autoIssue
}

func (s *Settlement) SetSequenceTrigger(trigger SequenceTrigger) {
	s.trigger = trigger
}

func (s *Settlement) OnCompleted(ctx context.Context, p *payment.Payment) {
	log := s.logger.With("payment_id", p.ID(), "reference", p.Reference())

	if err := s.contacts.MarkCustomer(ctx, p.ContactID()); err != nil {
		log.Warnw("failed to mark contact as customer", "error", err, "contact_id", p.ContactID())
	}

	if p.DealID() != nil {
		if err := s.closeDealIfCovered(ctx, *p.DealID(), p); err != nil {
			log.Warnw("failed to update deal after payment", "error", err, "deal_id", *p.DealID())
		}
	}

	if p.InstallmentID() != nil {
		if err := s.settleInstallment(ctx, *p.InstallmentID(), p); err != nil {
			log.Warnw("failed to mark installment as paid", "error", err, "installment_id", *p.InstallmentID())
		}
	}

	if s.invoices != nil && s.autoInvoice {
		if err := s.invoices.IssueForPayment(ctx, p.ID()); err != nil {
			log.Warnw("failed to issue invoice", "error", err)
		}
	}

	if s.trigger != nil {
		if err := s.trigger.Fire(ctx, messaging.TriggerPaymentCompleted, p.ContactID()); err != nil {
			log.Warnw("failed to start payment sequences", "error", err)
		}
	}
}

// OnRefunded credits the invoice once nothing is left to refund.
func (s *Settlement) OnRefunded(ctx context.Context, p *payment.Payment) {
	if !p.IsFullyRefunded() || s.invoices == nil {
		return
	}
	if err := s.invoices.CreditForPayment(ctx, p.ID()); err != nil {
		s.logger.Warnw("failed to credit invoice after refund", "error", err, "payment_id", p.ID())
	}
}

func (s *Settlement) closeDealIfCovered(ctx context.Context, dealID uint, p *payment.Payment) error {
	d, err := s.dealRepo.GetByID(ctx, dealID)
	if err != nil {
		return err
	}
	if d.Status() != deal.StatusOpen {
		return nil
	}
	paid, err := s.paymentRepo.SumSettledByDeal(ctx, dealID, d.Amount().Currency())
	if err != nil {
		return err
	}
	if !d.IsCoveredBy(paid) {
		s.logger.Debugw("deal partially paid", "deal_id", dealID, "paid", paid.String(), "final", d.FinalAmount().String())
		return nil
	}
	if err := d.ChangeStatus(deal.StatusWon); err != nil {
		return err
	}
	if err := s.dealRepo.Update(ctx, d); err != nil {
		return err
	}
	s.logger.Infow("deal won by payment", "deal_id", dealID, "payment_id", p.ID())
	return nil
}

func (s *Settlement) settleInstallment(ctx context.Context, installmentID uint, p *payment.Payment) error {
	plan, err := s.planRepo.GetByInstallmentID(ctx, installmentID)
	if err != nil {
		return err
	}
	paidAt := biztime.NowUTC()
	if p.PaidAt() != nil {
		paidAt = *p.PaidAt()
	}
	if err := plan.MarkInstallmentPaid(installmentID, p.ID(), paidAt); err != nil {
		return err
	}
	if err := s.planRepo.Update(ctx, plan); err != nil {
		return err
	}
	if err := s.reminderRepo.CancelPendingForInstallment(ctx, installmentID); err != nil {
		return err
	}
	s.logger.Infow("installment paid", "plan_id", plan.ID(), "installment_id", installmentID, "plan_status", plan.Status())
	return nil
}
