package payment

import (
	"fmt"
	"strings"
	"time"

	vo "github.com/kesher-io/kesher/internal/domain/payment/valueobjects"
	"github.com/kesher-io/kesher/internal/domain/shared/money"
	"github.com/kesher-io/kesher/internal/shared/biztime"
	"github.com/kesher-io/kesher/internal/shared/id"
)

const MaxCardInstallments = 36

type Payment struct {
	id                 uint
	reference          string
	contactID          uint
	dealID             *uint
	recurringPaymentID *uint
	installmentID      *uint
	description        string
	amount             money.Money
	method             vo.PaymentMethod
	gateway            string
	status             vo.PaymentStatus
	transactionID      string
	redirectURL        string
	installments       int
	refundedAmount     money.Money
	failureReason      string
	metadata           map[string]any
	paidAt             *time.Time
	refundedAt         *time.Time
	version            int
	persistedVersion   int
	createdAt          time.Time
	updatedAt          time.Time
}

type NewPaymentParams struct {
	ContactID          uint
	DealID             *uint
	RecurringPaymentID *uint
	InstallmentID      *uint
	Description        string
	Amount             money.Money
	Method             vo.PaymentMethod
	Gateway            string
	Installments       int
	Metadata           map[string]any
}

// NewPayment creates a pending payment with a fresh PAY- reference.
func NewPayment(p NewPaymentParams) (*Payment, error) {
	if p.ContactID == 0 {
		return nil, fmt.Errorf("contact ID is required")
	}
	if !p.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}
	if !p.Method.IsValid() {
		return nil, fmt.Errorf("invalid payment method: %s", p.Method)
	}
	if strings.TrimSpace(p.Gateway) == "" {
		return nil, fmt.Errorf("gateway is required")
	}
	installments := p.Installments
	if installments == 0 {
		installments = 1
	}
	if installments < 1 || installments > MaxCardInstallments {
		return nil, fmt.Errorf("installments must be between 1 and %d", MaxCardInstallments)
	}
	if installments > 1 && p.Method != vo.PaymentMethodCreditCard {
		return nil, fmt.Errorf("installments are only available for credit card payments")
	}

	ref, err := id.NewPaymentReference()
	if err != nil {
		return nil, err
	}
	metadata := p.Metadata
	if metadata == nil {
		metadata = make(map[string]any)
	}

	now := biztime.NowUTC()
	return &Payment{
		reference:          ref,
		contactID:          p.ContactID,
		dealID:             p.DealID,
		recurringPaymentID: p.RecurringPaymentID,
		installmentID:      p.InstallmentID,
		description:        strings.TrimSpace(p.Description),
		amount:             p.Amount,
		method:             p.Method,
		gateway:            strings.ToLower(strings.TrimSpace(p.Gateway)),
		status:             vo.PaymentStatusPending,
		installments:       installments,
		refundedAmount:     money.Zero(p.Amount.Currency()),
		metadata:           metadata,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

func (p *Payment) transition(next vo.PaymentStatus) error {
	if !p.status.CanTransitionTo(next) {
		return fmt.Errorf("cannot move payment %s from %s to %s", p.reference, p.status, next)
	}
	p.status = next
	p.updatedAt = biztime.NowUTC()
	p.version++
	return nil
}

// Complete marks a pending payment as paid. It returns false without error when
// the payment was already completed so repeated notifications are harmless.
func (p *Payment) Complete(transactionID string, paidAt time.Time) (bool, error) {
	if p.status.IsSettled() {
		return false, nil
	}
	if err := p.transition(vo.PaymentStatusCompleted); err != nil {
		return false, err
	}
	if transactionID != "" {
		p.transactionID = transactionID
	}
	if paidAt.IsZero() {
		paidAt = biztime.NowUTC()
	}
	paidAt = paidAt.UTC()
	p.paidAt = &paidAt
	p.failureReason = ""
	return true, nil
}

func (p *Payment) Fail(reason string) error {
	if p.status == vo.PaymentStatusFailed {
		return nil
	}
	if err := p.transition(vo.PaymentStatusFailed); err != nil {
		return err
	}
	p.failureReason = strings.TrimSpace(reason)
	return nil
}

func (p *Payment) Cancel(reason string) error {
	if p.status == vo.PaymentStatusCancelled {
		return nil
	}
	if err := p.transition(vo.PaymentStatusCancelled); err != nil {
		return err
	}
	p.failureReason = strings.TrimSpace(reason)
	return nil
}

// Refund records a refund of amount against a settled payment.
func (p *Payment) Refund(amount money.Money) error {
	if !amount.IsPositive() {
		return fmt.Errorf("refund amount must be positive")
	}
	if !amount.SameCurrency(p.amount) {
		return fmt.Errorf("refund currency %s does not match payment currency %s", amount.Currency(), p.amount.Currency())
	}
	refundable := p.Refundable()
	if amount.GreaterThan(refundable) {
		return fmt.Errorf("refund amount %s exceeds refundable amount %s", amount, refundable)
	}

	refunded, err := p.RefundedAmount().Add(amount)
	if err != nil {
		return err
	}
	next := vo.PaymentStatusPartiallyRefunded
	if refunded.Equals(p.amount) {
		next = vo.PaymentStatusRefunded
	}
	if err := p.transition(next); err != nil {
		return err
	}

	now := biztime.NowUTC()
	p.refundedAmount = refunded
	p.refundedAt = &now
	return nil
}

// Refundable is the amount that can still be refunded.
func (p *Payment) Refundable() money.Money {
	if !p.status.IsSettled() {
		return money.Zero(p.amount.Currency())
	}
	rest, _ := p.amount.Sub(p.RefundedAmount())
	return rest
}

// MatchesAmount compares a gateway-reported amount with the payment amount.
func (p *Payment) MatchesAmount(reported money.Money) bool {
	return p.amount.Equals(reported)
}

// SetGatewayResult stores what the gateway returned when the charge was initiated.
func (p *Payment) SetGatewayResult(transactionID, redirectURL string) {
	if transactionID != "" {
		p.transactionID = transactionID
	}
	p.redirectURL = redirectURL
	p.updatedAt = biztime.NowUTC()
	p.version++
}

func (p *Payment) SetMetadata(key string, value any) {
	if p.metadata == nil {
		p.metadata = make(map[string]any)
	}
	p.metadata[key] = value
	p.updatedAt = biztime.NowUTC()
	p.version++
}

func (p *Payment) IsFullyRefunded() bool {
	return p.status == vo.PaymentStatusRefunded
}

func (p *Payment) ID() uint                  { return p.id }
func (p *Payment) Reference() string         { return p.reference }
func (p *Payment) ContactID() uint           { return p.contactID }
func (p *Payment) DealID() *uint             { return p.dealID }
func (p *Payment) RecurringPaymentID() *uint { return p.recurringPaymentID }
func (p *Payment) InstallmentID() *uint      { return p.installmentID }
func (p *Payment) Description() string       { return p.description }
func (p *Payment) Amount() money.Money       { return p.amount }
func (p *Payment) Method() vo.PaymentMethod  { return p.method }
func (p *Payment) Gateway() string           { return p.gateway }
func (p *Payment) Status() vo.PaymentStatus  { return p.status }
func (p *Payment) TransactionID() string     { return p.transactionID }
func (p *Payment) RedirectURL() string       { return p.redirectURL }
func (p *Payment) Installments() int         { return p.installments }
func (p *Payment) FailureReason() string     { return p.failureReason }
func (p *Payment) Metadata() map[string]any  { return p.metadata }
func (p *Payment) PaidAt() *time.Time        { return p.paidAt }
func (p *Payment) RefundedAt() *time.Time    { return p.refundedAt }
func (p *Payment) Version() int              { return p.version }
func (p *Payment) CreatedAt() time.Time      { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time      { return p.updatedAt }

func (p *Payment) RefundedAmount() money.Money {
	if p.refundedAmount.Currency() != p.amount.Currency() {
		return money.Zero(p.amount.Currency())
	}
	return p.refundedAmount
}

// SetID sets the payment ID after persistence (used by repository after Create)
func (p *Payment) SetID(id uint) {
	p.id = id
}

// PersistedVersion is the version last read from or written to storage.
// Updates are conditional on it.
func (p *Payment) PersistedVersion() int { return p.persistedVersion }

// MarkPersisted is called by the repository after a successful write.
func (p *Payment) MarkPersisted() { p.persistedVersion = p.version }

type PaymentReconstructParams struct {
	ID                 uint
	Reference          string
	ContactID          uint
	DealID             *uint
	RecurringPaymentID *uint
	InstallmentID      *uint
	Description        string
	Amount             money.Money
	Method             vo.PaymentMethod
	Gateway            string
	Status             vo.PaymentStatus
	TransactionID      string
	RedirectURL        string
	Installments       int
	RefundedAmount     money.Money
	FailureReason      string
	Metadata           map[string]any
	PaidAt             *time.Time
	RefundedAt         *time.Time
	Version            int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func ReconstructPaymentWithParams(p PaymentReconstructParams) *Payment {
	metadata := p.Metadata
	if metadata == nil {
		metadata = make(map[string]any)
	}
	return &Payment{
		id:                 p.ID,
		reference:          p.Reference,
		contactID:          p.ContactID,
		dealID:             p.DealID,
		recurringPaymentID: p.RecurringPaymentID,
		installmentID:      p.InstallmentID,
		description:        p.Description,
		amount:             p.Amount,
		method:             p.Method,
		gateway:            p.Gateway,
		status:             p.Status,
		transactionID:      p.TransactionID,
		redirectURL:        p.RedirectURL,
		installments:       p.Installments,
		refundedAmount:     p.RefundedAmount,
		failureReason:      p.FailureReason,
		metadata:           metadata,
		paidAt:             p.PaidAt,
		refundedAt:         p.RefundedAt,
		version:            p.Version,
		persistedVersion:   p.Version,
		createdAt:          p.CreatedAt,
		updatedAt:          p.UpdatedAt,
	}
}
