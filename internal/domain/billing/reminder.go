package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/kesher-io/kesher/internal/domain/shared/money"
	"github.com/kesher-io/kesher/internal/shared/biztime"
)

// MaxReminderAttempts is how many send failures a reminder tolerates before it is marked failed.
const MaxReminderAttempts = 3

type ReminderKind string

const (
	ReminderInstallmentDue  ReminderKind = "installment_due"
	ReminderRecurringFailed ReminderKind = "recurring_failed"
	ReminderPaymentPending  ReminderKind = "payment_pending"
)

func (k ReminderKind) IsValid() bool {
	return k == ReminderInstallmentDue || k == ReminderRecurringFailed || k == ReminderPaymentPending
}

// TemplateName is the message template rendered for this kind.
func (k ReminderKind) TemplateName() string {
	return "reminder_" + string(k)
}

type ReminderStatus string

const (
	ReminderStatusPending   ReminderStatus = "pending"
	ReminderStatusSent      ReminderStatus = "sent"
	ReminderStatusFailed    ReminderStatus = "failed"
	ReminderStatusCancelled ReminderStatus = "cancelled"
)

const ChannelEmail = "email"

type Reminder struct {
	id                 uint
	contactID          uint
	kind               ReminderKind
	planID             *uint
	installmentID      *uint
	recurringPaymentID *uint
	paymentID          *uint
	amount             money.Money
	dueDate            *time.Time
	remindAt           time.Time
	channel            string
	status             ReminderStatus
	attempts           int
	lastError          string
	sentAt             *time.Time
	createdAt          time.Time
	updatedAt          time.Time
}

type NewReminderParams struct {
	ContactID          uint
	Kind               ReminderKind
	PlanID             *uint
	InstallmentID      *uint
	RecurringPaymentID *uint
	PaymentID          *uint
	Amount             money.Money
	DueDate            *time.Time
	RemindAt           time.Time
}

func NewReminder(p NewReminderParams) (*Reminder, error) {
	if p.ContactID == 0 {
		return nil, fmt.Errorf("contact ID is required")
	}
	if !p.Kind.IsValid() {
		return nil, fmt.Errorf("invalid reminder kind: %s", p.Kind)
	}
	if p.RemindAt.IsZero() {
		return nil, fmt.Errorf("remind at is required")
	}
	now := biztime.NowUTC()
	return &Reminder{
		contactID:          p.ContactID,
		kind:               p.Kind,
		planID:             p.PlanID,
		installmentID:      p.InstallmentID,
		recurringPaymentID: p.RecurringPaymentID,
		paymentID:          p.PaymentID,
		amount:             p.Amount,
		dueDate:            p.DueDate,
		remindAt:           p.RemindAt.UTC(),
		channel:            ChannelEmail,
		status:             ReminderStatusPending,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

func (r *Reminder) MarkSent(at time.Time) {
	at = at.UTC()
	r.status = ReminderStatusSent
	r.attempts++
	r.sentAt = &at
	r.lastError = ""
	r.updatedAt = biztime.NowUTC()
}

// RecordFailure counts a failed send; the reminder fails after MaxReminderAttempts.
func (r *Reminder) RecordFailure(errMsg string) {
	r.attempts++
	r.lastError = strings.TrimSpace(errMsg)
	if r.attempts >= MaxReminderAttempts {
		r.status = ReminderStatusFailed
	}
	r.updatedAt = biztime.NowUTC()
}

func (r *Reminder) Cancel() error {
	if r.status != ReminderStatusPending {
		return fmt.Errorf("cannot cancel a %s reminder", r.status)
	}
	r.status = ReminderStatusCancelled
	r.updatedAt = biztime.NowUTC()
	return nil
}

func (r *Reminder) ID() uint                  { return r.id }
func (r *Reminder) ContactID() uint           { return r.contactID }
func (r *Reminder) Kind() ReminderKind        { return r.kind }
func (r *Reminder) PlanID() *uint             { return r.planID }
func (r *Reminder) InstallmentID() *uint      { return r.installmentID }
func (r *Reminder) RecurringPaymentID() *uint { return r.recurringPaymentID }
func (r *Reminder) PaymentID() *uint          { return r.paymentID }
func (r *Reminder) Amount() money.Money       { return r.amount }
func (r *Reminder) DueDate() *time.Time       { return r.dueDate }
func (r *Reminder) RemindAt() time.Time       { return r.remindAt }
func (r *Reminder) Channel() string           { return r.channel }
func (r *Reminder) Status() ReminderStatus    { return r.status }
func (r *Reminder) Attempts() int             { return r.attempts }
func (r *Reminder) LastError() string         { return r.lastError }
func (r *Reminder) SentAt() *time.Time        { return r.sentAt }
func (r *Reminder) CreatedAt() time.Time      { return r.createdAt }
func (r *Reminder) UpdatedAt() time.Time      { return r.updatedAt }

func (r *Reminder) SetID(id uint) { r.id = id }

type ReminderParams struct {
	ID                 uint
	ContactID          uint
	Kind               ReminderKind
	PlanID             *uint
	InstallmentID      *uint
	RecurringPaymentID *uint
	PaymentID          *uint
	Amount             money.Money
	DueDate            *time.Time
	RemindAt           time.Time
	Channel            string
	Status             ReminderStatus
	Attempts           int
	LastError          string
	SentAt             *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func ReconstructReminder(p ReminderParams) *Reminder {
	return &Reminder{
		id:                 p.ID,
		contactID:          p.ContactID,
		kind:               p.Kind,
		planID:             p.PlanID,
		installmentID:      p.InstallmentID,
		recurringPaymentID: p.RecurringPaymentID,
		paymentID:          p.PaymentID,
		amount:             p.Amount,
		dueDate:            p.DueDate,
		remindAt:           p.RemindAt,
		channel:            p.Channel,
		status:             p.Status,
		attempts:           p.Attempts,
		lastError:          p.LastError,
		sentAt:             p.SentAt,
		createdAt:          p.CreatedAt,
		updatedAt:          p.UpdatedAt,
	}
}
