package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/kesher-io/kesher/internal/domain/shared/money"
	"github.com/kesher-io/kesher/internal/shared/biztime"
)

type RecurringStatus string

const (
	RecurringStatusActive    RecurringStatus = "active"
	RecurringStatusPaused    RecurringStatus = "paused"
	RecurringStatusCancelled RecurringStatus = "cancelled"
	RecurringStatusCompleted RecurringStatus = "completed"
	RecurringStatusFailed    RecurringStatus = "failed"
)

func (s RecurringStatus) IsValid() bool {
	switch s {
	case RecurringStatusActive, RecurringStatusPaused, RecurringStatusCancelled,
		RecurringStatusCompleted, RecurringStatusFailed:
		return true
	}
	return false
}

// RecurringPayment charges a stored card token on a fixed schedule.
type RecurringPayment struct {
	id                uint
	contactID         uint
	productID         *uint
	description       string
	amount            money.Money
	frequency         Frequency
	anchorDay         int
	startDate         time.Time
	nextChargeDate    time.Time
	retryAt           *time.Time
	endDate           *time.Time
	maxCharges        *int
	chargeCount       int
	failedAttempts    int
	lastChargedAt     *time.Time
	lastFailureReason string
	gateway           string
	cardToken         string
	cardExpiry        string
	status            RecurringStatus
	version           int
	persistedVersion  int
	createdAt         time.Time
	updatedAt         time.Time
}

type NewRecurringPaymentParams struct {
	ContactID   uint
	ProductID   *uint
	Description string
	Amount      money.Money
	Frequency   Frequency
	StartDate   time.Time
	EndDate     *time.Time
	MaxCharges  *int
	Gateway     string
	CardToken   string
	CardExpiry  string
}

func NewRecurringPayment(p NewRecurringPaymentParams) (*RecurringPayment, error) {
	if p.ContactID == 0 {
		return nil, fmt.Errorf("contact ID is required")
	}
	if !p.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}
	if !p.Frequency.IsValid() {
		return nil, fmt.Errorf("invalid frequency: %s", p.Frequency)
	}
	if p.StartDate.IsZero() {
		return nil, fmt.Errorf("start date is required")
	}
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return nil, fmt.Errorf("end date cannot be before start date")
	}
	if p.MaxCharges != nil && *p.MaxCharges < 1 {
		return nil, fmt.Errorf("max charges must be at least 1")
	}
	if strings.TrimSpace(p.Gateway) == "" {
		return nil, fmt.Errorf("gateway is required")
	}
	if strings.TrimSpace(p.CardToken) == "" {
		return nil, fmt.Errorf("card token is required")
	}

	now := biztime.NowUTC()
	start := p.StartDate.UTC()
	return &RecurringPayment{
		contactID:      p.ContactID,
		productID:      p.ProductID,
		description:    strings.TrimSpace(p.Description),
		amount:         p.Amount,
		frequency:      p.Frequency,
		anchorDay:      AnchorDay(start),
		startDate:      start,
		nextChargeDate: start,
		endDate:        p.EndDate,
		maxCharges:     p.MaxCharges,
		gateway:        strings.ToLower(strings.TrimSpace(p.Gateway)),
		cardToken:      strings.TrimSpace(p.CardToken),
		cardExpiry:     strings.TrimSpace(p.CardExpiry),
		status:         RecurringStatusActive,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// DueAt is when the next attempt should run: the retry time after a failure,
// otherwise the scheduled charge date.
func (r *RecurringPayment) DueAt() time.Time {
	if r.retryAt != nil {
		return *r.retryAt
	}
	return r.nextChargeDate
}

func (r *RecurringPayment) IsDue(now time.Time) bool {
	return r.status == RecurringStatusActive && !r.DueAt().After(now)
}

// Claim reserves a due payment for one charge attempt by pushing its due time
// out by lease. Once saved, other runs no longer see it as due, and a run that
// loaded it earlier fails the version check.
func (r *RecurringPayment) Claim(now time.Time, lease time.Duration) error {
	if !r.IsDue(now) {
		return fmt.Errorf("recurring payment is not due")
	}
	until := now.UTC().Add(lease)
	r.retryAt = &until
	r.touch()
	return nil
}

// RecordSuccess advances the schedule from the scheduled date, not from the
// retry time, so the anchor day is kept.
func (r *RecurringPayment) RecordSuccess(chargedAt time.Time) {
	chargedAt = chargedAt.UTC()
	r.chargeCount++
	r.failedAttempts = 0
	r.lastFailureReason = ""
	r.retryAt = nil
	r.lastChargedAt = &chargedAt
	r.nextChargeDate = NextDate(r.nextChargeDate, r.frequency, r.anchorDay)

	if r.maxCharges != nil && r.chargeCount >= *r.maxCharges {
		r.status = RecurringStatusCompleted
	}
	if r.endDate != nil && r.nextChargeDate.After(*r.endDate) {
		r.status = RecurringStatusCompleted
	}
	r.touch()
}

// RecordFailure schedules a retry after retryDelay, or marks the payment failed
// once maxAttempts consecutive failures are reached. It reports whether attempts are exhausted.
func (r *RecurringPayment) RecordFailure(reason string, now time.Time, retryDelay time.Duration, maxAttempts int) bool {
	r.failedAttempts++
	r.lastFailureReason = strings.TrimSpace(reason)
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if r.failedAttempts >= maxAttempts {
		r.status = RecurringStatusFailed
		r.retryAt = nil
		r.touch()
		return true
	}
	retry := now.UTC().Add(retryDelay)
	r.retryAt = &retry
	r.touch()
	return false
}

func (r *RecurringPayment) Pause() error {
	if r.status != RecurringStatusActive {
		return fmt.Errorf("only active recurring payments can be paused, status is %s", r.status)
	}
	r.status = RecurringStatusPaused
	r.touch()
	return nil
}

// Resume reactivates a paused or failed recurring payment and clears the failure
// counter. Periods missed while inactive are skipped, not charged: the next charge
// date moves to the first scheduled date at or after now.
func (r *RecurringPayment) Resume(now time.Time) error {
	if r.status != RecurringStatusPaused && r.status != RecurringStatusFailed {
		return fmt.Errorf("cannot resume a %s recurring payment", r.status)
	}
	now = now.UTC()
	for r.nextChargeDate.Before(now) {
		r.nextChargeDate = NextDate(r.nextChargeDate, r.frequency, r.anchorDay)
	}
	r.status = RecurringStatusActive
	if r.endDate != nil && r.nextChargeDate.After(*r.endDate) {
		r.status = RecurringStatusCompleted
	}
	r.failedAttempts = 0
	r.retryAt = nil
	r.touch()
	return nil
}

func (r *RecurringPayment) Cancel() error {
	if r.status == RecurringStatusCancelled {
		return nil
	}
	if r.status == RecurringStatusCompleted {
		return fmt.Errorf("recurring payment is already completed")
	}
	r.status = RecurringStatusCancelled
	r.retryAt = nil
	r.touch()
	return nil
}

func (r *RecurringPayment) UpdateCard(token, expiry string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("card token is required")
	}
	r.cardToken = strings.TrimSpace(token)
	r.cardExpiry = strings.TrimSpace(expiry)
	r.touch()
	return nil
}

func (r *RecurringPayment) UpdateAmount(amount money.Money) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive")
	}
	r.amount = amount
	r.touch()
	return nil
}

func (r *RecurringPayment) touch() {
	r.updatedAt = biztime.NowUTC()
	r.version++
}

func (r *RecurringPayment) ID() uint                  { return r.id }
func (r *RecurringPayment) ContactID() uint           { return r.contactID }
func (r *RecurringPayment) ProductID() *uint          { return r.productID }
func (r *RecurringPayment) Description() string       { return r.description }
func (r *RecurringPayment) Amount() money.Money       { return r.amount }
func (r *RecurringPayment) Frequency() Frequency      { return r.frequency }
func (r *RecurringPayment) AnchorDay() int            { return r.anchorDay }
func (r *RecurringPayment) StartDate() time.Time      { return r.startDate }
func (r *RecurringPayment) NextChargeDate() time.Time { return r.nextChargeDate }
func (r *RecurringPayment) RetryAt() *time.Time       { return r.retryAt }
func (r *RecurringPayment) EndDate() *time.Time       { return r.endDate }
func (r *RecurringPayment) MaxCharges() *int          { return r.maxCharges }
func (r *RecurringPayment) ChargeCount() int          { return r.chargeCount }
func (r *RecurringPayment) FailedAttempts() int       { return r.failedAttempts }
func (r *RecurringPayment) LastChargedAt() *time.Time { return r.lastChargedAt }
func (r *RecurringPayment) LastFailureReason() string { return r.lastFailureReason }
func (r *RecurringPayment) Gateway() string           { return r.gateway }
func (r *RecurringPayment) CardToken() string         { return r.cardToken }
func (r *RecurringPayment) CardExpiry() string        { return r.cardExpiry }
func (r *RecurringPayment) Status() RecurringStatus   { return r.status }
func (r *RecurringPayment) Version() int              { return r.version }
func (r *RecurringPayment) CreatedAt() time.Time      { return r.createdAt }
func (r *RecurringPayment) UpdatedAt() time.Time      { return r.updatedAt }

func (r *RecurringPayment) SetID(id uint) { r.id = id }

// PersistedVersion is the version last read from or written to storage.
func (r *RecurringPayment) PersistedVersion() int { return r.persistedVersion }

// MarkPersisted is called by the repository after a successful write.
func (r *RecurringPayment) MarkPersisted() { r.persistedVersion = r.version }

type RecurringPaymentParams struct {
	ID                uint
	ContactID         uint
	ProductID         *uint
	Description       string
	Amount            money.Money
	Frequency         Frequency
	AnchorDay         int
	StartDate         time.Time
	NextChargeDate    time.Time
	RetryAt           *time.Time
	EndDate           *time.Time
	MaxCharges        *int
	ChargeCount       int
	FailedAttempts    int
	LastChargedAt     *time.Time
	LastFailureReason string
	Gateway           string
	CardToken         string
	CardExpiry        string
	Status            RecurringStatus
	Version           int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func ReconstructRecurringPayment(p RecurringPaymentParams) *RecurringPayment {
	return &RecurringPayment{
		id:                p.ID,
		contactID:         p.ContactID,
		productID:         p.ProductID,
		description:       p.Description,
		amount:            p.Amount,
		frequency:         p.Frequency,
		anchorDay:         p.AnchorDay,
		startDate:         p.StartDate,
		nextChargeDate:    p.NextChargeDate,
		retryAt:           p.RetryAt,
		endDate:           p.EndDate,
		maxCharges:        p.MaxCharges,
		chargeCount:       p.ChargeCount,
		failedAttempts:    p.FailedAttempts,
		lastChargedAt:     p.LastChargedAt,
		lastFailureReason: p.LastFailureReason,
		gateway:           p.Gateway,
		cardToken:         p.CardToken,
		cardExpiry:        p.CardExpiry,
		status:            p.Status,
		version:           p.Version,
		persistedVersion:  p.Version,
		createdAt:         p.CreatedAt,
		updatedAt:         p.UpdatedAt,
	}
}
